// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FailingRoundTripper fails the test when any request reaches it. Used to prove
// that argument validation happens before dispatch.
type FailingRoundTripper struct {
	t testing.TB
}

func NewFailingRoundTripper(t testing.TB) *FailingRoundTripper {
	return &FailingRoundTripper{t: t}
}

func (f *FailingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	f.t.Errorf("unexpected request to %s", r.URL)
	return nil, errors.New("unexpected request")
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// OK wraps a JSON result in a success envelope.
func OK(result string) string {
	return fmt.Sprintf(`{"status":"ok","result":%s}`, result)
}

// Failure builds an error envelope carrying message.
func Failure(message string) string {
	return fmt.Sprintf(`{"status":"error","message":%q}`, message)
}

// JSONResponse builds an [http.Response] with a JSON body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// APIServer is an [httptest.Server] that answers form posts by their "method"
// field and records every call it receives.
type APIServer struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []url.Values
	headers   []http.Header
	responses map[string]string
}

// NewAPIServer starts a server answering each method with the body in responses.
// Unknown methods get an error envelope. The server is closed when the test ends.
func NewAPIServer(t testing.TB, responses map[string]string) *APIServer {
	t.Helper()
	s := &APIServer{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *APIServer) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, r.PostForm)
	s.headers = append(s.headers, r.Header.Clone())
	body, ok := s.responses[r.PostForm.Get("method")]
	s.mu.Unlock()

	if !ok {
		body = Failure("unknown method " + r.PostForm.Get("method"))
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

// Calls returns the form bodies received so far.
func (s *APIServer) Calls() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.calls...)
}

// LastCall returns the most recent form body, or nil.
func (s *APIServer) LastCall() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

// LastHeader returns the headers of the most recent request, or nil.
func (s *APIServer) LastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil
	}
	return s.headers[len(s.headers)-1]
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
