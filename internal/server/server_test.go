package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rdx/internal/shared"
)

type fakeAuthorizer struct {
	verifier string
	err      error
}

func (f *fakeAuthorizer) CompleteAuthorization(_ context.Context, verifier string) (string, string, error) {
	f.verifier = verifier
	if f.err != nil {
		return "", "", f.err
	}
	return "access-token", "access-secret", nil
}

func TestRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		if got := router.Patterns(); len(got) != 1 || got[0] != "GET /ping" {
			t.Errorf("unexpected patterns %v", got)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("recoverer and logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(Recoverer(logger), Logging(logger))
		router.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "handler panic") {
			t.Errorf("expected panic to be logged, got %q", buf.String())
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := &fakeAuthorizer{}
		handler := NewOAuthHandler(auth, "req-token")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?oauth_token=req-token&oauth_verifier=1234", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization successful") {
			t.Errorf("expected success page")
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Token != "access-token" || result.Secret != "access-secret" {
			t.Errorf("unexpected result %+v", result)
		}
		if auth.verifier != "1234" {
			t.Errorf("expected verifier 1234, got %s", auth.verifier)
		}
	})

	t.Run("token mismatch", func(t *testing.T) {
		auth := &fakeAuthorizer{}
		handler := NewOAuthHandler(auth, "req-token")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?oauth_token=other&oauth_verifier=1234", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-handler.Result(); result.Error() == nil {
			t.Error("expected mismatch error")
		}
		if auth.verifier != "" {
			t.Error("exchange must not run for a foreign token")
		}
	})

	t.Run("denied", func(t *testing.T) {
		handler := NewOAuthHandler(&fakeAuthorizer{}, "req-token")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?oauth_token=req-token&oauth_problem=user_refused", nil))

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "user_refused") {
			t.Errorf("expected denial error, got %v", result.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		handler := NewOAuthHandler(&fakeAuthorizer{err: shared.ErrAuthFailed}, "req-token")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?oauth_token=req-token&oauth_verifier=1234", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
		if result := <-handler.Result(); !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("single use", func(t *testing.T) {
		handler := NewOAuthHandler(&fakeAuthorizer{}, "req-token")
		target := "/callback?oauth_token=req-token&oauth_verifier=1234"

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected replay to be rejected, got %d", rec.Code)
		}
	})
}

func TestCallbackServer(t *testing.T) {
	handler := NewOAuthHandler(&fakeAuthorizer{}, "req-token")
	srv := NewCallbackServer("127.0.0.1:0", handler, shared.NewLogger(io.Discard))

	if err := srv.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	defer srv.Shutdown()

	resp, err := http.Get("http://" + srv.Addr() + "/callback?oauth_token=req-token&oauth_verifier=1234")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := srv.Wait(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Token != "access-token" {
		t.Errorf("unexpected token %q", result.Token)
	}

	t.Run("times out", func(t *testing.T) {
		idle := NewCallbackServer("127.0.0.1:0", NewOAuthHandler(&fakeAuthorizer{}, "x"), shared.NewLogger(io.Discard))
		if err := idle.Start(); err != nil {
			t.Fatalf("failed to start: %v", err)
		}
		defer idle.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		if _, err := idle.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}
