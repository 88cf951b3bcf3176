package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the path patterns it serves.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers handlers and applies middleware to them.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs each request with its status and duration. Query strings are not
// logged since the callback carries the verifier.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
		})
	}
}

// Recoverer turns a panicking handler into a 500 response.
func Recoverer(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("handler panic", "path", r.URL.Path, "panic", v)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CallbackServer serves an [OAuthHandler] on a local address until one result arrives.
type CallbackServer struct {
	handler  *OAuthHandler
	srv      *http.Server
	listener net.Listener
	errs     chan error
	logger   *log.Logger
}

// NewCallbackServer builds a server for handler on addr with request logging.
func NewCallbackServer(addr string, handler *OAuthHandler, logger *log.Logger) *CallbackServer {
	router := NewBasicRouter()
	router.Use(Recoverer(logger), Logging(logger))
	router.Handler(handler)

	return &CallbackServer{
		handler: handler,
		srv:     &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		errs:    make(chan error, 1),
		logger:  logger,
	}
}

// Start binds the address and serves in the background.
func (c *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", c.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.srv.Addr, err)
	}
	c.listener = ln

	go func() {
		c.logger.Infof("waiting for authorization callback at %v", ln.Addr())
		if err := c.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.errs <- err
		}
	}()
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (c *CallbackServer) Addr() string {
	if c.listener == nil {
		return c.srv.Addr
	}
	return c.listener.Addr().String()
}

// Wait blocks until the handler delivers a result, the server fails or ctx is done.
func (c *CallbackServer) Wait(ctx context.Context) (OAuthResult, error) {
	select {
	case result := <-c.handler.Result():
		return result, nil
	case err := <-c.errs:
		return OAuthResult{}, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return OAuthResult{}, ctx.Err()
	}
}

// Shutdown stops the server, waiting up to five seconds for open requests.
func (c *CallbackServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.srv.Shutdown(ctx)
}
