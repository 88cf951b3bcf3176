package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

// DefaultEndpoint is the URL every procedure is posted to.
const DefaultEndpoint = "http://api.rdio.com/1/"

// ClientOpts configures a [Client]. Nil or zero fields are defaulted.
type ClientOpts struct {
	Session  *Session
	Endpoint string
	// Limiter throttles outgoing calls. Nil means unlimited.
	Limiter *rate.Limiter
	Logger  *log.Logger
	// Timeout bounds each call when the context has no earlier deadline.
	Timeout time.Duration
}

// Client invokes the Rdio web API procedures. Every call is a signed form POST
// carrying a "method" field, answered by a {status, result|message} envelope.
type Client struct {
	session  *Session
	endpoint string
	limiter  *rate.Limiter
	logger   *log.Logger
	timeout  time.Duration
}

// NewClient creates a client. Without a session it can only return errors
// until credentials are configured on [Client.Session].
func NewClient(opts ClientOpts) *Client {
	if opts.Session == nil {
		opts.Session = NewSession(SessionOpts{})
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &Client{
		session:  opts.Session,
		endpoint: opts.Endpoint,
		limiter:  opts.Limiter,
		logger:   opts.Logger,
		timeout:  opts.Timeout,
	}
}

// NewClientFromConfig wires a session, limiter and timeout from cfg.
func NewClientFromConfig(cfg *shared.Config, logger *log.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.API.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.API.RateLimit), 1)
	}

	return NewClient(ClientOpts{
		Session:  SessionFromConfig(cfg, &http.Client{Timeout: cfg.API.Timeout()}),
		Endpoint: cfg.API.Endpoint,
		Limiter:  limiter,
		Logger:   logger,
		Timeout:  cfg.API.Timeout(),
	})
}

// SetLogger replaces the client's logger. It is not safe to call while requests are in flight.
func (c *Client) SetLogger(logger *log.Logger) { c.logger = logger }

// Session returns the session that signs this client's calls.
func (c *Client) Session() *Session { return c.session }

type envelope struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

// call validates p, dispatches it and returns the raw result.
// When authenticated is true the session must hold an access token.
func (c *Client) call(ctx context.Context, p *params, authenticated bool) (json.RawMessage, error) {
	if err := p.err(); err != nil {
		return nil, err
	}
	if authenticated && !c.session.IsAuthenticated() {
		return nil, &NotAuthenticatedError{Method: p.method}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit: %w", p.method, err)
		}
	}

	httpClient, err := c.session.httpClient(ctx, authenticated)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("calling procedure", "method", p.method, "authenticated", authenticated)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(p.encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", p.method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", p.method, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("API returned non-JSON error", "method", p.method, "status", resp.StatusCode)
			return nil, &APIError{Method: p.method, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("%s: failed to decode response: %w", p.method, err)
	}

	switch env.Status {
	case "ok":
		return env.Result, nil
	case "error":
		c.logger.Warn("API returned error", "method", p.method, "message", env.Message)
		return nil, &APIError{Method: p.method, Message: env.Message, StatusCode: resp.StatusCode}
	default:
		return nil, fmt.Errorf("%s: %w: unexpected envelope status %q", p.method, shared.ErrAPIRequest, env.Status)
	}
}

// callBool dispatches p and reports the boolean success indicator.
func (c *Client) callBool(ctx context.Context, p *params, authenticated bool) (bool, error) {
	raw, err := c.call(ctx, p, authenticated)
	if err != nil {
		return false, err
	}
	if models.IsEmpty(raw) {
		return false, nil
	}

	var ok bool
	if err := json.Unmarshal(raw, &ok); err != nil {
		// Some procedures answer with an object instead of true.
		return true, nil
	}
	return ok, nil
}

// callList dispatches p and maps a list result. An empty result is nil.
func (c *Client) callList(ctx context.Context, p *params, authenticated bool) ([]models.Object, error) {
	raw, err := c.call(ctx, p, authenticated)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}
	objects, err := models.DecodeObjectList(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.method, err)
	}
	return objects, nil
}

// callObject dispatches p and maps a single object result. An empty result is nil.
func (c *Client) callObject(ctx context.Context, p *params, authenticated bool) (models.Object, error) {
	raw, err := c.call(ctx, p, authenticated)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}
	obj, err := models.DecodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.method, err)
	}
	return obj, nil
}
