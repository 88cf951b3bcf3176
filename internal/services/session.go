package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/dghubble/oauth1"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/rdx/internal/shared"
)

const (
	defaultRequestTokenURL = "http://api.rdio.com/oauth/request_token"
	defaultAccessTokenURL  = "http://api.rdio.com/oauth/access_token"
	defaultAuthorizeURL    = "https://www.rdio.com/oauth/authorize"
)

// Credentials holds the consumer pair issued to the application and, optionally,
// the access pair issued to a user.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// AuthorizationRequest is what a user needs to approve access: the URL to visit
// and the request token it carries. The request secret stays in the session.
type AuthorizationRequest struct {
	LoginURL string
	Token    string
}

// SessionOpts configures a [Session]. Zero values fall back to the public endpoints.
type SessionOpts struct {
	Endpoint    oauth1.Endpoint
	CallbackURL string
	// HTTPClient is the base client the signing transport wraps.
	HTTPClient *http.Client
}

// Session owns the OAuth state used to sign calls: the consumer pair, the
// request token during authorization, and the access pair once authorized.
//
// A Session is safe for concurrent use. Reads take a shared lock and the
// credential upgrade after authorization takes the exclusive lock.
type Session struct {
	mu            sync.RWMutex
	config        *oauth1.Config
	access        *oauth1.Token
	requestToken  string
	requestSecret string
	endpoint      oauth1.Endpoint
	callbackURL   string
	base          *http.Client

	// OAuth 2.0 mode replaces request signing with bearer tokens.
	bearer     oauth2.TokenSource
	bearerUser bool
}

// NewSession returns an unconfigured session.
func NewSession(opts SessionOpts) *Session {
	if opts.Endpoint.RequestTokenURL == "" {
		opts.Endpoint.RequestTokenURL = defaultRequestTokenURL
	}
	if opts.Endpoint.AccessTokenURL == "" {
		opts.Endpoint.AccessTokenURL = defaultAccessTokenURL
	}
	if opts.Endpoint.AuthorizeURL == "" {
		opts.Endpoint.AuthorizeURL = defaultAuthorizeURL
	}
	if opts.CallbackURL == "" {
		opts.CallbackURL = shared.OutOfBand
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Session{endpoint: opts.Endpoint, callbackURL: opts.CallbackURL, base: opts.HTTPClient}
}

// SessionFromConfig builds a session from the configured endpoints and credentials.
func SessionFromConfig(cfg *shared.Config, httpClient *http.Client) *Session {
	s := NewSession(SessionOpts{
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: cfg.API.RequestTokenURL,
			AuthorizeURL:    cfg.API.AuthorizeURL,
			AccessTokenURL:  cfg.API.AccessTokenURL,
		},
		CallbackURL: cfg.Credentials.Rdio.CallbackURL,
		HTTPClient:  httpClient,
	})
	rdio := cfg.Credentials.Rdio
	s.Configure(Credentials{
		ConsumerKey:    rdio.ConsumerKey,
		ConsumerSecret: rdio.ConsumerSecret,
		AccessToken:    rdio.AccessToken,
		AccessSecret:   rdio.AccessSecret,
	})
	if !rdio.HasAccess() && rdio.HasClientCredentials() && cfg.API.OAuth2TokenURL != "" {
		s.ConfigureOAuth2(context.Background(), rdio.ClientID, rdio.ClientSecret, cfg.API.OAuth2TokenURL)
	}
	return s
}

// Configure stores whichever credential pairs are complete. A consumer pair
// enables unauthenticated calls; adding an access pair enables authenticated ones.
// Incomplete pairs are ignored. An access pair without a consumer pair has
// nothing to sign with and is ignored as well.
func (s *Session) Configure(c Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ConsumerKey != "" && c.ConsumerSecret != "" {
		s.config = &oauth1.Config{
			ConsumerKey:    c.ConsumerKey,
			ConsumerSecret: c.ConsumerSecret,
			CallbackURL:    s.callbackURL,
			Endpoint:       s.endpoint,
			HTTPClient:     s.base,
		}
	}
	if s.config != nil && c.AccessToken != "" && c.AccessSecret != "" {
		s.access = oauth1.NewToken(c.AccessToken, c.AccessSecret)
	}
}

// ConfigureOAuth2 switches the session to OAuth 2.0 client credentials.
// Calls made this way act for the application only, so the session stays unauthenticated.
func (s *Session) ConfigureOAuth2(ctx context.Context, clientID, clientSecret, tokenURL string) {
	cfg := &clientcredentials.Config{ClientID: clientID, ClientSecret: clientSecret, TokenURL: tokenURL}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.base)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bearer = cfg.TokenSource(ctx)
	s.bearerUser = false
}

// ConfigureBearer switches the session to OAuth 2.0 with a user's token.
func (s *Session) ConfigureBearer(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bearer = oauth2.StaticTokenSource(token)
	s.bearerUser = true
}

// HasConsumer reports whether unauthenticated calls can be signed.
func (s *Session) HasConsumer() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config != nil || s.bearer != nil
}

// IsAuthenticated reports whether calls can be made on a user's behalf.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bearer != nil {
		return s.bearerUser
	}
	return s.config != nil && s.access != nil
}

// AccessToken returns the current access pair, if any.
func (s *Session) AccessToken() (token, secret string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == nil {
		return "", "", false
	}
	return s.access.Token, s.access.TokenSecret, true
}

// BeginAuthorization obtains a request token and returns the URL the user must
// visit to approve it. Failures are returned wrapped in [shared.ErrAuthFailed].
func (s *Session) BeginAuthorization(ctx context.Context) (*AuthorizationRequest, error) {
	s.mu.RLock()
	config := s.config
	s.mu.RUnlock()
	if config == nil {
		return nil, fmt.Errorf("%w: consumer key and secret are required", shared.ErrMissingCredentials)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token, secret, err := config.RequestToken()
	if err != nil {
		return nil, fmt.Errorf("%w: request token: %v", shared.ErrAuthFailed, err)
	}

	loginURL, err := config.AuthorizationURL(token)
	if err != nil {
		return nil, fmt.Errorf("%w: authorization url: %v", shared.ErrAuthFailed, err)
	}

	s.mu.Lock()
	s.requestToken, s.requestSecret = token, secret
	s.mu.Unlock()

	return &AuthorizationRequest{LoginURL: loginURL.String(), Token: token}, nil
}

// CompleteAuthorization exchanges the pending request token and the verifier
// shown to the user for an access pair, then upgrades the session to authenticated.
func (s *Session) CompleteAuthorization(ctx context.Context, verifier string) (token, secret string, err error) {
	if verifier == "" {
		return "", "", &MissingArgumentError{Method: "completeAuthorization", Argument: "verifier"}
	}

	s.mu.RLock()
	config, reqToken, reqSecret := s.config, s.requestToken, s.requestSecret
	s.mu.RUnlock()
	if config == nil {
		return "", "", fmt.Errorf("%w: consumer key and secret are required", shared.ErrMissingCredentials)
	}
	if reqToken == "" {
		return "", "", shared.ErrNoRequestToken
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	token, secret, err = config.AccessToken(reqToken, reqSecret, verifier)
	if err != nil {
		return "", "", fmt.Errorf("%w: access token: %v", shared.ErrAuthFailed, err)
	}

	s.mu.Lock()
	s.access = oauth1.NewToken(token, secret)
	s.requestToken, s.requestSecret = "", ""
	s.mu.Unlock()

	return token, secret, nil
}

// PendingToken returns the request token awaiting a verifier, if any.
func (s *Session) PendingToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requestToken
}

// PendingAuthorization returns the request pair awaiting a verifier, if any.
func (s *Session) PendingAuthorization() (token, secret string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requestToken, s.requestSecret
}

// ResumeAuthorization restores a request pair saved by an earlier process so
// [Session.CompleteAuthorization] can exchange it.
func (s *Session) ResumeAuthorization(token, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestToken, s.requestSecret = token, secret
}

// Logout drops the access pair and any pending request token.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = nil
	s.requestToken, s.requestSecret = "", ""
	if s.bearerUser {
		s.bearer, s.bearerUser = nil, false
	}
}

// httpClient returns a client that signs requests, with the access pair when
// authenticated is true and with the consumer pair alone otherwise.
func (s *Session) httpClient(ctx context.Context, authenticated bool) (*http.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bearer != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.base)
		return oauth2.NewClient(ctx, s.bearer), nil
	}
	if s.config == nil {
		return nil, fmt.Errorf("%w: consumer key and secret are required", shared.ErrMissingCredentials)
	}

	token := oauth1.NewToken("", "")
	if authenticated && s.access != nil {
		token = s.access
	}
	ctx = context.WithValue(ctx, oauth1.HTTPClient, s.base)
	return s.config.Client(ctx, token), nil
}
