package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
)

// Authorizer exchanges a verifier for an access pair. It is satisfied by services.Session.
type Authorizer interface {
	CompleteAuthorization(ctx context.Context, verifier string) (token, secret string, err error)
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token  string
	Secret string
	err    error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the redirect back from the authorization page.
type OAuthHandler struct {
	auth         Authorizer
	requestToken string
	resultChan   chan OAuthResult
	once         sync.Once
	mu           sync.Mutex
	callbackHit  bool
}

// NewOAuthHandler creates a handler that accepts a callback for requestToken only.
func NewOAuthHandler(auth Authorizer, requestToken string) *OAuthHandler {
	return &OAuthHandler{
		auth:         auth,
		requestToken: requestToken,
		resultChan:   make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP checks the returned request token, completes the exchange and reports the outcome.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	q := r.URL.Query()

	if token := q.Get("oauth_token"); token != h.requestToken {
		h.Send(OAuthResult{err: fmt.Errorf("callback token %q does not match the pending request token", token)})
		http.Error(w, "Unknown request token", http.StatusBadRequest)
		return
	}

	verifier := q.Get("oauth_verifier")
	if verifier == "" {
		h.Send(OAuthResult{err: fmt.Errorf("authorization denied: %s", q.Get("oauth_problem"))})
		http.Error(w, "Authorization denied", http.StatusBadRequest)
		return
	}

	token, secret, err := h.auth.CompleteAuthorization(r.Context(), verifier)
	if err != nil {
		h.Send(OAuthResult{err: err})
		http.Error(w, "Token exchange failed", http.StatusBadGateway)
		return
	}

	h.Send(OAuthResult{Token: token, Secret: secret})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	successPage.Execute(w, nil)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>rdx authorized</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #008fd5; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`))
