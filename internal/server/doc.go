// Package server provides the local HTTP listener used during authorization.
//
// # Router
//
// The [Router] interface defines HTTP routing with middleware support. [Middleware] wraps handlers in
// reverse order (last added executes first). [BasicRouter] implements it on [http.ServeMux] patterns.
//
// # OAuth callback
//
// When a callback URL is configured instead of "oob", the authorization page redirects the user's browser
// to the local listener with oauth_token and oauth_verifier in the query. [OAuthHandler] checks that the
// token matches the pending request token, exchanges the verifier for an access pair and delivers the
// outcome on a channel. It processes a single callback.
//
// [CallbackServer] owns the listener for the length of one authorization and shuts down afterwards.
package server
