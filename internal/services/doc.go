// Package services implements a client for the Rdio web API.
//
// # Session
//
// A [Session] owns the OAuth 1.0a state. Configured with a consumer pair it
// signs unauthenticated calls; with an access pair added it signs calls on a
// user's behalf. [Session.BeginAuthorization] and [Session.CompleteAuthorization]
// run the three-legged flow that produces an access pair. A session can instead
// be switched to OAuth 2.0 bearer tokens with [Session.ConfigureOAuth2] or
// [Session.ConfigureBearer].
//
// # Client
//
// [Client] has one method per remote procedure. Each method validates its
// arguments, builds the form body, and maps the result through the models
// package. Procedures that act for a user fail with [NotAuthenticatedError]
// before any request is made when the session has no access token. Collection
// procedures act for the current user when no user key is given.
//
// # Error Handling
//
// Argument errors are returned before any network I/O:
//   - [MissingArgumentError] : a required argument was empty (wraps [shared.ErrMissingArgument])
//   - [InvalidParameterError] : a value outside its allowed set (wraps [shared.ErrInvalidArgument])
//   - [NotAuthenticatedError] : no access token for a user procedure (wraps [shared.ErrNotAuthenticated])
//
// An error envelope from the API becomes an [APIError] carrying the server's
// message (wraps [shared.ErrAPIRequest]). Payloads the models package cannot map
// fail with [models.ErrUnknownType], [models.ErrUnexpectedType] or [models.ErrMalformed].
package services
