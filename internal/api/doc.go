// Package api provides HTTP client functionality for communicating with the
// Linkly API. It handles cookie sessions, request/response serialization, and
// classification of failed exchanges.
//
// # Transports
//
// Two capability-scoped transports share one cookie jar:
//
//   - [Client]: the authenticated application client. Every failure goes
//     through [Classify]; session expiry is handed to a [Recoverer].
//   - [RenewalClient]: the bare client for POST /user/refresh-token. It never
//     passes through the classifier, so a failed renewal cannot recurse.
//
// [Transport] performs exactly one exchange per call and never retries.
//
// # Classification
//
// A 401 on a session request that has not been retried yields [ActionRenew].
// Everything else yields [ActionProceed] with a normalized error whose
// message is, in order of preference: the server's envelope message, the
// call site's [Request.StatusMessages] entry, a default per-status message,
// [Request.Fallback], or [GenericFailureMessage].
//
// # Error Handling
//
// The package defines sentinel errors for common API error conditions:
//
//   - [ErrSessionExpired]: the session cookie was rejected (401).
//   - [ErrRenewalFailed]: the renewal exchange failed.
//   - [ErrUnauthorized]: any 401.
//   - [ErrBadRequest], [ErrNotFound], [ErrRateLimited]: 400, 404, 429.
//
// Use errors.Is to check for specific error types:
//
//	if errors.Is(err, api.ErrRenewalFailed) {
//	    // Send the user to the sign-in page
//	}
//
// # Thread Safety
//
// [Client], [Transport] and [RenewalClient] are safe for concurrent use.
package api
