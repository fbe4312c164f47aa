// Package renewal coordinates session renewal for the Linkly client.
//
// A [Coordinator] is a two-state machine (idle, renewing). The first request
// that observes session expiry while idle switches it to renewing and starts
// exactly one renewal exchange; every other request that observes expiry
// before the cycle ends joins the pending queue instead. When the exchange
// settles the queue is drained: on success every waiting request is replayed
// once through the [Dispatcher], on failure every waiting request receives
// the same renewal error and the invalidation hook runs once.
//
// [Coordinator.Renew] joins or starts a cycle without a request to replay,
// for explicit renewals.
//
// Replayed requests are marked retried and sent straight to the transport,
// so a second 401 is returned to the caller instead of starting another
// cycle.
package renewal
