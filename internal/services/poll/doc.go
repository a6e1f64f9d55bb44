// Package poll implements a single live classroom polling session.
//
// The domain subpackage owns the session rules (one teacher, timed questions,
// vote tallies) and the app subpackage serializes inbound WebSocket events
// through a single coordinator so those rules never observe concurrent
// mutation.
package poll
