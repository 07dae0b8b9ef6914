// Package session persists login sessions in Redis and issues the signed
// tokens that reference them.
//
// # Model
//
// Every login creates a [Record] stored under its own key with a TTL, plus
// an entry in a per-user index set. The caller receives an HS256 JWT whose
// claims point at the record; validation checks both the signature and the
// record's continued existence, so revocation is immediate. Key prefixes:
//   - <prefix>:s: — session record per session ID
//   - <prefix>:u: — session ID index set per user
//
// # Architecture boundaries
//
// This package owns session persistence and token lifecycle. Transport
// (cookies, headers) and the decision to establish a session belong to the
// caller.
package session
