// Package throttle provides the Redis-backed login throttle tracker.
//
// # Window semantics
//
// Failure counters use INCR + conditional EXPIRE on the first hit, giving a
// rolling attempt window. Reaching the attempt budget writes a separate
// lockout key whose TTL is the suspension length. Key prefixes:
//   - <prefix>:a: — failure counter per (login, IP)
//   - <prefix>:l: — active lockout marker per (login, IP)
//
// # What this package must NOT do
//
//   - Decide whether throttling is enabled (the use_throttle setting is read
//     by the Manager, not here).
//   - Import userauth or any sibling internal package.
package throttle
