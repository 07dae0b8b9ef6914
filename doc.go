// Package userauth provides the authentication core of a site's user plugin:
// credential resolution with a configurable login attribute, guest-to-member
// account conversion, Redis-backed login throttling, and session
// establishment.
//
// The package is designed for concurrent request workloads: a [Service] is
// built once through [Builder.Build] and is safe to share, while each request
// gets its own [Manager] via [Service.Manager] so the resolved "current user"
// never leaks across requests.
//
// # Architecture boundaries
//
// userauth is the public surface. It exposes [Service], [Manager], [Builder],
// [Config], the store interfaces ([UserStore], [GroupStore]), and value types.
// Throttle counting and audit dispatch live under internal/ and are never
// exported.
//
// # What this package must NOT do
//
//   - Render HTTP responses or manage cookies — callers own transport.
//   - Reveal, in any error surfaced to an end user, whether a login
//     identifier exists. [ErrUserNotFound] and [ErrInvalidCredentials] are
//     distinguishable for diagnostics but must be presented identically.
//   - Expose Redis clients or internal key layouts in its public API.
package userauth
