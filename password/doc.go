// Package password implements credential hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters so a
// caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Which user attributes are
// hashable, and what happens on mismatch, is decided by the credential
// resolver in the root package.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials — callers supply plaintext and receive hashes.
//   - Import any other userauth package.
//   - Log plaintext credentials or hash parameters at runtime.
package password
