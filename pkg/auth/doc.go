// Package auth holds session tokens, password hashing and the project
// role capability table. Sessions are opaque random bearer tokens kept in
// memory; passwords are stored as bcrypt hashes.
package auth
