// Package auth provides authentication and authorisation for tabletop-core.
//
// It implements a two-role model (gm, player) with:
//   - Argon2id password hashing in PHC string format, so stored hashes
//     remain verifiable after the hashing parameters change
//   - Signed JWT session tokens embedding subject and role (HS256, 24h default)
//   - A SQLite-backed user repository
//   - First-boot GM account seeding
//
// Authentication never distinguishes "no such user" from "wrong password"
// in its result, to avoid username enumeration.
package auth
