// Package database provides the SQLite connection and schema migrations
// for tabletop-core.
//
// SQLite runs in WAL mode with a single-writer connection pool; every
// mutation in the application executes inside one transaction on this
// pool, which is the only concurrency coordination the store needs.
// Migrations are embedded into the binary by the top-level migrations
// package and applied in version order, each in its own transaction.
package database
