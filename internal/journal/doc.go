// Package journal keeps a local SQLite log of every scan decision the
// station makes, so denials and check-ins remain inspectable when the
// remote backend is unreachable.
//
// All writes are serialized through a single worker goroutine; readers go
// straight to the database. The journal is an audit trail only and never
// participates in access decisions.
package journal
