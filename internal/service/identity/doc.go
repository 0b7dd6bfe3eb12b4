// Package identity resolves raw scan identifiers to directory subjects.
//
// Resolution is a pure query against the remote directory. Any failure,
// transport included, is surfaced as an unknown identity so that nothing
// ambiguous ever authorizes access.
package identity
