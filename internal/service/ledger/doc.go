// Package ledger toggles attendance state for authorized subjects.
//
// A subject with no open record checks in; a subject with an open record
// checks out, and the check-out then force-closes every other open record
// in the system with the sentinel time-out. All toggles are serialized
// through a single mutex so concurrent scans from the two input channels
// cannot interleave their read-modify-write sequences.
package ledger
