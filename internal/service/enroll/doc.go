// Package enroll registers new fingerprints: it captures two readings on the
// sensor, stores the combined template in the next free slot and binds the
// slot to a backend account.
package enroll
