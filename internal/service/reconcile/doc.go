// Package reconcile periodically aligns the door lock with the remote
// status kept by the backend, unless a manual override is in effect.
package reconcile
