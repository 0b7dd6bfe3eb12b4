// Package controller assembles the door controller daemon: both scan loops,
// the lock reconciler, the local journal and the backend client.
package controller
