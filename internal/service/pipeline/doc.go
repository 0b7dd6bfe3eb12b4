// Package pipeline runs the per-channel scan loops. Each loop blocks on its
// capture device, resolves the credential against the backend, authorizes it
// against the subject's schedule, toggles attendance and drives the door
// through the lock controller. Every scan outcome is journaled locally.
package pipeline
