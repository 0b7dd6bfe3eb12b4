// Package state persists the door's last known lock state.
//
// The FileRepository stores and loads the state as JSON on disk so a
// controller restart can restore the door position instead of slamming an
// open session shut.
package state
