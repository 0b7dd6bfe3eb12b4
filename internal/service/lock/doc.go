// Package lock owns the door actuator state: the solenoid position, the
// manual-override flag and the per-channel failure counters.
//
// Every mutation goes through the Controller, which serializes them with a
// single mutex. The manual-override flag, set by an authorized check-in,
// suppresses the periodic reconciliation until the next authorized
// check-out clears it. Three consecutive unresolved scans on one channel
// fire the alarm buzzer and reset that channel's counter.
package lock
