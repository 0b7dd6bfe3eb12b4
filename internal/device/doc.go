// Package device defines the hardware contracts the controller drives: the
// fingerprint sensor, the card reader and the lock/buzzer actuator.
//
// The controller core never talks to serial ports or GPIO pins directly;
// it only consumes these interfaces. The package ships simulated
// implementations so the daemon can run on a workstation without the
// station hardware attached.
package device
