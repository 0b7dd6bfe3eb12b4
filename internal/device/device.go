package device

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoFinger is returned by CaptureImage when no finger is on the
	// sensor. The caller retries until an image is captured.
	ErrNoFinger = errors.New("no finger detected")

	// ErrNoMatch is returned by Search when the captured template matches
	// no enrolled fingerprint.
	ErrNoMatch = errors.New("no matching fingerprint")

	// ErrNoCard is returned by ReadUID when no card was presented within
	// the reader's connect window.
	ErrNoCard = errors.New("no card presented")
)

// FingerprintSensor is the contract for the optical fingerprint sensor.
//
// The capture sequence mirrors the sensor firmware: capture an image,
// convert it to a template in one of two slots, then either search the
// enrolled templates or combine both slots into a new model.
type FingerprintSensor interface {
	// CaptureImage attempts to capture one finger image.
	// Returns ErrNoFinger when no finger is present; other errors are
	// device failures.
	CaptureImage(ctx context.Context) error

	// Template converts the captured image into a template in slot 1 or 2.
	Template(slot int) error

	// Search matches the slot-1 template against enrolled fingerprints and
	// returns the matched slot ID and confidence, or ErrNoMatch.
	Search() (id uint16, confidence uint16, err error)

	// StoredTemplates lists the slot IDs of all enrolled fingerprints.
	StoredTemplates() ([]uint16, error)

	// CreateModel combines the slot-1 and slot-2 templates into a model.
	CreateModel() error

	// StoreModel persists the combined model at the given slot.
	StoreModel(slot uint16) error
}

// CardReader is the contract for the NFC/RFID card reader.
type CardReader interface {
	// ReadUID blocks until a card is presented or the reader's connect
	// window elapses, returning the card UID in hex or ErrNoCard.
	ReadUID(ctx context.Context) (string, error)
}

// Actuator is the contract for the solenoid lock and the alarm buzzer.
// The lock controller is the only component issuing calls to it.
type Actuator interface {
	// SetLock energizes or releases the solenoid. True means unlocked.
	SetLock(ctx context.Context, unlocked bool) error

	// PulseBuzzer drives the buzzer for the given number of on/off cycles.
	// Implementations observe ctx between cycles so shutdown stays prompt.
	PulseBuzzer(ctx context.Context, cycles int, on, off time.Duration) error
}
