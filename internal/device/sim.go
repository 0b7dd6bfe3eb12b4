package device

import (
	"context"
	"time"

	"github.com/prolock/prolock-controller/internal/logger"
)

// simIdleDelay paces simulated capture attempts so an idle simulated
// station does not spin.
const simIdleDelay = 500 * time.Millisecond

// SimSensor is a fingerprint sensor simulation with no finger ever present.
// It keeps the scan pipeline's capture loop honest without hardware.
type SimSensor struct{}

// CaptureImage reports no finger after a short pause.
func (SimSensor) CaptureImage(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(simIdleDelay):
		return ErrNoFinger
	}
}

// Template fails because the simulation never captures an image.
func (SimSensor) Template(int) error { return ErrNoFinger }

// Search fails because the simulation never captures an image.
func (SimSensor) Search() (uint16, uint16, error) { return 0, 0, ErrNoMatch }

// StoredTemplates reports an empty sensor.
func (SimSensor) StoredTemplates() ([]uint16, error) { return nil, nil }

// CreateModel fails because the simulation never captures images.
func (SimSensor) CreateModel() error { return ErrNoFinger }

// StoreModel fails because the simulation never creates models.
func (SimSensor) StoreModel(uint16) error { return ErrNoFinger }

// SimReader is a card reader simulation with no card ever presented.
type SimReader struct{}

// ReadUID reports no card after the simulated connect window.
func (SimReader) ReadUID(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(simIdleDelay):
		return "", ErrNoCard
	}
}

// SimActuator logs actuation instead of driving GPIO pins.
type SimActuator struct{}

// SetLock logs the requested lock position.
func (SimActuator) SetLock(ctx context.Context, unlocked bool) error {
	position := "locked"
	if unlocked {
		position = "unlocked"
	}

	logger.InfoKV(ctx, "Simulated solenoid", "position", position)

	return nil
}

// PulseBuzzer logs the pulse pattern and sleeps through it, observing ctx
// between cycles.
func (SimActuator) PulseBuzzer(ctx context.Context, cycles int, on, off time.Duration) error {
	logger.InfoKV(ctx, "Simulated buzzer pulse", "cycles", cycles, "on", on.String(), "off", off.String())

	for i := 0; i < cycles; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(on + off):
		}
	}

	return nil
}
