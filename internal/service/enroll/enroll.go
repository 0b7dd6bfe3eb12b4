package enroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prolock/prolock-controller/internal/device"
	"github.com/prolock/prolock-controller/internal/logger"
	"github.com/prolock/prolock-controller/internal/present"
)

const (
	// sensorCapacity is the template capacity of the optical sensor.
	sensorCapacity = 127

	// captureRetryDelay is the pause between capture attempts while the
	// sensor is empty.
	captureRetryDelay = 500 * time.Millisecond

	// removalPause gives the subject time to lift the finger between the
	// two readings.
	removalPause = 2 * time.Second
)

var (
	// ErrAlreadyEnrolled reports a finger that matches a stored template.
	ErrAlreadyEnrolled = errors.New("fingerprint already enrolled")

	// ErrSensorFull reports that every template slot is taken.
	ErrSensorFull = errors.New("sensor template storage is full")
)

// Registrar binds a stored template slot to a backend account.
type Registrar interface {
	RegisterFingerprint(ctx context.Context, email string, slot uint16) error
}

// Service performs fingerprint enrollments.
type Service struct {
	// sensor is the fingerprint hardware.
	sensor device.FingerprintSensor
	// registrar records the slot assignment on the backend.
	registrar Registrar
	// presenter guides the subject through the two readings.
	presenter present.Presenter
	// removalPause is the wait between the two readings.
	removalPause time.Duration
}

// NewService creates an enrollment service.
func NewService(sensor device.FingerprintSensor, registrar Registrar, presenter present.Presenter) *Service {
	return &Service{
		sensor:       sensor,
		registrar:    registrar,
		presenter:    presenter,
		removalPause: removalPause,
	}
}

// Enroll captures the same finger twice, stores the combined template in the
// next free slot and registers the slot for the given account. It returns
// the assigned slot.
func (s *Service) Enroll(ctx context.Context, email string) (uint16, error) {
	slot, err := s.nextFreeSlot()
	if err != nil {
		return 0, err
	}

	logger.InfoKV(ctx, "Starting enrollment", "email", email, "slot", slot)

	s.presenter.Present(ctx, "Place your finger on the sensor.", present.SeverityInfo)

	if err = s.captureInto(ctx, 1); err != nil {
		return 0, err
	}

	// A first reading that matches a stored template means this finger is
	// already enrolled; never store a duplicate.
	if _, _, err = s.sensor.Search(); err == nil {
		s.presenter.Present(ctx, "This finger is already enrolled.", present.SeverityDenied)

		return 0, ErrAlreadyEnrolled
	} else if !errors.Is(err, device.ErrNoMatch) {
		return 0, fmt.Errorf("duplicate check: %w", err)
	}

	s.presenter.Present(ctx, "Remove your finger.", present.SeverityInfo)

	if err = sleepFor(ctx, s.removalPause); err != nil {
		return 0, err
	}

	s.presenter.Present(ctx, "Place the same finger again.", present.SeverityInfo)

	if err = s.captureInto(ctx, 2); err != nil {
		return 0, err
	}

	// The sensor rejects the model when the two readings disagree.
	if err = s.sensor.CreateModel(); err != nil {
		s.presenter.Present(ctx, "Readings did not match. Start over.", present.SeverityDenied)

		return 0, fmt.Errorf("combine readings: %w", err)
	}

	if err = s.sensor.StoreModel(slot); err != nil {
		return 0, fmt.Errorf("store template in slot %d: %w", slot, err)
	}

	if err = s.registrar.RegisterFingerprint(ctx, email, slot); err != nil {
		return 0, fmt.Errorf("register slot %d for %s: %w", slot, email, err)
	}

	s.presenter.Present(ctx, fmt.Sprintf("Enrolled %s in slot %d.", email, slot), present.SeverityInfo)
	logger.InfoKV(ctx, "Enrollment complete", "email", email, "slot", slot)

	return slot, nil
}

// nextFreeSlot returns the lowest unoccupied template slot.
func (s *Service) nextFreeSlot() (uint16, error) {
	stored, err := s.sensor.StoredTemplates()
	if err != nil {
		return 0, fmt.Errorf("read stored templates: %w", err)
	}

	taken := make(map[uint16]struct{}, len(stored))
	for _, slot := range stored {
		taken[slot] = struct{}{}
	}

	for slot := uint16(1); slot <= sensorCapacity; slot++ {
		if _, ok := taken[slot]; !ok {
			return slot, nil
		}
	}

	return 0, ErrSensorFull
}

// captureInto waits for a finger and converts the image into the given
// sensor buffer. Retries until the context is canceled.
func (s *Service) captureInto(ctx context.Context, buffer int) error {
	for {
		err := s.sensor.CaptureImage(ctx)
		if err == nil {
			break
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !errors.Is(err, device.ErrNoFinger) {
			logger.WarnKV(ctx, "Capture failed", "error", err)
		}

		if err = sleepFor(ctx, captureRetryDelay); err != nil {
			return err
		}
	}

	if err := s.sensor.Template(buffer); err != nil {
		return fmt.Errorf("convert image to template: %w", err)
	}

	return nil
}

// sleepFor pauses for the duration or until the context is done.
func sleepFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
