package enroll

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prolock/prolock-controller/internal/device"
	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/present"
)

// scriptedSensor records enrollment calls and scripts search results.
type scriptedSensor struct {
	stored      []uint16
	storedErr   error
	searchErr   error
	createErr   error
	templates   []int
	storedSlot  uint16
	storeCalled bool
}

func (s *scriptedSensor) CaptureImage(context.Context) error { return nil }

func (s *scriptedSensor) Template(buffer int) error {
	s.templates = append(s.templates, buffer)

	return nil
}

func (s *scriptedSensor) Search() (uint16, uint16, error) {
	if s.searchErr != nil {
		return 0, 0, s.searchErr
	}

	return 5, 99, nil
}

func (s *scriptedSensor) StoredTemplates() ([]uint16, error) {
	return s.stored, s.storedErr
}

func (s *scriptedSensor) CreateModel() error { return s.createErr }

func (s *scriptedSensor) StoreModel(slot uint16) error {
	s.storeCalled = true
	s.storedSlot = slot

	return nil
}

type fakeRegistrar struct {
	email string
	slot  uint16
	err   error
	calls int
}

func (f *fakeRegistrar) RegisterFingerprint(_ context.Context, email string, slot uint16) error {
	f.calls++
	f.email = email
	f.slot = slot

	return f.err
}

type silentPresenter struct{}

func (silentPresenter) Present(context.Context, string, present.Severity)               {}
func (silentPresenter) RenderAttendanceRows(context.Context, []access.AttendanceRecord) {}

// newTestService builds a service with the inter-reading pause removed.
func newTestService(sensor device.FingerprintSensor, registrar Registrar) *Service {
	s := NewService(sensor, registrar, silentPresenter{})
	s.removalPause = 0

	return s
}

func TestEnroll_StoresAndRegisters(t *testing.T) {
	t.Parallel()

	sensor := &scriptedSensor{
		stored:    []uint16{1, 2, 4},
		searchErr: device.ErrNoMatch,
	}
	registrar := new(fakeRegistrar)

	slot, err := newTestService(sensor, registrar).
		Enroll(context.Background(), "alice@example.edu")
	require.NoError(t, err)

	// Lowest free slot is 3, and both readings were converted.
	require.Equal(t, uint16(3), slot)
	require.Equal(t, []int{1, 2}, sensor.templates)
	require.True(t, sensor.storeCalled)
	require.Equal(t, uint16(3), sensor.storedSlot)

	require.Equal(t, 1, registrar.calls)
	require.Equal(t, "alice@example.edu", registrar.email)
	require.Equal(t, uint16(3), registrar.slot)
}

func TestEnroll_RejectsDuplicateFinger(t *testing.T) {
	t.Parallel()

	// Search succeeds, meaning the finger matches a stored template.
	sensor := &scriptedSensor{}
	registrar := new(fakeRegistrar)

	_, err := newTestService(sensor, registrar).
		Enroll(context.Background(), "alice@example.edu")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.False(t, sensor.storeCalled)
	require.Equal(t, 0, registrar.calls)
}

func TestEnroll_SensorFull(t *testing.T) {
	t.Parallel()

	stored := make([]uint16, 0, sensorCapacity)
	for slot := uint16(1); slot <= sensorCapacity; slot++ {
		stored = append(stored, slot)
	}

	sensor := &scriptedSensor{stored: stored, searchErr: device.ErrNoMatch}

	_, err := newTestService(sensor, new(fakeRegistrar)).
		Enroll(context.Background(), "alice@example.edu")
	require.ErrorIs(t, err, ErrSensorFull)
}

func TestEnroll_MismatchedReadings(t *testing.T) {
	t.Parallel()

	sensor := &scriptedSensor{
		searchErr: device.ErrNoMatch,
		createErr: errors.New("readings disagree"),
	}
	registrar := new(fakeRegistrar)

	_, err := newTestService(sensor, registrar).
		Enroll(context.Background(), "alice@example.edu")
	require.Error(t, err)
	require.False(t, sensor.storeCalled)
	require.Equal(t, 0, registrar.calls)
}

func TestEnroll_RegistrarFailure(t *testing.T) {
	t.Parallel()

	sensor := &scriptedSensor{searchErr: device.ErrNoMatch}
	registrar := &fakeRegistrar{err: errors.New("backend down")}

	_, err := newTestService(sensor, registrar).
		Enroll(context.Background(), "alice@example.edu")
	require.Error(t, err)
}
