package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prolock/prolock-controller/internal/domain/access"
)

var errDirectoryDown = errors.New("directory unreachable")

// fakeDirectory is an in-memory Directory implementation for tests.
type fakeDirectory struct {
	// bySlot maps fingerprint slots to subjects.
	bySlot map[uint16]*access.Subject
	// byUID maps card UIDs to subjects.
	byUID map[string]*access.Subject
	// err is returned from every lookup when set.
	err error
}

// SubjectByFingerprint returns the subject enrolled at a slot, or the configured error.
func (f *fakeDirectory) SubjectByFingerprint(_ context.Context, slot uint16) (*access.Subject, error) {
	if f.err != nil {
		return nil, f.err
	}

	if s, ok := f.bySlot[slot]; ok {
		return s, nil
	}

	return nil, errors.New("not found")
}

// SubjectByCard returns the subject owning a card UID, or the configured error.
func (f *fakeDirectory) SubjectByCard(_ context.Context, uid string) (*access.Subject, error) {
	if f.err != nil {
		return nil, f.err
	}

	if s, ok := f.byUID[uid]; ok {
		return s, nil
	}

	return nil, errors.New("not found")
}

// TestResolve_Fingerprint resolves a decimal slot identifier to a subject.
func TestResolve_Fingerprint(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{
		bySlot: map[uint16]*access.Subject{
			7: {Channel: access.ChannelFingerprint, Key: "7", Name: "Maria Santos"},
		},
	}
	r := NewResolver(dir)

	subject, err := r.Resolve(context.Background(), access.ChannelFingerprint, "7")
	require.NoError(t, err)
	require.Equal(t, "Maria Santos", subject.Name)

	// Unknown slot.
	_, err = r.Resolve(context.Background(), access.ChannelFingerprint, "9")
	require.ErrorIs(t, err, ErrUnknown)

	// Non-numeric raw identifier.
	_, err = r.Resolve(context.Background(), access.ChannelFingerprint, "not-a-slot")
	require.ErrorIs(t, err, ErrUnknown)
}

// TestResolve_Card resolves a card UID to a subject.
func TestResolve_Card(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{
		byUID: map[string]*access.Subject{
			"04a3b2c1": {Channel: access.ChannelRFID, Key: "04a3b2c1", Name: "Jun Reyes"},
		},
	}
	r := NewResolver(dir)

	subject, err := r.Resolve(context.Background(), access.ChannelRFID, "04a3b2c1")
	require.NoError(t, err)
	require.Equal(t, "Jun Reyes", subject.Name)

	_, err = r.Resolve(context.Background(), access.ChannelRFID, "deadbeef")
	require.ErrorIs(t, err, ErrUnknown)
}

// TestResolve_TransportFailure surfaces directory outages as unknown identity.
func TestResolve_TransportFailure(t *testing.T) {
	t.Parallel()

	r := NewResolver(&fakeDirectory{err: errDirectoryDown})

	_, err := r.Resolve(context.Background(), access.ChannelRFID, "04a3b2c1")
	require.ErrorIs(t, err, ErrUnknown)
}
