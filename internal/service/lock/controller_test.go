package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prolock/prolock-controller/internal/domain/access"
)

// fakeActuator records actuation calls for assertions.
type fakeActuator struct {
	// mu guards the recorded calls.
	mu sync.Mutex
	// lockCalls holds every SetLock position in order.
	lockCalls []bool
	// pulses counts PulseBuzzer invocations.
	pulses int
	// lastCycles is the cycle count of the most recent pulse.
	lastCycles int
}

// SetLock records the requested position.
func (f *fakeActuator) SetLock(_ context.Context, unlocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lockCalls = append(f.lockCalls, unlocked)

	return nil
}

// PulseBuzzer records the pulse without sleeping.
func (f *fakeActuator) PulseBuzzer(_ context.Context, cycles int, _, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pulses++
	f.lastCycles = cycles

	return nil
}

// pulseCount returns the number of recorded pulses.
func (f *fakeActuator) pulseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pulses
}

// TestCheckInCheckOut verifies lock position and override across a session.
func TestCheckInCheckOut(t *testing.T) {
	t.Parallel()

	actuator := new(fakeActuator)
	c := NewController(actuator)
	ctx := context.Background()

	// Initial state is locked without override.
	require.Equal(t, State{}, c.State())

	c.AuthorizedCheckIn(ctx)
	require.Equal(t, State{Unlocked: true, ManualOverride: true}, c.State())

	c.AuthorizedCheckOut(ctx)
	require.Equal(t, State{}, c.State())

	require.Equal(t, []bool{true, false}, actuator.lockCalls)
}

// TestReconcile_OverrideSuppression keeps the door unlocked while the
// override is set, whatever the remote status says.
func TestReconcile_OverrideSuppression(t *testing.T) {
	t.Parallel()

	actuator := new(fakeActuator)
	c := NewController(actuator)
	ctx := context.Background()

	c.AuthorizedCheckIn(ctx)

	// Remote says close, but the override wins.
	c.Reconcile(ctx, access.StatusClose)
	require.True(t, c.State().Unlocked)

	// Check-out clears the override; reconciliation applies again.
	c.AuthorizedCheckOut(ctx)
	c.Reconcile(ctx, access.StatusOpen)
	require.True(t, c.State().Unlocked)

	c.Reconcile(ctx, access.StatusClose)
	require.False(t, c.State().Unlocked)
}

// TestRecordFailure_AlarmThreshold fires exactly one alarm at the third
// consecutive failure and resets the counter.
func TestRecordFailure_AlarmThreshold(t *testing.T) {
	t.Parallel()

	actuator := new(fakeActuator)
	c := NewController(actuator)
	ctx := context.Background()

	require.False(t, c.RecordFailure(ctx, access.ChannelFingerprint))
	require.False(t, c.RecordFailure(ctx, access.ChannelFingerprint))
	require.Equal(t, 2, c.FailureCount(access.ChannelFingerprint))

	require.True(t, c.RecordFailure(ctx, access.ChannelFingerprint))
	require.Equal(t, 0, c.FailureCount(access.ChannelFingerprint))
	require.Equal(t, 1, actuator.pulseCount())
	require.Equal(t, AlarmCycles, actuator.lastCycles)

	// Counter restarted: two more failures do not fire.
	require.False(t, c.RecordFailure(ctx, access.ChannelFingerprint))
	require.False(t, c.RecordFailure(ctx, access.ChannelFingerprint))
	require.Equal(t, 1, actuator.pulseCount())
}

// TestRecordSuccess_ResetsCounter clears the streak before the threshold.
func TestRecordSuccess_ResetsCounter(t *testing.T) {
	t.Parallel()

	actuator := new(fakeActuator)
	c := NewController(actuator)
	ctx := context.Background()

	c.RecordFailure(ctx, access.ChannelRFID)
	c.RecordFailure(ctx, access.ChannelRFID)
	c.RecordSuccess(ctx, access.ChannelRFID)
	require.Equal(t, 0, c.FailureCount(access.ChannelRFID))

	// The streak starts over; no alarm until three fresh failures.
	require.False(t, c.RecordFailure(ctx, access.ChannelRFID))
	require.False(t, c.RecordFailure(ctx, access.ChannelRFID))
	require.Equal(t, 0, actuator.pulseCount())
}

// TestFailureCounters_PerChannel keeps the two channels' streaks independent.
func TestFailureCounters_PerChannel(t *testing.T) {
	t.Parallel()

	actuator := new(fakeActuator)
	c := NewController(actuator)
	ctx := context.Background()

	c.RecordFailure(ctx, access.ChannelFingerprint)
	c.RecordFailure(ctx, access.ChannelFingerprint)
	c.RecordFailure(ctx, access.ChannelRFID)

	require.Equal(t, 2, c.FailureCount(access.ChannelFingerprint))
	require.Equal(t, 1, c.FailureCount(access.ChannelRFID))
	require.Equal(t, 0, actuator.pulseCount())
}

// recordingSink collects every persisted state.
type recordingSink struct {
	mu     sync.Mutex
	states []State
}

func (s *recordingSink) Persist(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states = append(s.states, state)

	return nil
}

// TestStateSink_ReceivesEveryChange persists each lock state transition.
func TestStateSink_ReceivesEveryChange(t *testing.T) {
	t.Parallel()

	sink := new(recordingSink)
	c := NewController(new(fakeActuator), WithStateSink(sink))
	ctx := context.Background()

	c.AuthorizedCheckIn(ctx)
	c.AuthorizedCheckOut(ctx)

	require.Equal(t, []State{
		{Unlocked: true, ManualOverride: true},
		{},
	}, sink.states)
}

// TestRestore reapplies a persisted open session.
func TestRestore(t *testing.T) {
	t.Parallel()

	actuator := new(fakeActuator)
	c := NewController(actuator)
	ctx := context.Background()

	c.Restore(ctx, State{Unlocked: true, ManualOverride: true})
	require.Equal(t, State{Unlocked: true, ManualOverride: true}, c.State())
	require.Equal(t, []bool{true}, actuator.lockCalls)

	// Restored override still suppresses reconciliation.
	c.Reconcile(ctx, access.StatusClose)
	require.True(t, c.State().Unlocked)
}

// TestConcurrentMutations hammers the controller from several goroutines to
// exercise the single-writer serialization.
func TestConcurrentMutations(t *testing.T) {
	t.Parallel()

	actuator := new(fakeActuator)
	c := NewController(actuator)
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				c.AuthorizedCheckIn(ctx)
				c.Reconcile(ctx, access.StatusClose)
				c.AuthorizedCheckOut(ctx)
				c.RecordFailure(ctx, access.ChannelFingerprint)
				c.RecordSuccess(ctx, access.ChannelFingerprint)
			}
		}()
	}

	wg.Wait()

	// Whatever the interleaving, the final snapshot is consistent.
	state := c.State()
	require.False(t, state.ManualOverride && !state.Unlocked)
}
