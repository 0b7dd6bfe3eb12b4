package lock

import (
	"context"
	"sync"
	"time"

	"github.com/prolock/prolock-controller/internal/device"
	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/logger"
)

const (
	// FailureThreshold is the number of consecutive unresolved scans on
	// one channel that fires the alarm.
	FailureThreshold = 3

	// AlarmCycles is the number of buzzer on/off cycles per alarm.
	AlarmCycles = 50

	// AlarmOn is the buzzer on-time per cycle.
	AlarmOn = 100 * time.Millisecond

	// AlarmOff is the buzzer off-time per cycle.
	AlarmOff = 100 * time.Millisecond
)

// State is a snapshot of the controller's lock state.
type State struct {
	// Unlocked is the solenoid position; false means locked.
	Unlocked bool
	// ManualOverride suppresses automatic relocking by reconciliation
	// until the next authorized check-out.
	ManualOverride bool
}

// Sink receives every lock state change, typically to persist it.
type Sink interface {
	Persist(ctx context.Context, state State) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithStateSink makes the controller report every state change to the sink.
func WithStateSink(sink Sink) Option {
	return func(c *Controller) {
		c.sink = sink
	}
}

// Controller is the single writer for lock state, the override flag and
// the failure counters. All other components read through its methods and
// never touch the actuator directly.
type Controller struct {
	// mu serializes every state mutation and solenoid actuation.
	mu sync.Mutex
	// unlocked is the current solenoid position.
	unlocked bool
	// manualOverride suppresses reconciliation relocks while set.
	manualOverride bool
	// failures counts consecutive unresolved scans per channel.
	failures map[access.Channel]int

	// buzzerMu keeps alarm pulses from overlapping without holding up
	// state changes for the ~10 s pulse duration.
	buzzerMu sync.Mutex
	// actuator drives the solenoid and the buzzer.
	actuator device.Actuator
	// sink is notified of every state change, may be nil.
	sink Sink
}

// NewController creates a controller in the locked state.
func NewController(actuator device.Actuator, opts ...Option) *Controller {
	c := &Controller{
		failures: make(map[access.Channel]int),
		actuator: actuator,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Restore applies a previously persisted state, typically at startup so a
// controller restart does not slam a door that was held open.
func (c *Controller) Restore(ctx context.Context, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unlocked = state.Unlocked
	c.manualOverride = state.ManualOverride
	c.drive(ctx)
}

// AuthorizedCheckIn unlocks the door and raises the manual override so the
// next reconciliation ticks cannot undo the unlock.
func (c *Controller) AuthorizedCheckIn(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unlocked = true
	c.manualOverride = true
	c.drive(ctx)
}

// AuthorizedCheckOut locks the door and clears the manual override,
// handing control back to reconciliation.
func (c *Controller) AuthorizedCheckOut(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unlocked = false
	c.manualOverride = false
	c.drive(ctx)
}

// Reconcile aligns the solenoid with the remote status unless the manual
// override is set.
func (c *Controller) Reconcile(ctx context.Context, status access.RemoteStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manualOverride {
		logger.DebugKV(ctx, "Reconcile skipped, manual override active", "remote", status.String())

		return
	}

	c.unlocked = status == access.StatusOpen
	c.drive(ctx)
}

// RecordFailure counts one unresolved scan on the channel. Reaching the
// threshold fires the alarm, resets the counter and returns true.
//
// The buzzer pulse runs after the counter update so a concurrent scan on
// the other channel is never blocked behind the ~10 s pattern.
func (c *Controller) RecordFailure(ctx context.Context, channel access.Channel) bool {
	c.mu.Lock()

	c.failures[channel]++
	fired := c.failures[channel] >= FailureThreshold

	if fired {
		c.failures[channel] = 0
	}

	count := c.failures[channel]
	c.mu.Unlock()

	if !fired {
		logger.InfoKV(ctx, "Unresolved scan recorded",
			"channel", string(channel), "consecutive", count)

		return false
	}

	logger.WarnKV(ctx, "Failure threshold reached, sounding alarm",
		"channel", string(channel), "threshold", FailureThreshold)

	c.buzzerMu.Lock()
	defer c.buzzerMu.Unlock()

	if err := c.actuator.PulseBuzzer(ctx, AlarmCycles, AlarmOn, AlarmOff); err != nil {
		// Device failure: the decision stands, only the noise is lost.
		logger.ErrorKV(ctx, "Buzzer pulse failed", "error", err)
	}

	return true
}

// RecordSuccess resets the channel's failure counter after a resolved scan.
func (c *Controller) RecordSuccess(ctx context.Context, channel access.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failures[channel] != 0 {
		logger.DebugKV(ctx, "Failure counter reset", "channel", string(channel))
	}

	c.failures[channel] = 0
}

// State returns a snapshot of the current lock state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Unlocked:       c.unlocked,
		ManualOverride: c.manualOverride,
	}
}

// FailureCount returns the channel's current consecutive failure count.
func (c *Controller) FailureCount(channel access.Channel) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.failures[channel]
}

// drive pushes the current position to the solenoid and persists the state.
// Callers hold mu. Actuator and sink failures are logged and not escalated;
// the next state change retries the hardware anyway.
func (c *Controller) drive(ctx context.Context) {
	if c.sink != nil {
		if err := c.sink.Persist(ctx, State{Unlocked: c.unlocked, ManualOverride: c.manualOverride}); err != nil {
			logger.WarnKV(ctx, "Lock state persistence failed", "error", err)
		}
	}

	if err := c.actuator.SetLock(ctx, c.unlocked); err != nil {
		logger.ErrorKV(ctx, "Solenoid actuation failed",
			"unlocked", c.unlocked, "error", err)

		return
	}

	logger.InfoKV(ctx, "Lock actuated", "unlocked", c.unlocked, "override", c.manualOverride)
}
