package schedule

import (
	"context"
	"fmt"

	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/logger"
)

// Decision is the outcome of an authorization call.
type Decision int

const (
	// Denied refuses access. It is the zero value, so every failure path
	// denies by construction.
	Denied Decision = iota
	// Allowed grants access.
	Allowed
)

// String returns a readable decision label.
func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}

	return "denied"
}

// Source is the subset of the backend the authorizer depends on.
type Source interface {
	Schedules(ctx context.Context, subject *access.Subject) ([]access.ScheduleEntry, error)
}

// Authorizer evaluates a subject's schedule entries against a moment.
// It is stateless and safe for concurrent use.
type Authorizer struct {
	// source fetches the subject's schedule entries.
	source Source
}

// NewAuthorizer creates an authorizer backed by the provided schedule source.
func NewAuthorizer(source Source) *Authorizer {
	return &Authorizer{source: source}
}

// Authorize decides whether the subject may enter at the given moment.
// The schedule mode is computed once from the full entry list: one makeup
// entry anywhere puts the subject in makeup-only evaluation. The first
// matching entry wins, in the order the backend returned them.
//
// A non-nil error always accompanies Denied and means the decision failed
// closed rather than evaluating to a denial.
func (a *Authorizer) Authorize(ctx context.Context, subject *access.Subject, now access.Moment) (Decision, error) {
	entries, err := a.source.Schedules(ctx, subject)
	if err != nil {
		return Denied, fmt.Errorf("fetch schedules: %w", err)
	}

	mode := access.ModeFor(entries)

	for _, entry := range entries {
		if !entry.Matches(mode, now) {
			continue
		}

		logger.InfoKV(ctx, "Access allowed by schedule",
			"name", subject.Name,
			"mode", mode.String(),
			"window", fmt.Sprintf("%s-%s", entry.Start, entry.End),
		)

		return Allowed, nil
	}

	logger.InfoKV(ctx, "No schedule entry matches",
		"name", subject.Name,
		"mode", mode.String(),
		"weekday", now.Weekday,
		"time", now.Time.String(),
	)

	return Denied, nil
}
