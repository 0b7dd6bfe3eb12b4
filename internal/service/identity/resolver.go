package identity

import (
	"context"
	"errors"
	"strconv"

	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/logger"
)

// ErrUnknown is returned for every scan that cannot be resolved to a
// subject, whether the directory has no entry or the lookup itself failed.
var ErrUnknown = errors.New("unknown identity")

// Directory is the subset of the backend the resolver depends on.
type Directory interface {
	SubjectByFingerprint(ctx context.Context, slot uint16) (*access.Subject, error)
	SubjectByCard(ctx context.Context, uid string) (*access.Subject, error)
}

// Resolver maps raw scan identifiers to subjects via the directory.
type Resolver struct {
	// directory performs the remote lookups.
	directory Directory
}

// NewResolver creates a resolver backed by the provided directory.
func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve looks up the subject for a raw identifier on the given channel.
// All failures collapse into ErrUnknown; the cause is logged, never acted on.
func (r *Resolver) Resolve(ctx context.Context, channel access.Channel, raw string) (*access.Subject, error) {
	var (
		subject *access.Subject
		err     error
	)

	switch channel {
	case access.ChannelFingerprint:
		var slot uint64

		slot, err = strconv.ParseUint(raw, 10, 16)
		if err == nil {
			subject, err = r.directory.SubjectByFingerprint(ctx, uint16(slot))
		}
	case access.ChannelRFID:
		subject, err = r.directory.SubjectByCard(ctx, raw)
	default:
		return nil, ErrUnknown
	}

	if err != nil {
		logger.WarnKV(ctx, "Identity resolution failed",
			"channel", string(channel), "raw", raw, "error", err)

		return nil, ErrUnknown
	}

	logger.InfoKV(ctx, "Identity resolved",
		"channel", string(channel), "raw", raw, "name", subject.Name, "role", subject.Role)

	return subject, nil
}
