package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prolock/prolock-controller/internal/device"
	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/logger"
)

const (
	// CaptureRetryDelay is the pause between capture attempts while no
	// finger or card is present.
	CaptureRetryDelay = 500 * time.Millisecond

	// FingerprintCooldown is the pause after a handled fingerprint scan
	// before the sensor accepts the next one.
	FingerprintCooldown = 5 * time.Second

	// CardCooldown is the pause after a handled card scan. Shorter than
	// the fingerprint cooldown because a card tap is deliberate and quick.
	CardCooldown = 1 * time.Second
)

// templateBuffer is the sensor buffer slot used for search templates.
const templateBuffer = 1

// ErrUnmatched reports a well-formed capture that matched no enrolled
// credential. The scan still counts against the channel's failure streak.
var ErrUnmatched = errors.New("credential not enrolled")

// Capturer blocks until one raw credential is read from a physical channel.
type Capturer interface {
	// Channel identifies the physical channel this capturer serves.
	Channel() access.Channel

	// Capture blocks until a credential is read or the context is done.
	// It returns ErrUnmatched for a scan that matched nothing enrolled.
	Capture(ctx context.Context) (string, error)

	// Cooldown is the pause enforced after each handled scan.
	Cooldown() time.Duration
}

// FingerprintCapturer reads fingerprints from the optical sensor and
// resolves them to stored template slots.
type FingerprintCapturer struct {
	// sensor is the fingerprint hardware.
	sensor device.FingerprintSensor
}

// NewFingerprintCapturer creates a capturer over the given sensor.
func NewFingerprintCapturer(sensor device.FingerprintSensor) *FingerprintCapturer {
	return &FingerprintCapturer{sensor: sensor}
}

// Channel returns the fingerprint channel.
func (c *FingerprintCapturer) Channel() access.Channel {
	return access.ChannelFingerprint
}

// Cooldown returns the fingerprint scan cooldown.
func (c *FingerprintCapturer) Cooldown() time.Duration {
	return FingerprintCooldown
}

// Capture waits for a finger, converts the image to a template and searches
// the sensor's stored templates. Image capture retries forever until the
// context is canceled; transient sensor faults never kill the loop.
func (c *FingerprintCapturer) Capture(ctx context.Context) (string, error) {
	for {
		err := c.sensor.CaptureImage(ctx)
		if err == nil {
			break
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		// Anything other than an empty sensor is worth a log line.
		if !errors.Is(err, device.ErrNoFinger) {
			logger.WarnKV(ctx, "Fingerprint capture failed", "error", err)
		}

		if err = sleepFor(ctx, CaptureRetryDelay); err != nil {
			return "", err
		}
	}

	if err := c.sensor.Template(templateBuffer); err != nil {
		return "", fmt.Errorf("convert image to template: %w", err)
	}

	slot, confidence, err := c.sensor.Search()
	if errors.Is(err, device.ErrNoMatch) {
		return "", ErrUnmatched
	}

	if err != nil {
		return "", fmt.Errorf("search stored templates: %w", err)
	}

	logger.DebugKV(ctx, "Fingerprint matched", "slot", slot, "confidence", confidence)

	return strconv.FormatUint(uint64(slot), 10), nil
}

// CardCapturer reads card UIDs from the RFID reader.
type CardCapturer struct {
	// reader is the RFID hardware.
	reader device.CardReader
}

// NewCardCapturer creates a capturer over the given reader.
func NewCardCapturer(reader device.CardReader) *CardCapturer {
	return &CardCapturer{reader: reader}
}

// Channel returns the RFID channel.
func (c *CardCapturer) Channel() access.Channel {
	return access.ChannelRFID
}

// Cooldown returns the card scan cooldown.
func (c *CardCapturer) Cooldown() time.Duration {
	return CardCooldown
}

// Capture waits for a card tap and returns its UID. Like the fingerprint
// path, it retries forever until the context is canceled.
func (c *CardCapturer) Capture(ctx context.Context) (string, error) {
	for {
		uid, err := c.reader.ReadUID(ctx)
		if err == nil {
			return uid, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if !errors.Is(err, device.ErrNoCard) {
			logger.WarnKV(ctx, "Card read failed", "error", err)
		}

		if err = sleepFor(ctx, CaptureRetryDelay); err != nil {
			return "", err
		}
	}
}

// sleepFor pauses for the duration or until the context is done.
func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
