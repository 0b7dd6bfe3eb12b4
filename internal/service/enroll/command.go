package enroll

import (
	"context"
	"fmt"

	"github.com/prolock/prolock-controller/internal/backend"
	"github.com/prolock/prolock-controller/internal/config"
	"github.com/prolock/prolock-controller/internal/device"
	"github.com/prolock/prolock-controller/internal/logger"
	"github.com/prolock/prolock-controller/internal/present"
)

// Options controls a single enrollment run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Email is the backend account the fingerprint is bound to.
	Email string
	// APIBaseURL provides an optional backend URL override.
	APIBaseURL string
	// LogLevel provides an optional log level override.
	LogLevel string
}

// Run performs one enrollment against the configured backend using the
// provided sensor.
func Run(ctx context.Context, opts *Options, sensor device.FingerprintSensor) error {
	ctx = logger.WithName(ctx, "enroll")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logLevel := cfg.LogLevel
	if opts.LogLevel != "" {
		logLevel = opts.LogLevel
	}

	if level, ok := logger.ParseLogLevel(logLevel); ok && logLevel != "" {
		logger.SetLevel(level)
	}

	baseURL := cfg.APIBaseURL
	if opts.APIBaseURL != "" {
		baseURL = opts.APIBaseURL
	}

	client := backend.NewClient(baseURL, cfg.Timeout)
	service := NewService(sensor, client, present.Console{})

	slot, err := service.Enroll(ctx, opts.Email)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Fingerprint for %s stored in slot %d", opts.Email, slot)

	return nil
}
