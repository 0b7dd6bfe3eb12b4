package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prolock/prolock-controller/internal/backend"
	"github.com/prolock/prolock-controller/internal/config"
	"github.com/prolock/prolock-controller/internal/device"
	"github.com/prolock/prolock-controller/internal/journal"
	"github.com/prolock/prolock-controller/internal/logger"
	"github.com/prolock/prolock-controller/internal/present"
	"github.com/prolock/prolock-controller/internal/repository/state"
	"github.com/prolock/prolock-controller/internal/service/identity"
	"github.com/prolock/prolock-controller/internal/service/ledger"
	"github.com/prolock/prolock-controller/internal/service/lock"
	"github.com/prolock/prolock-controller/internal/service/pipeline"
	"github.com/prolock/prolock-controller/internal/service/reconcile"
	"github.com/prolock/prolock-controller/internal/service/schedule"
)

// Options controls the controller daemon and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// APIBaseURL provides an optional backend URL override.
	APIBaseURL string
	// StationName provides an optional station name override.
	StationName string
	// JournalPath provides an optional journal database path override.
	JournalPath string
	// LogLevel provides an optional log level override.
	LogLevel string
}

// Devices bundles the physical peripherals the daemon drives.
type Devices struct {
	// Sensor is the fingerprint hardware.
	Sensor device.FingerprintSensor
	// Reader is the RFID hardware.
	Reader device.CardReader
	// Actuator drives the solenoid lock and the buzzer.
	Actuator device.Actuator
}

// stateSink persists lock state changes through the state repository.
type stateSink struct {
	repo state.Repository
}

// Persist writes the state snapshot to disk.
func (s stateSink) Persist(ctx context.Context, st lock.State) error {
	return s.repo.Save(ctx, &state.Snapshot{
		Unlocked:       st.Unlocked,
		ManualOverride: st.ManualOverride,
		UpdatedAt:      time.Now().UTC(),
	})
}

// Run starts both scan loops and the lock reconciler, then blocks until the
// context is canceled and every loop has drained.
func Run(ctx context.Context, opts *Options, devices Devices) error {
	ctx = logger.WithName(ctx, "controller")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command line arguments override the configuration file.
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

	station := cfg.StationName
	if opts.StationName != "" {
		station = opts.StationName
	}

	journalPath := cfg.JournalPath
	if opts.JournalPath != "" {
		journalPath = opts.JournalPath
	}

	client := backend.NewClient(baseURL, cfg.Timeout)

	jrnl, err := journal.Open(ctx, journalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	stateRepo := state.NewFileRepository(cfg.StatePath)
	door := lock.NewController(devices.Actuator, lock.WithStateSink(stateSink{repo: stateRepo}))

	// Restore the last known door position so a restart during an open
	// session does not slam the door. The reconciler corrects any drift
	// within one tick.
	switch snapshot, err := stateRepo.Load(ctx); {
	case err == nil:
		door.Restore(ctx, lock.State{
			Unlocked:       snapshot.Unlocked,
			ManualOverride: snapshot.ManualOverride,
		})
	case !errors.Is(err, state.ErrNotFound):
		logger.WarnKV(ctx, "Door state unavailable, starting locked", "error", err)
	}

	pipe := pipeline.New(pipeline.Deps{
		Identity:   identity.NewResolver(client),
		Schedule:   schedule.NewAuthorizer(client),
		Attendance: ledger.New(client),
		Door:       door,
		Clock:      client,
		Feed:       client,
		Audit:      jrnl,
		Presenter:  present.Console{},
		Station:    station,
	})

	reconciler := reconcile.New(client, door, reconcile.DefaultInterval)

	logger.InfoKV(ctx, "Controller started",
		"station", station, "backend", baseURL, "journal", journalPath)

	var wg sync.WaitGroup

	loops := []func(context.Context) error{
		func(ctx context.Context) error {
			return pipe.Run(ctx, pipeline.NewFingerprintCapturer(devices.Sensor))
		},
		func(ctx context.Context) error {
			return pipe.Run(ctx, pipeline.NewCardCapturer(devices.Reader))
		},
		reconciler.Run,
	}

	for _, loop := range loops {
		wg.Add(1)

		go func(run func(context.Context) error) {
			defer wg.Done()

			if err := run(ctx); err != nil {
				logger.ErrorKV(ctx, "Loop exited with error", "error", err)
			}
		}(loop)
	}

	// Block until cancellation has drained every loop, then flush the
	// journal so no pending decisions are lost.
	wg.Wait()

	if err = jrnl.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}

	logger.Info(ctx, "Controller stopped")

	return nil
}
