package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prolock/prolock-controller/internal/config"
	"github.com/prolock/prolock-controller/internal/device"
	"github.com/prolock/prolock-controller/internal/service/controller"
	"github.com/prolock/prolock-controller/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// apiBaseURL provides an optional backend URL override.
	apiBaseURL string
	// stationName provides an optional station name override.
	stationName string
	// journalPath provides an optional journal database path override.
	journalPath string
	// logLevel sets the minimum log level for all commands.
	logLevel string

	// rootCmd represents the base command that runs the door controller.
	rootCmd = &cobra.Command{
		Use:   "prolock-controller [api-base-url]",
		Short: "Run the door access controller.",
		Long: `Unattended door controller for fingerprint and RFID access.

Runs both scan loops against the attached peripherals, authorizes each scan
against the subject's class schedule on the backend, toggles attendance
between check-in and check-out, and drives the solenoid lock and buzzer.
The lock is reconciled with the backend's remote status every 10 seconds
unless an authorized check-in is holding the door open.
Backend URL can be provided as argument or loaded from configuration file.

Every scan decision is journaled to a local SQLite database for audit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use backend URL argument if provided, otherwise rely on config.
			baseURL := apiBaseURL
			if len(args) > 0 {
				baseURL = args[0]
			}

			options := &controller.Options{
				ConfigPath:  configPath,
				APIBaseURL:  baseURL,
				StationName: stationName,
				JournalPath: journalPath,
				LogLevel:    logLevelOverride(cmd),
			}

			// Simulated peripherals; real drivers plug in through the
			// same interfaces.
			devices := controller.Devices{
				Sensor:   device.SimSensor{},
				Reader:   device.SimReader{},
				Actuator: device.SimActuator{},
			}

			return controller.Run(ctx, options, devices)
		},
	}
)

// logLevelOverride returns the log level only when the flag was given
// explicitly, so the configuration file keeps its say otherwise.
func logLevelOverride(cmd *cobra.Command) string {
	if cmd.Flags().Changed("log-level") {
		return logLevel
	}

	return ""
}

// Execute runs the prolock-controller CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-base-url", "",
		"backend API base URL override")

	rootCmd.Flags().StringVar(&stationName, "station", "", "station name override")
	rootCmd.Flags().StringVar(&journalPath, "journal", "", "journal database path override")
}
