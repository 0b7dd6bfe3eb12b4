package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prolock/prolock-controller/internal/device"
	"github.com/prolock/prolock-controller/internal/service/enroll"
)

// enrollCmd registers a new fingerprint for a backend account.
var enrollCmd = &cobra.Command{
	Use:   "enroll <email>",
	Short: "Enroll a fingerprint for a backend account.",
	Long: `Captures a fingerprint twice on the attached sensor, stores the combined
template in the next free sensor slot and binds that slot to the given
backend account. The account email must already exist on the backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		options := &enroll.Options{
			ConfigPath: configPath,
			Email:      args[0],
			APIBaseURL: apiBaseURL,
			LogLevel:   logLevelOverride(cmd),
		}

		return enroll.Run(ctx, options, device.SimSensor{})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(enrollCmd)
}
