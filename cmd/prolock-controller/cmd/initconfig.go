package cmd

import (
	"github.com/spf13/cobra"

	"github.com/prolock/prolock-controller/internal/config"
	"github.com/prolock/prolock-controller/internal/logger"
)

// initConfigCmd writes a settings file with sensible defaults.
var initConfigCmd = &cobra.Command{
	Use:   "init-config <api-base-url>",
	Short: "Write a settings file for this station.",
	Long: `Writes the station settings YAML file with the given backend URL and
default values for everything else. Existing files are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			APIBaseURL:  args[0],
			StationName: stationName,
			JournalPath: journalPath,
		}

		if err := config.Save(configPath, cfg); err != nil {
			return err
		}

		logger.Infof(cmd.Context(), "Settings written to %s", configPath)

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initConfigCmd.Flags().StringVar(&stationName, "station", "", "station name")
	initConfigCmd.Flags().StringVar(&journalPath, "journal", "", "journal database path")

	rootCmd.AddCommand(initConfigCmd)
}
