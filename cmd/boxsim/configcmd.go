package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the parameters a run would use.",
	Long: `Print the parameters a run would use after the config file, the ` +
		`BOXSIM_* environment and the flags are applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("output")

		return writeOutput(cmd.OutOrStdout(), format, cfg)
	},
}

func init() {
	simFlags(configCmd.Flags())
	configCmd.Flags().Bool("monitor", false, "serve the monitoring web page while running")
	configCmd.Flags().Int("port", 0, "monitoring port, 0 picks a free one")
	configCmd.Flags().StringP("output", "o", "yaml", "output format: json or yaml")

	rootCmd.AddCommand(configCmd)
}
