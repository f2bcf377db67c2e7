package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "boxsim",
	Short: "Simulate robots that gather scattered boxes into stacks.",
	Long: `boxsim simulates robots on a grid that pick up boxes and stack them. ` +
		`The center policy builds stacks in a column on the left edge, the ` +
		`cooldown policy builds them wherever boxes meet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		logging.Init(debug)

		envFiles, _ := cmd.Flags().GetStringSlice("env-file")
		if len(envFiles) > 0 {
			if err := godotenv.Load(envFiles...); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
		}

		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "YAML or JSON file with simulation parameters")
	flags.Bool("debug", false, "log at debug level")
	flags.StringSlice("env-file", nil, "dotenv files to load before reading the config")
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}

	return 0
}

// simFlags registers the flags that override simulation parameters.
func simFlags(flags *pflag.FlagSet) {
	flags.StringP("policy", "p", "", "robot policy, center or cooldown")
	flags.Int64("seed", 1, "random seed")
	flags.Int("width", 20, "grid width")
	flags.Int("height", 20, "grid height")
	flags.Int("agents", 5, "number of robots")
	flags.Int("boxes", 100, "number of boxes")
	flags.Int("max-stack", 5, "height of a full stack")
	flags.Int("max-iterations", 0, "tick limit (policy default when unset: center 5000, cooldown 20000)")
	flags.Int("target", 20, "number of stacks to complete")
	flags.Int("cooldown", 0, "ticks a cooldown robot rests after a drop (policy default when unset: 3)")
	flags.Bool("record", false, "record a trace of the run")
	flags.String("record-path", "", "trace file name, without the .sqlite3 suffix")
	flags.String("record-backend", "", "trace backend, sqlite or clickhouse")
	flags.String("record-dsn", "", "ClickHouse connection string")
	flags.Bool("skip-actions", false, "record only per-tick summaries")
	flags.Int("record-from", 0, "first tick to record")
	flags.Int("record-to", 0, "last tick to record, 0 records to the end")
}

var flagKeys = map[string]string{
	"policy":         "policy",
	"seed":           "seed",
	"width":          "grid.width",
	"height":         "grid.height",
	"agents":         "num_agents",
	"boxes":          "num_boxes",
	"max-stack":      "max_stack_height",
	"target":         "target_stacks",
	"record":         "recording.enabled",
	"record-path":    "recording.path",
	"record-backend": "recording.backend",
	"record-dsn":     "recording.dsn",
	"skip-actions":   "recording.skip_actions",
	"record-from":    "recording.tick_start",
	"record-to":      "recording.tick_end",
	"max-iterations": "max_iterations",
	"cooldown":       "cooldown_steps",
	"monitor":        "monitor.enabled",
	"port":           "monitor.port",
}

// loadConfig reads the config file named by --config and applies the
// environment and the command flags on top. A flag only counts when it is
// given, so the policy defaults win over flag defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()

	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, err
			}
		}
	}

	path, _ := cmd.Flags().GetString("config")

	return config.Load(v, path)
}
