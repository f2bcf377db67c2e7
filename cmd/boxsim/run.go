package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/boxstack/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print its result.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s, err := simulation.MakeBuilder().WithConfig(cfg).Build()
		if err != nil {
			return err
		}

		if open, _ := cmd.Flags().GetBool("open"); open && s.GetMonitor() != nil {
			if err := s.GetMonitor().OpenInBrowser(); err != nil {
				log.Warn().Err(err).Msg("cannot open the monitor in a browser")
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		res, runErr := s.Run(ctx)
		termErr := s.Terminate()

		format, _ := cmd.Flags().GetString("output")
		if err := writeOutput(cmd.OutOrStdout(), format, res); err != nil {
			return err
		}

		if errors.Is(runErr, context.Canceled) {
			log.Warn().Int("tick", res.Ticks).Msg("interrupted")
			runErr = nil
		}

		return errors.Join(runErr, termErr)
	},
}

func init() {
	simFlags(runCmd.Flags())
	runCmd.Flags().Bool("monitor", false, "serve the monitoring web page while running")
	runCmd.Flags().Int("port", 0, "monitoring port, 0 picks a free one")
	runCmd.Flags().Bool("open", false, "open the monitoring page in a browser")
	runCmd.Flags().StringP("output", "o", "text", "result format: text, json or yaml")

	rootCmd.AddCommand(runCmd)
}

// textWriter is implemented by values with their own text rendering.
type textWriter interface {
	WriteTable(w io.Writer) error
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	case "text", "":
		if t, ok := v.(textWriter); ok {
			return t.WriteTable(w)
		}

		switch r := v.(type) {
		case simulation.Result:
			return writeResult(w, r)
		case []simulation.Result:
			for _, res := range r {
				if err := writeResult(w, res); err != nil {
					return err
				}
			}

			return nil
		}

		return fmt.Errorf("no text output for %T", v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeResult(w io.Writer, r simulation.Result) error {
	_, err := fmt.Fprintf(w,
		"simulation %s\npolicy %s, seed %d\nhalted: %s after %d ticks\ncompleted stacks: %d\n",
		r.ID, r.Policy, r.Seed, r.HaltReason, r.Ticks, r.CompletedStacks)
	if err != nil {
		return err
	}

	if r.Error != "" {
		_, err = fmt.Fprintf(w, "error: %s\n", r.Error)
	}

	return err
}
