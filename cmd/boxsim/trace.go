package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/tracing"
)

var traceCmd = &cobra.Command{
	Use:   "trace FILE",
	Short: "Print what a recorded run did.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}

		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		robot, _ := cmd.Flags().GetInt("robot")
		limit, _ := cmd.Flags().GetInt("limit")

		return printTrace(cmd.Context(), cmd.OutOrStdout(), reader, robot, limit)
	},
}

func init() {
	traceCmd.Flags().Int("robot", -1, "list the actions of one robot")
	traceCmd.Flags().Int("limit", 20, "maximum number of actions to list")

	rootCmd.AddCommand(traceCmd)
}

func printTrace(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
	robot, limit int,
) error {
	reader.MapTable(datarecording.ExecTable, datarecording.ExecInfo{})
	reader.MapTable(tracing.HaltTable, tracing.HaltEntry{})
	reader.MapTable(tracing.TickTable, tracing.TickEntry{})
	reader.MapTable(tracing.ActionTable, tracing.ActionEntry{})

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	info, _, err := reader.Query(ctx, datarecording.ExecTable, datarecording.QueryParams{})
	if err != nil {
		return err
	}

	for _, e := range info {
		entry := e.(*datarecording.ExecInfo)
		fmt.Fprintf(w, "%s\t%s\n", entry.Property, entry.Value)
	}

	halts, _, err := reader.Query(ctx, tracing.HaltTable, datarecording.QueryParams{})
	if err != nil {
		return err
	}

	for _, h := range halts {
		halt := h.(*tracing.HaltEntry)
		fmt.Fprintf(w, "halted\t%s after %d ticks\n", halt.Reason, halt.Ticks)

		if halt.Error != "" {
			fmt.Fprintf(w, "error\t%s\n", halt.Error)
		}
	}

	last, ticks, err := reader.Query(ctx, tracing.TickTable, datarecording.QueryParams{
		OrderBy: "Tick DESC",
		Limit:   1,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "recorded ticks\t%d\n", ticks)

	if len(last) > 0 {
		t := last[0].(*tracing.TickEntry)
		fmt.Fprintf(w, "final state\t%d full, %d partial, %d carried, %d stacks done\n",
			t.Full, t.Partial, t.Carrying, t.Completed)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if robot < 0 {
		return nil
	}

	return printActions(ctx, out, reader, robot, limit)
}

func printActions(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
	robot, limit int,
) error {
	actions, total, err := reader.Query(ctx, tracing.ActionTable, datarecording.QueryParams{
		Where:   "Robot = ?",
		Args:    []any{robot},
		OrderBy: "Tick",
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "\nrobot %d, %d of %d actions\n", robot, len(actions), total)
	fmt.Fprintln(w, "tick\taction\tx\ty\tcarrying")

	for _, a := range actions {
		e := a.(*tracing.ActionEntry)
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%t\n", e.Tick, e.Action, e.X, e.Y, e.Carrying)
	}

	return w.Flush()
}
