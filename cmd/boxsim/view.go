package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/traceview"
)

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Serve a recorded run over HTTP.",
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		addr, _ := cmd.Flags().GetString("http")

		return traceview.NewServer(reader).ListenAndServe(ctx, addr)
	},
}

func init() {
	viewCmd.Flags().String("http", "localhost:3001", "address to listen on")

	rootCmd.AddCommand(viewCmd)
}
