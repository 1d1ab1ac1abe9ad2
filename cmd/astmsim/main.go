package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/arloliu/go-astm/generator"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "astmsim",
		Short: "Send simulated ASTM and HL7 instrument messages",
		Long: `astmsim generates laboratory instrument traffic for testing interfaces.

ASTM E1394 result uploads are framed per ASTM E1381 (checksums, frame numbers,
optional splitting into intermediate frames). HL7 ADT messages are wrapped in the
MLLP envelope. Messages go to one or more TCP or serial targets, or are printed.`,
		SilenceUsage: true,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "astmsim %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "List message profiles",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range generator.Profiles() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available serial ports",
		RunE:  runList,
	}

	rootCmd.AddCommand(newSendCmd(), newRenderCmd(), versionCmd, profilesCmd, listCmd)

	return rootCmd
}

func runList(cmd *cobra.Command, args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("list serial ports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return nil
	}

	fmt.Fprintln(out, "Available serial ports:")
	for _, p := range ports {
		fmt.Fprintf(out, "  %s\n", p)
	}

	return nil
}
