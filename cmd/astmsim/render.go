package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-astm/generator"
)

func newRenderCmd() *cobra.Command {
	f := &messageFlags{}
	var raw bool

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Print a generated message without sending it",
		Long: `Print a generated message. By default control characters are shown as
hex markers, e.g. <2> for STX and <D> for CR; --raw writes the wire bytes.`,
		Example: `  astmsim render --frame-size 40
  astmsim render --profile hl7-merge --patient 1001 --other-patient 1002`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}

			gen, err := generator.New()
			if err != nil {
				return err
			}

			msg, err := gen.Build(cfg.Profile(), cfg.Params(), cfg.EncodeConfig())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				_, err = out.Write(msg.Render())
				return err
			}
			_, err = fmt.Fprintln(out, msg.Log())

			return err
		},
	}

	f.register(renderCmd.Flags())
	renderCmd.Flags().BoolVar(&raw, "raw", false, "Write raw bytes instead of the log form")

	return renderCmd
}
