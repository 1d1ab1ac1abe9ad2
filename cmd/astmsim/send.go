package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/arloliu/go-astm/generator"
	"github.com/arloliu/go-astm/internal/config"
	"github.com/arloliu/go-astm/logger"
	"github.com/arloliu/go-astm/sim"
	"github.com/arloliu/go-astm/transport"
)

type sendFlags struct {
	messageFlags

	host         string
	port         int
	serialPort   string
	baud         int
	count        int
	interval     time.Duration
	reconnect    bool
	replyTimeout time.Duration
	quiet        bool
}

func newSendCmd() *cobra.Command {
	f := &sendFlags{}

	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send generated messages to one or more targets",
		Long: `Send generated messages over TCP or a serial line.

Targets come from the config file, or from --host/--port or --serial on the
command line; command line targets replace the ones in the file. With --count N,
N fresh messages are sent to every target, targets in parallel.`,
		Example: `  astmsim send --host 127.0.0.1 --port 4000
  astmsim send --serial /dev/ttyUSB0 --baud 9600 --frame-size 240
  astmsim send --config sim.yaml --count 100 --interval 500ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, f)
		},
	}

	fs := sendCmd.Flags()
	f.register(fs)
	fs.StringVarP(&f.host, "host", "H", "", "TCP target host")
	fs.IntVarP(&f.port, "port", "p", 0, "TCP target port")
	fs.StringVar(&f.serialPort, "serial", "", "Serial target port, e.g. /dev/ttyUSB0 or COM1")
	fs.IntVarP(&f.baud, "baud", "b", transport.DefaultBaudRate, "Serial baud rate")
	fs.IntVarP(&f.count, "count", "n", 1, "Messages per target")
	fs.DurationVar(&f.interval, "interval", 0, "Pause between two messages to the same target")
	fs.BoolVar(&f.reconnect, "reconnect", false, "Open a new connection for every message")
	fs.DurationVar(&f.replyTimeout, "reply-timeout", transport.DefaultReplyTimeout, "How long to wait for a reply (0 disables)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Do not show a progress bar")

	return sendCmd
}

func (f *sendFlags) load(cmd *cobra.Command) (*config.File, error) {
	cfg, err := f.messageFlags.load(cmd)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	overrideInt(fs, "count", &cfg.Send.Count, f.count)
	overrideDuration(fs, "interval", &cfg.Send.Interval, f.interval)
	overrideDuration(fs, "reply-timeout", &cfg.Transport.ReplyTimeout, f.replyTimeout)
	if fs.Changed("reconnect") {
		cfg.Send.Reconnect = f.reconnect
	}

	if fs.Changed("baud") && f.serialPort == "" {
		return nil, errors.New("--baud requires --serial; set baud per target in the config file")
	}

	var targets []config.Target
	if f.host != "" || fs.Changed("port") {
		targets = append(targets, config.Target{Name: "tcp", Kind: config.KindTCP, Host: f.host, Port: f.port})
	}
	if f.serialPort != "" {
		targets = append(targets, config.Target{Name: "serial", Kind: config.KindSerial, Device: f.serialPort, Baud: f.baud})
	}
	if len(targets) > 0 {
		cfg.Targets = targets
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, errors.New("no targets: use --host/--port, --serial or a config file")
	}

	return cfg, nil
}

func runSend(cmd *cobra.Command, f *sendFlags) error {
	cfg, err := f.load(cmd)
	if err != nil {
		return err
	}

	targets, err := cfg.BuildTargets()
	if err != nil {
		return err
	}

	gen, err := generator.New()
	if err != nil {
		return err
	}

	profile := cfg.Profile()
	params := cfg.Params()
	enc := cfg.EncodeConfig()

	next := func(int) ([]byte, string, error) {
		msg, err := gen.Build(profile, params, enc)
		if err != nil {
			return nil, "", err
		}

		return msg.Render(), msg.Log(), nil
	}

	opts := cfg.RunnerOptions()

	var bar *progressbar.ProgressBar
	total := cfg.Send.Count * len(targets)
	if total > 1 && !f.quiet {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Sending"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts = append(opts, sim.WithOnSent(func(string, int) { _ = bar.Add(1) }))
	}

	runner, err := sim.NewRunner(targets, opts...)
	if err != nil {
		return err
	}

	logger.Info("sending", "profile", profile, "targets", len(targets), "count", cfg.Send.Count)

	runErr := runner.Run(cmd.Context(), next)
	if bar != nil {
		_ = bar.Finish()
	}

	out := cmd.OutOrStdout()
	for _, res := range runner.Results() {
		status := "ok"
		if res.Err != nil {
			status = res.Err.Error()
		}
		fmt.Fprintf(out, "%-12s sent=%d replies=%d tx_bytes=%d rx_bytes=%d elapsed=%s %s\n",
			res.Target, res.Sent, res.Replies, res.BytesSent, res.BytesReceived,
			res.Elapsed.Round(time.Millisecond), status)
	}

	if errors.Is(runErr, transport.ErrTransport) {
		logger.Error("transport failure", "error", runErr)
	}

	return runErr
}
