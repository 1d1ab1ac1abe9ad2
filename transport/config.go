package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-astm/logger"
)

// Default values.
const (
	DefaultConnectTimeout  = 3 * time.Second
	DefaultSendTimeout     = 3 * time.Second
	DefaultReplyTimeout    = 2 * time.Second
	DefaultReplyBufferSize = 1024
	DefaultBaudRate        = 9600
)

// Limits.
const (
	MaxReplyBufferSize = 64 * 1024
	MaxReplyTimeout    = 120 * time.Second
)

// Config holds the settings shared by all devices.
type Config struct {
	connectTimeout  time.Duration
	sendTimeout     time.Duration
	replyTimeout    time.Duration
	replyBufferSize int
	baudRate        int

	logger logger.Logger
}

// NewConfig creates a device configuration. opts are functional options applied in
// order; see With* functions.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		connectTimeout:  DefaultConnectTimeout,
		sendTimeout:     DefaultSendTimeout,
		replyTimeout:    DefaultReplyTimeout,
		replyBufferSize: DefaultReplyBufferSize,
		baudRate:        DefaultBaudRate,
		logger:          logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// --- Getters ---

// ConnectTimeout returns the TCP dial timeout.
func (cfg *Config) ConnectTimeout() time.Duration { return cfg.connectTimeout }

// SendTimeout returns the write timeout of one transmission.
func (cfg *Config) SendTimeout() time.Duration { return cfg.sendTimeout }

// ReplyTimeout returns how long Send waits for a reply. Zero means no reply is read.
func (cfg *Config) ReplyTimeout() time.Duration { return cfg.replyTimeout }

// ReplyBufferSize returns the maximum number of reply bytes read per Send.
func (cfg *Config) ReplyBufferSize() int { return cfg.replyBufferSize }

// BaudRate returns the serial line speed.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithConnectTimeout sets the TCP dial timeout.
func WithConnectTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("transport: connect timeout must be positive")
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithSendTimeout sets the write timeout of one transmission.
func WithSendTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("transport: send timeout must be positive")
		}
		cfg.sendTimeout = d

		return nil
	})
}

// WithReplyTimeout sets how long Send waits for the peer to answer.
// Zero disables reading replies.
func WithReplyTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < 0 || d > MaxReplyTimeout {
			return fmt.Errorf("transport: reply timeout %v out of range [0, %v]", d, MaxReplyTimeout)
		}
		cfg.replyTimeout = d

		return nil
	})
}

// WithReplyBufferSize sets the maximum number of reply bytes read per Send.
func WithReplyBufferSize(size int) Option {
	return optFunc(func(cfg *Config) error {
		if size < 1 || size > MaxReplyBufferSize {
			return fmt.Errorf("transport: reply buffer size %d out of range [1, %d]", size, MaxReplyBufferSize)
		}
		cfg.replyBufferSize = size

		return nil
	})
}

// WithBaudRate sets the serial line speed.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("transport: invalid baud rate %d", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithLogger sets the logger for the device.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("transport: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
