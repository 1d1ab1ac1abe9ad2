package sim

import (
	"errors"
	"time"

	"github.com/arloliu/go-astm/logger"
)

// RunnerOption is a functional option for NewRunner.
type RunnerOption interface {
	apply(*Runner) error
}

type runnerOptFunc func(*Runner) error

func (f runnerOptFunc) apply(r *Runner) error { return f(r) }

// WithCount sets the number of messages sent to each target. Default 1.
func WithCount(n int) RunnerOption {
	return runnerOptFunc(func(r *Runner) error {
		if n < 1 {
			return errors.New("sim: count must be >= 1")
		}
		r.count = n

		return nil
	})
}

// WithInterval sets the pause between two messages to the same target.
func WithInterval(d time.Duration) RunnerOption {
	return runnerOptFunc(func(r *Runner) error {
		if d < 0 {
			return errors.New("sim: interval must not be negative")
		}
		r.interval = d

		return nil
	})
}

// WithReconnect makes the runner open a new connection for every message, the way
// some instruments dial in per result upload. By default one connection per target is
// kept for the whole run.
func WithReconnect(enabled bool) RunnerOption {
	return runnerOptFunc(func(r *Runner) error {
		r.keepOpen = !enabled
		return nil
	})
}

// WithOnSent registers a callback invoked after every successful send. It is called
// from the target goroutines.
func WithOnSent(fn func(target string, index int)) RunnerOption {
	return runnerOptFunc(func(r *Runner) error {
		r.onSent = fn
		return nil
	})
}

// WithLogger sets the runner logger.
func WithLogger(l logger.Logger) RunnerOption {
	return runnerOptFunc(func(r *Runner) error {
		if l == nil {
			return errors.New("sim: logger must not be nil")
		}
		r.logger = l

		return nil
	})
}
