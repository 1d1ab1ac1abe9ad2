// Package sim drives simulated instruments: it sends generated messages to one or more
// receiving systems and records, per target, what happened.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-astm/internal/ascii"
	"github.com/arloliu/go-astm/internal/codepage"
	"github.com/arloliu/go-astm/logger"
	"github.com/arloliu/go-astm/transport"
)

// ErrNoTargets is returned by NewRunner without targets.
var ErrNoTargets = errors.New("sim: no targets configured")

// Target is a named receiving system.
type Target struct {
	Name   string
	Device transport.Device
}

// MessageFunc produces the index-th message of a run: the bytes to send and their log
// form. It is called from one goroutine per target and must be safe for concurrent use.
type MessageFunc func(index int) (data []byte, logForm string, err error)

// Result is the outcome of a run against one target.
type Result struct {
	Target    string
	Sent      int
	Replies   int
	LastReply []byte
	Err       error
	Elapsed   time.Duration

	// BytesSent and BytesReceived are read from the device counters when the device
	// implements transport.MetricsReporter; they cover the lifetime of the device.
	BytesSent     uint64
	BytesReceived uint64
}

// Runner sends count messages to every target. Targets run in parallel, messages to
// one target are sent one after the other.
type Runner struct {
	targets  []Target
	count    int
	interval time.Duration
	keepOpen bool
	onSent   func(target string, index int)
	logger   logger.Logger

	results *xsync.MapOf[string, *Result]
}

// NewRunner creates a runner.
func NewRunner(targets []Target, opts ...RunnerOption) (*Runner, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	seen := make(map[string]struct{}, len(targets))
	for i, t := range targets {
		if t.Name == "" || t.Device == nil {
			return nil, fmt.Errorf("sim: target %d needs a name and a device", i)
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("sim: duplicate target name %q", t.Name)
		}
		seen[t.Name] = struct{}{}
	}

	r := &Runner{
		targets:  targets,
		count:    1,
		keepOpen: true,
		logger:   logger.GetLogger(),
		results:  xsync.NewMapOf[string, *Result](),
	}

	for _, opt := range opts {
		if err := opt.apply(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Total returns the number of messages a full run sends over all targets.
func (r *Runner) Total() int {
	return r.count * len(r.targets)
}

// Run sends the messages and blocks until every target is done. It returns the
// errors of all failed targets joined; transport failures match
// transport.ErrTransport. Cancelling ctx stops all targets after the message in flight.
func (r *Runner) Run(ctx context.Context, next MessageFunc) error {
	var wg sync.WaitGroup
	errs := make([]error, len(r.targets))

	for i, t := range r.targets {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res := r.runTarget(ctx, t, next)
			r.results.Store(t.Name, res)
			if res.Err != nil {
				errs[i] = fmt.Errorf("target %s: %w", t.Name, res.Err)
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Result returns the result of the last run against the named target.
func (r *Runner) Result(name string) (*Result, bool) {
	return r.results.Load(name)
}

// Results returns the results of the last run in target order.
func (r *Runner) Results() []*Result {
	out := make([]*Result, 0, len(r.targets))
	for _, t := range r.targets {
		if res, ok := r.results.Load(t.Name); ok {
			out = append(out, res)
		}
	}

	return out
}

func (r *Runner) runTarget(ctx context.Context, t Target, next MessageFunc) *Result {
	l := r.logger.With("target", t.Name, "device", t.Device.String())
	res := &Result{Target: t.Name}
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		if mr, ok := t.Device.(transport.MetricsReporter); ok {
			m := mr.Metrics()
			res.BytesSent = m.ByteSendCount.Load()
			res.BytesReceived = m.ByteRecvCount.Load()
		}
	}()

	opened := false
	defer func() {
		if opened {
			if err := t.Device.Close(); err != nil {
				l.Warn("sim: close failed", "error", err)
			}
		}
	}()

	for i := 0; i < r.count; i++ {
		if i > 0 && r.interval > 0 {
			if err := sleep(ctx, r.interval); err != nil {
				res.Err = err
				return res
			}
		}
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		data, logForm, err := next(i)
		if err != nil {
			res.Err = fmt.Errorf("sim: build message %d: %w", i, err)
			return res
		}

		if !opened {
			if err := t.Device.Open(ctx); err != nil {
				l.Error("sim: open failed", "error", err)
				res.Err = err

				return res
			}
			opened = true
		}

		l.Debug("sim: sending", "index", i, "bytes", len(data), "data", logForm)

		reply, err := t.Device.Send(ctx, data)
		if err != nil {
			l.Error("sim: send failed", "index", i, "error", err)
			res.Err = err

			return res
		}

		res.Sent++
		if reply != nil {
			res.Replies++
			res.LastReply = reply
			l.Debug("sim: reply", "index", i, "bytes", len(reply), "data", replyText(reply))
		}
		if r.onSent != nil {
			r.onSent(t.Name, i)
		}

		if !r.keepOpen {
			opened = false
			if err := t.Device.Close(); err != nil {
				l.Warn("sim: close failed", "error", err)
			}
		}
	}

	l.Info("sim: target done", "sent", res.Sent, "replies", res.Replies)

	return res
}

// replyText decodes a windows-1252 reply for logging, control characters as markers.
func replyText(reply []byte) string {
	return ascii.Printable([]byte(codepage.Decode(reply)))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
