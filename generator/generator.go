package generator

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// DateLayout is the HL7/ASTM timestamp layout, YYYYMMDDHHMMSS.
const DateLayout = "20060102150405"

// Generator builds canned messages. It is safe for concurrent use.
type Generator struct {
	now func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a Generator. Without options it uses the wall clock and a randomly
// seeded source.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		now: time.Now,
		rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		if err := opt.apply(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// --- Option ---

// Option is a functional option for New.
type Option interface {
	apply(*Generator) error
}

type optFunc func(*Generator) error

func (f optFunc) apply(g *Generator) error { return f(g) }

// WithClock sets the clock used for message timestamps.
func WithClock(now func() time.Time) Option {
	return optFunc(func(g *Generator) error {
		if now == nil {
			return errors.New("generator: clock must not be nil")
		}
		g.now = now

		return nil
	})
}

// WithSeed makes random values reproducible.
func WithSeed(seed uint64) Option {
	return optFunc(func(g *Generator) error {
		g.rnd = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
		return nil
	})
}

// --- dates ---

// FormatDate formats t as YYYYMMDDHHMMSS.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CurrentDate returns the generator's current time as YYYYMMDDHHMMSS.
func (g *Generator) CurrentDate() string {
	return FormatDate(g.now())
}

// RandomDateInPastDays returns a timestamp between one second and days*24h before
// now, as YYYYMMDDHHMMSS. A non-positive days returns the current date.
func (g *Generator) RandomDateInPastDays(days int) string {
	if days <= 0 {
		return g.CurrentDate()
	}

	maxSeconds := int64(days) * 24 * 60 * 60
	seconds := g.int64N(maxSeconds) + 1

	return FormatDate(g.now().Add(-time.Duration(seconds) * time.Second))
}

// uniform returns a value in [lo, hi).
func (g *Generator) uniform(lo, hi float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return lo + (hi-lo)*g.rnd.Float64()
}

func (g *Generator) int64N(n int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rnd.Int64N(n)
}
