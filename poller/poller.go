// Package poller runs a periodic fetch loop whose lifetime is controlled by
// explicit Start and Stop calls.
//
// A loop fetches immediately on Start and then once per interval. A tick that
// fires while the previous fetch is still in flight is skipped, so at most one
// request per loop is outstanding. A successful fetch replaces the current value
// atomically; a failed one keeps the previous value and records the error. Stop
// cancels future ticks but lets an in-flight fetch finish; its result is discarded.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

type Options[T any] struct {
	Name     string
	Interval time.Duration
	// Timeout caps a single fetch. The effective timeout is the smaller of
	// Timeout and Interval; zero means Interval.
	Timeout time.Duration
	Fetch   FetchFunc[T]
	// OnSuccess runs after the current value was replaced, before any later
	// result of the same loop is applied.
	OnSuccess func(T)
	Clock     Clock
	Logger    zerolog.Logger
}

// PollState describes the running generation of a loop. It is reset on every Start.
type PollState struct {
	Running       bool
	InFlight      bool
	LastSuccessAt time.Time
	LastError     string
}

type Loop[T any] struct {
	name      string
	interval  time.Duration
	timeout   time.Duration
	fetch     FetchFunc[T]
	onSuccess func(T)
	clock     Clock
	log       zerolog.Logger

	mu         sync.Mutex
	active     *generation
	generation uint64
	current    T
	hasCurrent bool
}

// generation holds the state of one Start..Stop cycle.
type generation struct {
	id       uint64
	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}

	lastSuccessAt time.Time
	lastError     string
}

func New[T any](opts Options[T]) *Loop[T] {
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}
	timeout := opts.Interval
	if opts.Timeout > 0 && opts.Timeout < timeout {
		timeout = opts.Timeout
	}
	return &Loop[T]{
		name:      opts.Name,
		interval:  opts.Interval,
		timeout:   timeout,
		fetch:     opts.Fetch,
		onSuccess: opts.OnSuccess,
		clock:     clock,
		log:       opts.Logger.With().Str("loop", opts.Name).Logger(),
	}
}

func (l *Loop[T]) Name() string {
	return l.name
}

// Start is a no-op while the loop is already running.
func (l *Loop[T]) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active != nil {
		l.log.Debug().Msg("loop already running")
		return
	}

	l.generation++
	ctx, cancel := context.WithCancel(context.Background())
	g := &generation{
		id:     l.generation,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	l.active = g

	ticker := l.clock.NewTicker(l.interval)
	l.log.Debug().Uint64("generation", g.id).Dur("interval", l.interval).Msg("starting loop")

	go l.run(ctx, g, ticker)
}

// Stop cancels future ticks. It does not wait for an in-flight fetch.
func (l *Loop[T]) Stop() {
	l.mu.Lock()
	g := l.active
	l.active = nil
	l.mu.Unlock()

	if g == nil {
		return
	}
	g.cancel()
	<-g.done
	l.log.Debug().Uint64("generation", g.id).Msg("stopped loop")
}

func (l *Loop[T]) run(ctx context.Context, g *generation, ticker Ticker) {
	defer close(g.done)
	defer ticker.Stop()

	l.tick(g)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			l.tick(g)
		}
	}
}

func (l *Loop[T]) tick(g *generation) {
	if !g.inFlight.CompareAndSwap(false, true) {
		l.log.Debug().Msg("previous fetch still in flight, skipping tick")
		return
	}

	go func() {
		defer g.inFlight.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		value, err := l.fetch(ctx)
		l.complete(g, value, err)
	}()
}

func (l *Loop[T]) complete(g *generation, value T, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active != g {
		l.log.Debug().Uint64("generation", g.id).Msg("discarding result of stopped loop")
		return
	}

	if err != nil {
		g.lastError = err.Error()
		l.log.Warn().Err(err).Msg("fetch failed, keeping previous data")
		return
	}

	l.current = value
	l.hasCurrent = true
	g.lastSuccessAt = l.clock.Now()
	g.lastError = ""
	if l.onSuccess != nil {
		l.onSuccess(value)
	}
}

// Current returns the last successfully fetched value. ok is false until the
// first success.
func (l *Loop[T]) Current() (value T, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, l.hasCurrent
}

func (l *Loop[T]) State() PollState {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.active
	if g == nil {
		return PollState{}
	}
	return PollState{
		Running:       true,
		InFlight:      g.inFlight.Load(),
		LastSuccessAt: g.lastSuccessAt,
		LastError:     g.lastError,
	}
}
