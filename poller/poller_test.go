package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const interval = 3 * time.Second

type result struct {
	value string
	err   error
}

// scriptedFetcher returns results in order, repeating the last one. When gate is
// set every fetch waits for a value on it before returning.
type scriptedFetcher struct {
	mu       sync.Mutex
	calls    int
	results  []result
	gate     chan struct{}
	deadline time.Duration
}

func (f *scriptedFetcher) fetch(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	i := f.calls - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	r := f.results[i]
	if d, ok := ctx.Deadline(); ok {
		f.deadline = time.Until(d)
	}
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return r.value, r.err
}

func (f *scriptedFetcher) getCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestLoop(f *scriptedFetcher, clock Clock) *Loop[string] {
	return New(Options[string]{
		Name:     "test",
		Interval: interval,
		Fetch:    f.fetch,
		Clock:    clock,
		Logger:   zerolog.Nop(),
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// waitIdle waits until the loop has applied the result of n fetches.
func waitIdle(t *testing.T, l *Loop[string], f *scriptedFetcher, n int) {
	t.Helper()
	waitFor(t, "fetch to complete", func() bool {
		return f.getCallCount() == n && !l.State().InFlight
	})
}

func TestStartFetchesImmediately(t *testing.T) {
	f := &scriptedFetcher{results: []result{{value: "a"}}}
	clock := newFakeClock()
	l := newTestLoop(f, clock)
	defer l.Stop()

	l.Start()
	waitIdle(t, l, f, 1)

	v, ok := l.Current()
	if !ok || v != "a" {
		t.Errorf("expected current value a, got %q %v", v, ok)
	}
	st := l.State()
	if !st.Running || st.LastSuccessAt.IsZero() || st.LastError != "" {
		t.Errorf("unexpected state: %+v", st)
	}
}

func TestStartTwiceKeepsOneTimer(t *testing.T) {
	f := &scriptedFetcher{results: []result{{value: "a"}}}
	clock := newFakeClock()
	l := newTestLoop(f, clock)
	defer l.Stop()

	l.Start()
	l.Start()
	waitIdle(t, l, f, 1)

	if n := clock.activeTickers(); n != 1 {
		t.Fatalf("expected 1 active ticker, got %d", n)
	}

	clock.Advance(interval)
	waitIdle(t, l, f, 2)
	time.Sleep(20 * time.Millisecond)
	if n := f.getCallCount(); n != 2 {
		t.Errorf("expected exactly 2 fetches, got %d", n)
	}
}

func TestTickSkippedWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	f := &scriptedFetcher{results: []result{{value: "slow"}, {value: "next"}}, gate: gate}
	clock := newFakeClock()
	l := newTestLoop(f, clock)
	defer l.Stop()

	l.Start()
	waitFor(t, "first fetch", func() bool { return f.getCallCount() == 1 })

	clock.Advance(interval)
	clock.Advance(interval)
	time.Sleep(20 * time.Millisecond)
	if n := f.getCallCount(); n != 1 {
		t.Fatalf("expected ticks to be skipped while in flight, got %d fetches", n)
	}

	gate <- struct{}{}
	waitIdle(t, l, f, 1)
	if v, _ := l.Current(); v != "slow" {
		t.Errorf("expected slow result, got %q", v)
	}

	clock.Advance(interval)
	waitFor(t, "second fetch", func() bool { return f.getCallCount() == 2 })
	gate <- struct{}{}
	waitIdle(t, l, f, 2)
	if v, _ := l.Current(); v != "next" {
		t.Errorf("expected next result, got %q", v)
	}
}

func TestFailureKeepsPreviousValue(t *testing.T) {
	f := &scriptedFetcher{results: []result{
		{value: "first"},
		{err: errors.New("connection refused")},
		{value: "second"},
	}}
	clock := newFakeClock()
	l := newTestLoop(f, clock)
	defer l.Stop()

	l.Start()
	waitIdle(t, l, f, 1)
	firstSuccess := l.State().LastSuccessAt

	clock.Advance(interval)
	waitIdle(t, l, f, 2)

	v, ok := l.Current()
	if !ok || v != "first" {
		t.Errorf("expected previous value to be kept, got %q %v", v, ok)
	}
	st := l.State()
	if st.LastError != "connection refused" {
		t.Errorf("expected last error, got %q", st.LastError)
	}
	if !st.LastSuccessAt.Equal(firstSuccess) {
		t.Errorf("last success must not move on failure")
	}
	if !st.Running {
		t.Error("loop must keep running after a failure")
	}

	clock.Advance(interval)
	waitIdle(t, l, f, 3)

	if v, _ := l.Current(); v != "second" {
		t.Errorf("expected replaced value, got %q", v)
	}
	st = l.State()
	if st.LastError != "" {
		t.Errorf("expected error to be cleared, got %q", st.LastError)
	}
	if !st.LastSuccessAt.After(firstSuccess) {
		t.Errorf("expected last success to advance")
	}
}

func TestStopDiscardsInFlightResult(t *testing.T) {
	gate := make(chan struct{})
	f := &scriptedFetcher{results: []result{{value: "late"}}, gate: gate}
	clock := newFakeClock()
	l := newTestLoop(f, clock)

	l.Start()
	waitFor(t, "first fetch", func() bool { return f.getCallCount() == 1 })
	l.Stop()

	gate <- struct{}{}
	time.Sleep(20 * time.Millisecond)

	if _, ok := l.Current(); ok {
		t.Error("result of a stopped loop must be discarded")
	}
	if st := l.State(); st.Running {
		t.Errorf("expected stopped state, got %+v", st)
	}
	if n := clock.activeTickers(); n != 0 {
		t.Errorf("expected ticker to be stopped, got %d active", n)
	}

	clock.Advance(interval)
	time.Sleep(20 * time.Millisecond)
	if n := f.getCallCount(); n != 1 {
		t.Errorf("no fetch expected after stop, got %d", n)
	}
}

func TestRestartResetsPollState(t *testing.T) {
	f := &scriptedFetcher{results: []result{{err: errors.New("timeout")}, {value: "ok"}}}
	clock := newFakeClock()
	l := newTestLoop(f, clock)
	defer l.Stop()

	l.Start()
	waitIdle(t, l, f, 1)
	if l.State().LastError == "" {
		t.Fatal("expected an error after the first fetch")
	}

	l.Stop()
	l.Start()
	waitIdle(t, l, f, 2)

	st := l.State()
	if st.LastError != "" || st.LastSuccessAt.IsZero() {
		t.Errorf("expected fresh state after restart, got %+v", st)
	}
}

func TestStopWithoutStart(t *testing.T) {
	l := newTestLoop(&scriptedFetcher{results: []result{{value: "a"}}}, newFakeClock())
	l.Stop()
	if st := l.State(); st.Running {
		t.Errorf("unexpected state: %+v", st)
	}
}

func TestFetchTimeoutIsBoundedByInterval(t *testing.T) {
	f := &scriptedFetcher{results: []result{{value: "a"}}}
	l := New(Options[string]{
		Name:     "bounded",
		Interval: interval,
		Timeout:  time.Minute,
		Fetch:    f.fetch,
		Clock:    newFakeClock(),
		Logger:   zerolog.Nop(),
	})
	defer l.Stop()

	l.Start()
	waitIdle(t, l, f, 1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deadline <= 0 || f.deadline > interval {
		t.Errorf("expected fetch deadline within %v, got %v", interval, f.deadline)
	}
}

func TestOnSuccessHook(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	f := &scriptedFetcher{results: []result{{value: "a"}, {err: errors.New("boom")}}}
	clock := newFakeClock()
	l := New(Options[string]{
		Name:     "hook",
		Interval: interval,
		Fetch:    f.fetch,
		Clock:    clock,
		Logger:   zerolog.Nop(),
		OnSuccess: func(v string) {
			mu.Lock()
			seen = append(seen, v)
			mu.Unlock()
		},
	})
	defer l.Stop()

	l.Start()
	waitIdle(t, l, f, 1)
	clock.Advance(interval)
	waitIdle(t, l, f, 2)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "a" {
		t.Errorf("hook must only run on success, got %v", seen)
	}
}
