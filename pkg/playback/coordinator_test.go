/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// ======================================================
// Fakes
// ======================================================

type fakeHandle struct {
	backend  *fakeBackend
	locator  string
	notify   Notify
	position int
	paused   bool
	started  bool
	closed   bool
	resumes  int
}

func (h *fakeHandle) Start() error {
	b := h.backend
	b.mu.Lock()
	h.started = true
	if n := b.soundingLocked(); n > b.maxSounding {
		b.maxSounding = n
	}
	start := b.autoStart
	b.mu.Unlock()

	if start {
		h.notify(Event{Kind: EventStarted})
	}
	return nil
}

func (h *fakeHandle) Pause() error {
	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	h.paused = true
	return nil
}

func (h *fakeHandle) Resume() error {
	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	h.paused = false
	h.resumes++
	return nil
}

func (h *fakeHandle) Close() error {
	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	if !h.closed {
		h.closed = true
		h.backend.alive--
	}
	return nil
}

// advance simulates playback progress.
func (h *fakeHandle) advance(n int) {
	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	if h.started && !h.paused {
		h.position += n
	}
}

func (h *fakeHandle) snapshot() fakeHandle {
	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	return *h
}

type fakeBackend struct {
	mu        sync.Mutex
	opened    []*fakeHandle
	alive     int
	maxAlive  int
	autoStart bool
	fail      map[string]error
	// Open blocks on gates[locator] until it is closed or ctx ends;
	// stubborn backends ignore ctx
	gates       map[string]chan struct{}
	stubborn    bool
	cancelled   []string
	maxSounding int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{autoStart: true, fail: map[string]error{}, gates: map[string]chan struct{}{}}
}

func (b *fakeBackend) Open(ctx context.Context, locator string, notify Notify) (Handle, error) {
	b.mu.Lock()
	gate := b.gates[locator]
	b.mu.Unlock()
	if gate != nil && b.stubborn {
		<-gate
	} else if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			b.mu.Lock()
			b.cancelled = append(b.cancelled, locator)
			b.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail[locator]; err != nil {
		return nil, err
	}
	h := &fakeHandle{backend: b, locator: locator, notify: notify}
	b.opened = append(b.opened, h)
	b.alive++
	if b.alive > b.maxAlive {
		b.maxAlive = b.alive
	}
	return h, nil
}

// sounding counts handles that are started and not closed.
func (b *fakeBackend) sounding() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.soundingLocked()
}

func (b *fakeBackend) soundingLocked() int {
	n := 0
	for _, h := range b.opened {
		if h.started && !h.closed {
			n++
		}
	}
	return n
}

var _ Backend = (*fakeBackend)(nil)

func (b *fakeBackend) handles() []*fakeHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakeHandle(nil), b.opened...)
}

func (b *fakeBackend) last() *fakeHandle {
	hs := b.handles()
	if len(hs) == 0 {
		return nil
	}
	return hs[len(hs)-1]
}

func (b *fakeBackend) counts() (alive, maxAlive int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.alive, b.maxAlive
}

func startCoordinator(t *testing.T, b Backend) *Coordinator {
	t.Helper()
	c := New(b, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-c.Done()
	})
	return c
}

func waitStatus(t *testing.T, c *Coordinator, want Status) {
	t.Helper()
	require.Eventually(t, func() bool { return c.Status() == want }, waitFor, tick,
		"want %+v, have %+v", want, c.Status())
}

// ======================================================
// Scenarios
// ======================================================

func TestCoordinatorScenario(t *testing.T) {
	b := newFakeBackend()
	c := startCoordinator(t, b)

	// 1. Idle -> Playing(A)
	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	a := b.last()
	a.advance(100)

	// 2. Playing(A) -> Paused(A)
	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A"})
	require.True(t, a.snapshot().paused)

	// 3. Paused(A) -> Playing(A), resumed not restarted
	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	snap := a.snapshot()
	require.Equal(t, 1, snap.resumes)
	require.Equal(t, 100, snap.position)
	require.Len(t, b.handles(), 1)

	// 4. Playing(A) -> Playing(B), A released
	c.RequestPlayPause("clip-B")
	waitStatus(t, c, Status{Locator: "clip-B", Playing: true})
	require.True(t, a.snapshot().closed)
	bh := b.last()
	require.Equal(t, "clip-B", bh.locator)
	require.Zero(t, bh.snapshot().position)

	// 5. B ends naturally -> Idle
	bh.notify(Event{Kind: EventEnded})
	waitStatus(t, c, Status{})
	require.True(t, bh.snapshot().closed)

	alive, maxAlive := b.counts()
	require.Zero(t, alive)
	require.Equal(t, 1, maxAlive)
}

func TestCoordinatorMuteKeepsIdentity(t *testing.T) {
	b := newFakeBackend()
	c := startCoordinator(t, b)

	c.RequestPlayPause("clip-B")
	waitStatus(t, c, Status{Locator: "clip-B", Playing: true})
	h := b.last()
	h.advance(42)

	c.DisableAndStop()
	waitStatus(t, c, Status{Locator: "clip-B"})
	require.Equal(t, PhasePaused, c.Status().Phase())

	c.RequestPlayPause("clip-B")
	waitStatus(t, c, Status{Locator: "clip-B", Playing: true})
	require.Len(t, b.handles(), 1, "resume must not reopen the clip")
	require.Equal(t, 42, h.snapshot().position)
}

func TestCoordinatorMutualExclusion(t *testing.T) {
	b := newFakeBackend()
	c := startCoordinator(t, b)

	seq := []string{"a", "b", "a", "c", "c", "d", "a", "b", "b", "b", "e"}
	for _, l := range seq {
		c.RequestPlayPause(l)
	}
	waitStatus(t, c, Status{Locator: "e", Playing: true})

	// superseded fetches may still finish; they are closed unheard
	require.Eventually(t, func() bool {
		alive, _ := b.counts()
		return alive == 1
	}, waitFor, tick)
	b.mu.Lock()
	maxSounding := b.maxSounding
	b.mu.Unlock()
	require.Equal(t, 1, maxSounding)

	var live []string
	for _, h := range b.handles() {
		if !h.snapshot().closed {
			live = append(live, h.locator)
		}
	}
	require.Equal(t, []string{"e"}, live)
}

func TestCoordinatorReplayAfterEndStartsFresh(t *testing.T) {
	b := newFakeBackend()
	c := startCoordinator(t, b)

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	first := b.last()
	first.advance(500)
	first.notify(Event{Kind: EventEnded})
	waitStatus(t, c, Status{})

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	second := b.last()
	require.NotSame(t, first, second)
	require.Zero(t, second.snapshot().position)
}

func TestCoordinatorFailureClearsIdentity(t *testing.T) {
	b := newFakeBackend()
	c := startCoordinator(t, b)

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	b.last().notify(Event{Kind: EventFailed, Err: errors.New("device lost")})
	waitStatus(t, c, Status{})

	alive, _ := b.counts()
	require.Zero(t, alive)
}

func TestCoordinatorOpenFailureGoesIdle(t *testing.T) {
	b := newFakeBackend()
	b.fail["broken"] = errors.New("unsupported clip")
	c := startCoordinator(t, b)

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})

	c.RequestPlayPause("broken")
	waitStatus(t, c, Status{})
	alive, _ := b.counts()
	require.Zero(t, alive, "previous clip must be released even when the next one fails")

	// the caller may retry on its own
	b.mu.Lock()
	delete(b.fail, "broken")
	b.mu.Unlock()
	c.RequestPlayPause("broken")
	waitStatus(t, c, Status{Locator: "broken", Playing: true})
}

func TestCoordinatorIgnoresEventsFromReleasedHandles(t *testing.T) {
	b := newFakeBackend()
	c := startCoordinator(t, b)

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	old := b.last()

	c.RequestPlayPause("clip-B")
	waitStatus(t, c, Status{Locator: "clip-B", Playing: true})

	old.notify(Event{Kind: EventEnded})
	old.notify(Event{Kind: EventFailed})

	c.DisableAndStop()
	waitStatus(t, c, Status{Locator: "clip-B"})
	require.Never(t, func() bool { return c.Status() != Status{Locator: "clip-B"} }, 100*time.Millisecond, tick)
}

func TestCoordinatorPlayingOnlyAfterStart(t *testing.T) {
	b := newFakeBackend()
	b.autoStart = false
	c := startCoordinator(t, b)

	c.RequestPlayPause("clip-A")
	require.Eventually(t, func() bool {
		h := b.last()
		return h != nil && h.snapshot().started
	}, waitFor, tick)
	require.Equal(t, Status{Locator: "clip-A"}, c.Status())
	require.False(t, c.IsActive("clip-A"))

	b.last().notify(Event{Kind: EventStarted})
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	require.True(t, c.IsActive("clip-A"))
}

func TestCoordinatorRepeatRequestWhileLoading(t *testing.T) {
	b := newFakeBackend()
	b.autoStart = false
	c := startCoordinator(t, b)

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A"})
	c.RequestPlayPause("clip-A")

	require.Eventually(t, func() bool { return len(b.handles()) == 1 }, waitFor, tick)
	h := b.last()
	require.Eventually(t, func() bool { return h.snapshot().started }, waitFor, tick)
	h.notify(Event{Kind: EventStarted})
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	require.False(t, h.snapshot().paused)
	require.Len(t, b.handles(), 1)
}

func TestCoordinatorSlowOpenDoesNotBlock(t *testing.T) {
	b := newFakeBackend()
	b.gates["slow"] = make(chan struct{})
	c := startCoordinator(t, b)

	c.RequestPlayPause("slow")
	// observers see the pending track before the fetch finishes
	waitStatus(t, c, Status{Locator: "slow"})

	c.RequestPlayPause("fast")
	waitStatus(t, c, Status{Locator: "fast", Playing: true})

	c.DisableAndStop()
	waitStatus(t, c, Status{Locator: "fast"})

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.cancelled) == 1 && b.cancelled[0] == "slow"
	}, waitFor, tick, "superseded fetch should be cancelled")
	require.Len(t, b.handles(), 1)
}

func TestCoordinatorLateOpenIsDiscarded(t *testing.T) {
	b := newFakeBackend()
	b.stubborn = true
	gate := make(chan struct{})
	b.gates["slow"] = gate
	c := startCoordinator(t, b)

	c.RequestPlayPause("slow")
	waitStatus(t, c, Status{Locator: "slow"})
	c.RequestPlayPause("fast")
	waitStatus(t, c, Status{Locator: "fast", Playing: true})

	// the superseded fetch completes after the switch
	close(gate)
	require.Eventually(t, func() bool { return len(b.handles()) == 2 }, waitFor, tick)
	var stale *fakeHandle
	for _, h := range b.handles() {
		if h.locator == "slow" {
			stale = h
		}
	}
	require.NotNil(t, stale)
	require.Eventually(t, func() bool { return stale.snapshot().closed }, waitFor, tick)
	require.False(t, stale.snapshot().started)
	require.Equal(t, 1, b.sounding())
	require.Equal(t, Status{Locator: "fast", Playing: true}, c.Status())
}

func TestCoordinatorMuteWhileLoading(t *testing.T) {
	b := newFakeBackend()
	gate := make(chan struct{})
	b.gates["clip-A"] = gate
	c := startCoordinator(t, b)

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A"})
	c.DisableAndStop()
	require.Eventually(t, func() bool { return !c.snapshot().Pending }, waitFor, tick)
	close(gate)

	require.Eventually(t, func() bool {
		h := b.last()
		return h != nil && h.snapshot().started
	}, waitFor, tick)
	h := b.last()
	require.True(t, h.snapshot().paused, "muted clip must be attached paused")
	require.Equal(t, Status{Locator: "clip-A"}, c.Status())

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})
	require.Equal(t, 1, h.snapshot().resumes)
}

func TestCoordinatorSubscribe(t *testing.T) {
	b := newFakeBackend()
	c := startCoordinator(t, b)

	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	c.RequestPlayPause("clip-A")

	deadline := time.After(waitFor)
	for {
		select {
		case s := <-ch:
			if s == (Status{Locator: "clip-A", Playing: true}) {
				return
			}
		case <-deadline:
			t.Fatalf("no playing status delivered, last %+v", c.Status())
		}
	}
}

func TestCoordinatorReleasesOnShutdown(t *testing.T) {
	b := newFakeBackend()
	c := New(b, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()

	c.RequestPlayPause("clip-A")
	waitStatus(t, c, Status{Locator: "clip-A", Playing: true})

	cancel()
	<-c.Done()
	alive, _ := b.counts()
	require.Zero(t, alive)

	// requests after shutdown do not block
	c.RequestPlayPause("clip-B")
}
