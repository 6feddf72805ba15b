/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package playback

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

const (
	requestQueueSize = 64
	eventQueueSize   = 64
)

type event struct {
	gen uint64
	ev  Event
}

// opened is the outcome of one Backend.Open running off the loop.
type opened struct {
	gen    uint64
	handle Handle
	err    error
}

// Coordinator is the single owner of the live playback handle. Build one per
// application with New, start Run on its own goroutine and hand the pointer to
// every consumer.
type Coordinator struct {
	backend Backend
	log     zerolog.Logger

	requests chan Input
	events   chan event
	opened   chan opened
	done     chan struct{}

	mu    sync.RWMutex
	state State

	subMu sync.Mutex
	subs  map[chan Status]struct{}

	// owned by the Run goroutine
	handle  Handle
	gen     uint64
	loading context.CancelFunc // set while an Open is in flight
}

// New returns an idle coordinator backed by backend.
func New(backend Backend, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		backend:  backend,
		log:      log.With().Str("component", "playback").Logger(),
		requests: make(chan Input, requestQueueSize),
		events:   make(chan event, eventQueueSize),
		opened:   make(chan opened),
		done:     make(chan struct{}),
		subs:     make(map[chan Status]struct{}),
	}
}

// ======================================================
// Control
// ======================================================

// RequestPlayPause toggles locator: pause or resume it when it is the active
// track, otherwise replace the active track with it. It returns immediately;
// observe Status for the outcome.
func (c *Coordinator) RequestPlayPause(locator string) {
	c.enqueue(Input{Kind: InputRequest, Locator: locator})
}

// DisableAndStop pauses the active track if it is playing and keeps its
// identity so it can be resumed later.
func (c *Coordinator) DisableAndStop() {
	c.enqueue(Input{Kind: InputDisable})
}

func (c *Coordinator) enqueue(in Input) {
	select {
	case c.requests <- in:
	case <-c.done:
	}
}

// ======================================================
// Observation
// ======================================================

// Status returns a snapshot of the shared playback state.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Status
}

// IsActive reports whether locator is currently producing sound.
func (c *Coordinator) IsActive(locator string) bool {
	return c.Status().IsActive(locator)
}

// Subscribe returns a channel that receives the latest Status after every
// transition. Slow readers only see the most recent value.
func (c *Coordinator) Subscribe() <-chan Status {
	ch := make(chan Status, 1)
	c.subMu.Lock()
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()
	return ch
}

// Unsubscribe stops delivery to ch.
func (c *Coordinator) Unsubscribe(ch <-chan Status) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for s := range c.subs {
		if s == ch {
			delete(c.subs, s)
			return
		}
	}
}

// Done is closed when Run returns.
func (c *Coordinator) Done() <-chan struct{} { return c.done }

// ======================================================
// Engine loop (single authority)
// ======================================================

// Run processes requests and handle events in arrival order until ctx is
// cancelled, then releases the live handle. Clips are fetched and decoded
// off the loop, so a slow download never holds up later requests.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.release()

	for {
		select {
		case <-ctx.Done():
			return nil
		case in := <-c.requests:
			c.apply(ctx, in)
		case r := <-c.opened:
			c.install(ctx, r)
		case e := <-c.events:
			if c.handle == nil || e.gen != c.gen {
				// the handle that raised it has already been released
				continue
			}
			if e.ev.Kind == EventFailed {
				c.log.Warn().Err(e.ev.Err).Str("locator", abbreviate(c.snapshot().Locator)).Msg("playback failed")
			}
			c.apply(ctx, Input{Kind: e.ev.Kind.input()})
		}
	}
}

func (c *Coordinator) apply(ctx context.Context, in Input) {
	next, act := Step(c.snapshot(), in)

	switch act {
	case ActionPause:
		// a clip still loading is paused by install
		if c.handle != nil {
			if err := c.handle.Pause(); err != nil {
				c.log.Warn().Err(err).Msg("pause failed")
				next, _ = Step(next, Input{Kind: InputFailed})
				c.release()
			}
		}
	case ActionResume:
		switch {
		case c.handle != nil:
			if err := c.handle.Resume(); err != nil {
				c.log.Warn().Err(err).Msg("resume failed")
				next, _ = Step(next, Input{Kind: InputFailed})
				c.release()
			}
		case c.loading != nil:
			// not started yet: back to waiting for the start notification
			next = State{Status: Status{Locator: next.Locator}, Pending: true}
		default:
			next, _ = Step(next, Input{Kind: InputFailed})
		}
	case ActionReplace:
		c.release()
	case ActionRelease:
		c.release()
	}

	c.log.Debug().
		Str("action", act.String()).
		Str("locator", abbreviate(next.Locator)).
		Bool("playing", next.Playing).
		Msg("transition")
	c.publish(next)

	if act == ActionReplace {
		c.open(ctx, next.Locator)
	}
}

// open starts fetching locator in the background. The result comes back on
// c.opened tagged with the generation it was started for.
func (c *Coordinator) open(ctx context.Context, locator string) {
	c.gen++
	gen := c.gen
	octx, cancel := context.WithCancel(ctx)
	c.loading = cancel

	go func() {
		h, err := c.backend.Open(octx, locator, func(ev Event) { c.post(gen, ev) })
		select {
		case c.opened <- opened{gen: gen, handle: h, err: err}:
		case <-c.done:
			if h != nil {
				_ = h.Close()
			}
		}
	}()
}

// install takes over a freshly opened handle. Handles for superseded requests
// are closed without ever making a sound.
func (c *Coordinator) install(ctx context.Context, r opened) {
	if r.gen != c.gen {
		if r.handle != nil {
			_ = r.handle.Close()
		}
		return
	}
	c.loading()
	c.loading = nil

	locator := c.snapshot().Locator
	if r.err != nil {
		c.log.Warn().Err(r.err).Str("locator", abbreviate(locator)).Msg("cannot open clip")
		c.apply(ctx, Input{Kind: InputFailed})
		return
	}
	c.handle = r.handle

	s := c.snapshot()
	if !s.Pending && !s.Playing {
		// muted while loading: attach it paused
		if err := c.handle.Pause(); err != nil {
			c.log.Warn().Err(err).Msg("pause failed")
			c.apply(ctx, Input{Kind: InputFailed})
			return
		}
	}
	if err := c.handle.Start(); err != nil {
		c.log.Warn().Err(err).Str("locator", abbreviate(locator)).Msg("cannot start clip")
		c.apply(ctx, Input{Kind: InputFailed})
	}
}

// release closes the live handle and abandons any fetch in flight. Close is
// synchronous and only the current handle is ever started, so two clips never
// sound together.
func (c *Coordinator) release() {
	if c.loading != nil {
		c.loading()
		c.loading = nil
		c.gen++
	}
	if c.handle == nil {
		return
	}
	if err := c.handle.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close handle")
	}
	c.handle = nil
}

func (c *Coordinator) post(gen uint64, ev Event) {
	e := event{gen: gen, ev: ev}
	select {
	case c.events <- e:
	default:
		go func() {
			select {
			case c.events <- e:
			case <-c.done:
			}
		}()
	}
}

func (c *Coordinator) snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Coordinator) publish(next State) {
	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()

	if prev.Status == next.Status {
		return
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- next.Status:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next.Status:
			default:
			}
		}
	}
}

// abbreviate keeps data URIs out of the log.
func abbreviate(locator string) string {
	const max = 64
	if len(locator) <= max {
		return locator
	}
	return locator[:max] + "..."
}
