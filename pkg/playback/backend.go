/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package playback

import "context"

// EventKind is a lifecycle notification raised by a Handle.
type EventKind int

const (
	EventStarted EventKind = iota
	EventEnded
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventEnded:
		return "ended"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event carries a lifecycle notification. Err is set for EventFailed.
type Event struct {
	Kind EventKind
	Err  error
}

// Notify receives lifecycle events for one handle. Backends may call it from
// any goroutine; it never blocks.
type Notify func(Event)

// Handle is one live audio resource. It is silent until Start and raises no
// events before it. Close must be synchronous: once it returns the handle
// produces no more sound.
type Handle interface {
	Start() error
	Pause() error
	Resume() error
	Close() error
}

// Backend allocates handles. Open fetches and decodes the clip and may block
// for as long as ctx allows; it runs off the coordinator loop and ctx is
// cancelled once the request is superseded. The returned handle starts from
// position zero and reports EventStarted once sound is actually produced.
type Backend interface {
	Open(ctx context.Context, locator string, notify Notify) (Handle, error)
}

func (k EventKind) input() InputKind {
	switch k {
	case EventStarted:
		return InputStarted
	case EventEnded:
		return InputEnded
	default:
		return InputFailed
	}
}
