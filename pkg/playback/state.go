/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package playback serializes audio playback through a single live handle.
//
// A Coordinator owns at most one handle at a time. Callers identify tracks by
// their clip locator and toggle them with RequestPlayPause; any number of
// observers read the shared Status and decide for themselves whether the
// track they render is the active one.
package playback

// Phase is the coarse coordinator state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlaying
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Status is the read-only view shared with observers. An empty Locator means
// no track is loaded.
type Status struct {
	Locator string `json:"locator"`
	Playing bool   `json:"playing"`
}

// Phase reports Idle, Playing or Paused.
func (s Status) Phase() Phase {
	switch {
	case s.Locator == "":
		return PhaseIdle
	case s.Playing:
		return PhasePlaying
	default:
		return PhasePaused
	}
}

// IsActive reports whether locator is the track currently producing sound.
func (s Status) IsActive(locator string) bool {
	return locator != "" && s.Playing && s.Locator == locator
}

// State is the full transition state. Pending is set from the moment a track
// is requested until its handle reports that sound started.
type State struct {
	Status
	Pending bool
}

// InputKind enumerates everything that can drive a transition.
type InputKind int

const (
	InputRequest InputKind = iota // requestPlayPause(locator)
	InputDisable                  // disableAndStop()
	InputStarted                  // live handle began producing sound
	InputEnded                    // live handle finished naturally
	InputFailed                   // live handle (or its allocation) failed
)

// Input is one transition trigger. Locator is only read for InputRequest.
type Input struct {
	Kind    InputKind
	Locator string
}

// Action is the side effect the coordinator must perform on its handle after
// a transition.
type Action int

const (
	ActionNone    Action = iota
	ActionPause          // pause the live handle, keep it
	ActionResume         // resume the live handle from its position
	ActionReplace        // release the live handle, then open one for the new locator
	ActionRelease        // release the live handle
)

func (a Action) String() string {
	switch a {
	case ActionPause:
		return "pause"
	case ActionResume:
		return "resume"
	case ActionReplace:
		return "replace"
	case ActionRelease:
		return "release"
	default:
		return "none"
	}
}

// ======================================================
// Transition table
// ======================================================

// Step is the coordinator's transition function. It is pure: the returned
// Action tells the caller what to do with the handle.
func Step(s State, in Input) (State, Action) {
	switch in.Kind {
	case InputRequest:
		if in.Locator == "" {
			return s, ActionNone
		}
		if s.Locator != in.Locator {
			// Idle, Playing(L) or Paused(L) -> Playing(M), started from zero.
			return State{Status: Status{Locator: in.Locator}, Pending: true}, ActionReplace
		}
		if s.Pending {
			// already on its way to Playing
			return s, ActionNone
		}
		if s.Playing {
			return State{Status: Status{Locator: s.Locator}}, ActionPause
		}
		return State{Status: Status{Locator: s.Locator, Playing: true}}, ActionResume

	case InputDisable:
		if s.Playing || s.Pending {
			return State{Status: Status{Locator: s.Locator}}, ActionPause
		}
		return s, ActionNone

	case InputStarted:
		if s.Pending {
			return State{Status: Status{Locator: s.Locator, Playing: true}}, ActionNone
		}
		return s, ActionNone

	case InputEnded, InputFailed:
		// The track identity is dropped whatever phase we were in, so the
		// same locator replays from the start next time.
		return State{}, ActionRelease
	}
	return s, ActionNone
}
