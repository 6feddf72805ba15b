/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package autoplay starts each new assistant voice reply automatically.
package autoplay

import (
	"sync"

	"github.com/rs/zerolog"

	"krishimitra/internal/chat"
)

// Player is the part of the playback coordinator the policy drives.
type Player interface {
	RequestPlayPause(locator string)
	DisableAndStop()
}

// Policy is the autoplay switch. It is on by default.
type Policy struct {
	player Player
	log    zerolog.Logger

	mu      sync.Mutex
	enabled bool
}

func New(player Player, enabled bool, log zerolog.Logger) *Policy {
	return &Policy{
		player:  player,
		enabled: enabled,
		log:     log.With().Str("component", "autoplay").Logger(),
	}
}

// Attach makes the policy react to every message appended to l.
func (p *Policy) Attach(l *chat.List) {
	l.Observe(p.OnMessage)
}

func (p *Policy) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Toggle flips the switch and returns the new value. Turning it off mutes
// the active clip without forgetting it.
func (p *Policy) Toggle() bool {
	p.mu.Lock()
	p.enabled = !p.enabled
	on := p.enabled
	p.mu.Unlock()

	if !on {
		p.player.DisableAndStop()
	}
	p.log.Info().Bool("enabled", on).Msg("autoplay toggled")
	return on
}

// OnMessage requests playback of m's clip when autoplay is on and m is a new
// assistant reply with audio.
func (p *Policy) OnMessage(m chat.Message) {
	if m.Author != chat.AuthorAssistant || !m.HasAudio() {
		return
	}
	if !p.Enabled() {
		return
	}
	p.player.RequestPlayPause(m.AudioRef)
}
