/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package chat holds the in-memory conversation shown on the chat screen.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ======================================================
// Author
// ======================================================

// Author is the sender of a message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

func (a Author) String() string { return string(a) }

// ======================================================
// Message
// ======================================================

// Message is one entry of the conversation. AudioRef is a clip locator, empty
// when the message has no voice reply.
type Message struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Timestamp time.Time `json:"timestamp"`

	Text     string `json:"text"`
	ImageRef string `json:"image_ref,omitempty"`
	AudioRef string `json:"audio_ref,omitempty"`

	// Err marks an assistant message that reports a failure rather than an
	// answer.
	Err bool `json:"err,omitempty"`
}

// HasAudio reports whether the message carries a playable clip.
func (m Message) HasAudio() bool { return m.AudioRef != "" }

// ======================================================
// List
// ======================================================

// List is an append-only, insertion-ordered message sequence. Observers are
// called synchronously, in registration order, after every append.
type List struct {
	mu        sync.RWMutex
	messages  []Message
	observers []func(Message)
	now       func() time.Time
}

func NewList() *List {
	return &List{now: time.Now}
}

// Observe registers fn to run after each Append.
func (l *List) Observe(fn func(Message)) {
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// Append stores m, filling in ID and Timestamp when unset, and returns the
// stored copy.
func (l *List) Append(m Message) Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	l.mu.Lock()
	if m.Timestamp.IsZero() {
		m.Timestamp = l.now()
	}
	l.messages = append(l.messages, m)
	observers := append([]func(Message){}, l.observers...)
	l.mu.Unlock()

	for _, fn := range observers {
		fn(m)
	}
	return m
}

// Messages returns a copy of the conversation in insertion order.
func (l *List) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Message(nil), l.messages...)
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the newest message.
func (l *List) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}
