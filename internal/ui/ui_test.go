/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"krishimitra/internal/assistant"
	"krishimitra/internal/autoplay"
	"krishimitra/internal/chat"
	"krishimitra/internal/i18n"
	"krishimitra/internal/prefs"
	"krishimitra/pkg/playback"
)

type fakePlayer struct {
	mu       sync.Mutex
	requests []string
	stops    int
	active   string
}

func (p *fakePlayer) RequestPlayPause(locator string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, locator)
}

func (p *fakePlayer) DisableAndStop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePlayer) IsActive(locator string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return locator != "" && p.active == locator
}

func (p *fakePlayer) Subscribe() <-chan playback.Status { return make(chan playback.Status) }

type fakeAssistant struct {
	reply *assistant.Reply
	err   error
	got   []assistant.Request
}

func (a *fakeAssistant) Predict(_ context.Context, req assistant.Request) (*assistant.Reply, error) {
	a.got = append(a.got, req)
	return a.reply, a.err
}

func (a *fakeAssistant) Transcribe(context.Context, []byte, string) (string, error) {
	return "", errors.New("not used")
}

type fixture struct {
	player *fakePlayer
	bot    *fakeAssistant
	list   *chat.List
	store  *prefs.Store
	deps   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := i18n.New("", zerolog.Nop())
	require.NoError(t, err)
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)

	f := &fixture{
		player: &fakePlayer{},
		bot:    &fakeAssistant{reply: &assistant.Reply{Text: "Use neem oil."}},
		list:   chat.NewList(),
		store:  store,
	}
	policy := autoplay.New(f.player, true, zerolog.Nop())
	policy.Attach(f.list)

	f.deps = Deps{
		Catalog:        cat,
		Prefs:          store,
		Messages:       f.list,
		Player:         f.player,
		Autoplay:       policy,
		Assistant:      f.bot,
		AudioAvailable: true,
		Log:            zerolog.Nop(),
	}
	return f
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

// chatModel skips the landing screen.
func chatModel(t *testing.T, f *fixture) Model {
	t.Helper()
	require.NoError(t, f.store.SkipLocation())
	m := New(context.Background(), f.deps)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(m, press(tea.KeyEnter))
	require.Equal(t, screenChat, m.screen)
	return m
}

// runUntil executes cmd, expanding batches, and returns the first message of
// type T.
func runUntil[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	require.NotNil(t, cmd)
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case T:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	t.Fatalf("no %T produced", *new(T))
	var zero T
	return zero
}

// ======================================================
// Landing
// ======================================================

func TestLandingSkipLocation(t *testing.T) {
	f := newFixture(t)
	m := New(context.Background(), f.deps)
	require.True(t, m.askLocation)
	require.Contains(t, m.View(), "lat,lon")

	m, _ = update(m, press(tea.KeyEsc))
	require.False(t, m.askLocation)
	require.True(t, f.store.Get().LocationAsked)
	require.Nil(t, f.store.Get().Location)

	m, _ = update(m, press(tea.KeyEnter))
	require.Equal(t, screenChat, m.screen)
}

func TestLandingSavesLocation(t *testing.T) {
	f := newFixture(t)
	m := New(context.Background(), f.deps)

	m.coords.SetValue("not a place")
	m, _ = update(m, press(tea.KeyEnter))
	require.True(t, m.askLocation)
	require.Contains(t, m.View(), "Could not read that location")

	m.coords.SetValue("17.38, 78.48")
	m, _ = update(m, press(tea.KeyEnter))
	require.False(t, m.askLocation)

	p := f.store.Get()
	require.True(t, p.LocationAsked)
	require.NotNil(t, p.Location)
	require.InDelta(t, 17.38, p.Location.Lat, 1e-9)
	require.Equal(t, "Location saved", m.location)
}

// ======================================================
// Chat
// ======================================================

func TestSendEmptyShowsNotice(t *testing.T) {
	f := newFixture(t)
	m := chatModel(t, f)

	m, cmd := update(m, press(tea.KeyEnter))
	require.Nil(t, cmd)
	require.Equal(t, "Please enter a message or attach an image.", m.notice)
	require.Zero(t, f.list.Len())
}

func TestSendAndReply(t *testing.T) {
	f := newFixture(t)
	f.bot.reply = &assistant.Reply{Text: "Use **neem** oil.", AudioRef: "data:audio/mpeg;base64,AAAA"}
	m := chatModel(t, f)

	m.input.SetValue("  leaves turning yellow ")
	m, cmd := update(m, press(tea.KeyEnter))
	require.True(t, m.loading)
	require.Equal(t, 1, f.list.Len())
	require.Empty(t, m.input.Value())
	require.Contains(t, m.View(), "AI is thinking...")

	reply := runUntil[replyMsg](t, cmd)
	require.Len(t, f.bot.got, 1)
	require.Equal(t, "leaves turning yellow", f.bot.got[0].Text)
	require.Equal(t, "en", f.bot.got[0].Language)

	m, _ = update(m, reply)
	require.False(t, m.loading)
	require.Equal(t, 2, f.list.Len())
	require.Equal(t, []string{"data:audio/mpeg;base64,AAAA"}, f.player.requests)
	require.Equal(t, 1, m.selected)
	require.Contains(t, m.view.View(), "Listen")

	f.player.active = "data:audio/mpeg;base64,AAAA"
	m, _ = update(m, statusMsg(playback.Status{Locator: f.player.active, Playing: true}))
	require.Contains(t, m.view.View(), "Pause")
}

func TestReplyErrorsAndFallbacks(t *testing.T) {
	f := newFixture(t)
	m := chatModel(t, f)

	m, _ = update(m, replyMsg{err: errors.New("dial tcp: connection refused")})
	last, _ := f.list.Last()
	require.True(t, last.Err)
	require.Contains(t, last.Text, "Connection Error")
	require.Equal(t, "dial tcp: connection refused", m.errLine)

	m, _ = update(m, replyMsg{reply: &assistant.Reply{}})
	last, _ = f.list.Last()
	require.False(t, last.Err)
	require.Equal(t, "Sorry, I couldn't get a response.", last.Text)

	_, _ = update(m, replyMsg{reply: &assistant.Reply{Text: "model offline", Failed: true}})
	last, _ = f.list.Last()
	require.True(t, last.Err)
	require.Empty(t, f.player.requests)
}

func TestTypingAnimation(t *testing.T) {
	f := newFixture(t)
	m := chatModel(t, f)

	m, cmd := update(m, replyMsg{reply: &assistant.Reply{Text: "abc"}})
	require.NotNil(t, cmd)
	last, _ := f.list.Last()
	require.Equal(t, last.ID, m.typing.id)
	require.Zero(t, m.typing.shown)

	for i := 0; i < 3; i++ {
		m, cmd = update(m, typingTickMsg{id: last.ID})
	}
	require.True(t, m.typing.done)
	require.Nil(t, cmd)

	m, cmd = update(m, typingTickMsg{id: "stale"})
	require.Nil(t, cmd)
	require.Equal(t, 3, m.typing.shown)
}

func TestPlayPauseSelection(t *testing.T) {
	f := newFixture(t)
	f.list.Append(chat.Message{Author: chat.AuthorAssistant, Text: "one", AudioRef: "a"})
	f.list.Append(chat.Message{Author: chat.AuthorUser, Text: "q"})
	f.list.Append(chat.Message{Author: chat.AuthorAssistant, Text: "two", AudioRef: "b"})
	f.player.requests = nil
	m := chatModel(t, f)

	m, _ = update(m, press(tea.KeyCtrlP))
	require.Empty(t, f.player.requests)

	m, _ = update(m, press(tea.KeyCtrlUp))
	require.Equal(t, 2, m.selected)
	m, _ = update(m, press(tea.KeyCtrlUp))
	require.Equal(t, 0, m.selected)
	m, _ = update(m, press(tea.KeyCtrlUp))
	require.Equal(t, 0, m.selected)

	m, _ = update(m, press(tea.KeyCtrlP))
	m, _ = update(m, press(tea.KeyCtrlDown))
	m, _ = update(m, press(tea.KeyCtrlP))
	require.Equal(t, []string{"a", "b"}, f.player.requests)
	require.Equal(t, 2, m.selected)
}

func TestAutoplayToggleMutes(t *testing.T) {
	f := newFixture(t)
	m := chatModel(t, f)

	m, _ = update(m, press(tea.KeyCtrlA))
	require.False(t, f.deps.Autoplay.Enabled())
	require.Equal(t, 1, f.player.stops)
	require.Equal(t, "Autoplay off", m.notice)

	m, _ = update(m, press(tea.KeyCtrlA))
	require.True(t, f.deps.Autoplay.Enabled())
	require.Equal(t, 1, f.player.stops)
	require.Equal(t, "Autoplay on", m.notice)
}

func TestLanguageCyclePersists(t *testing.T) {
	f := newFixture(t)
	m := chatModel(t, f)

	m, _ = update(m, press(tea.KeyCtrlL))
	require.Equal(t, "hi", m.lang)
	require.Equal(t, "hi", f.store.Get().Language)

	m.input.SetValue("नमस्ते")
	_, cmd := update(m, press(tea.KeyEnter))
	runUntil[replyMsg](t, cmd)
	require.Equal(t, "hi", f.bot.got[0].Language)
}

func TestImageCommands(t *testing.T) {
	f := newFixture(t)
	m := chatModel(t, f)

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "leaf.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m.input.SetValue("/image " + path)
	m, _ = update(m, press(tea.KeyEnter))
	require.Equal(t, "leaf.png", m.imageName)
	require.NotEmpty(t, m.image)
	require.Equal(t, "Image attached: leaf.png", m.notice)

	m.input.SetValue("/clear-image")
	m, _ = update(m, press(tea.KeyEnter))
	require.Empty(t, m.image)

	m.input.SetValue("/image " + filepath.Join(t.TempDir(), "missing.png"))
	m, _ = update(m, press(tea.KeyEnter))
	require.True(t, strings.HasPrefix(m.notice, "Cannot use that image"))

	m.input.SetValue("/image " + path)
	m, _ = update(m, press(tea.KeyEnter))
	_, cmd := update(m, press(tea.KeyEnter))
	runUntil[replyMsg](t, cmd)
	require.Equal(t, "image/png", f.bot.got[0].ImageMime)
	first := f.list.Messages()[0]
	require.Equal(t, "leaf.png", first.ImageRef)
}

func TestVoiceUnsupported(t *testing.T) {
	f := newFixture(t)
	m := chatModel(t, f)

	m, cmd := update(m, press(tea.KeyCtrlR))
	require.Nil(t, cmd)
	require.Equal(t, "Voice input is not supported on this system.", m.notice)
}

func TestTranscriptionNotServed(t *testing.T) {
	f := newFixture(t)
	m := chatModel(t, f)
	m.transcribing = true

	err := fmt.Errorf("%w: post /transcribe: status 404 Not Found", assistant.ErrNoTranscription)
	m, _ = update(m, transcriptMsg{err: err})
	require.False(t, m.transcribing)
	require.Equal(t, "Voice input is not supported on this system.", m.notice)
	require.Empty(t, m.errLine)
}

func TestNoAudioNotice(t *testing.T) {
	f := newFixture(t)
	f.deps.AudioAvailable = false
	m := chatModel(t, f)
	require.Contains(t, m.View(), "Audio playback is not available")
}
