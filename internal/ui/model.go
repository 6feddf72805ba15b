/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package ui is the Bubble Tea front end: a landing screen with the first-run
// location prompt, then the chat screen.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"krishimitra/internal/assistant"
	"krishimitra/internal/autoplay"
	"krishimitra/internal/chat"
	"krishimitra/internal/i18n"
	"krishimitra/internal/prefs"
	"krishimitra/internal/voice"
	"krishimitra/pkg/playback"
)

// ======================================================
// Dependencies
// ======================================================

// Player is the read and request side of the playback coordinator.
type Player interface {
	RequestPlayPause(locator string)
	IsActive(locator string) bool
	Subscribe() <-chan playback.Status
}

// Assistant talks to the inference backend.
type Assistant interface {
	Predict(ctx context.Context, req assistant.Request) (*assistant.Reply, error)
	Transcribe(ctx context.Context, wav []byte, language string) (string, error)
}

// Geocoder names saved coordinates.
type Geocoder interface {
	Describe(ctx context.Context, c prefs.Coords, fallback string) string
}

// Deps wires the model to the rest of the application. Recorder and
// Geocoder may be nil.
type Deps struct {
	Catalog   *i18n.Catalog
	Prefs     *prefs.Store
	Messages  *chat.List
	Player    Player
	Autoplay  *autoplay.Policy
	Assistant Assistant
	Recorder  *voice.Recorder
	Geocoder  Geocoder

	// Language overrides the saved preference when set.
	Language       string
	TypingSpeed    time.Duration
	AudioAvailable bool
	Log            zerolog.Logger
}

// ======================================================
// Bubble Tea messages
// ======================================================

type replyMsg struct {
	reply *assistant.Reply
	err   error
}

type transcriptMsg struct {
	text string
	err  error
}

type recordStartedMsg struct {
	rec *voice.Recording
	err error
}

// recordEndedMsg fires when a capture stops on its own (max duration).
type recordEndedMsg struct{ rec *voice.Recording }

type statusMsg playback.Status

type catalogMsg struct{}

type locationMsg string

type typingTickMsg struct{ id string }

// ======================================================
// Model
// ======================================================

type screen int

const (
	screenLanding screen = iota
	screenChat
)

// Model is the root Bubble Tea model.
type Model struct {
	deps Deps
	ctx  context.Context
	log  zerolog.Logger
	keys KeyMap

	screen        screen
	lang          string
	width, height int

	// landing
	askLocation bool
	coords      textinput.Model
	locNotice   string

	// chat
	input    textarea.Model
	view     viewport.Model
	spin     spinner.Model
	loading  bool
	errLine  string
	notice   string
	location string

	image     []byte
	imageName string
	imageMime string

	selected int
	typing   typing

	recording    *voice.Recording
	transcribing bool

	sub <-chan playback.Status

	md      *glamour.TermRenderer
	mdWidth int
	mdCache map[string]string
}

// New builds the model. ctx bounds every request the UI starts.
func New(ctx context.Context, deps Deps) Model {
	p := deps.Prefs.Get()
	lang := p.Language
	if deps.Language != "" {
		lang = deps.Language
	}
	lang = i18n.Match(lang)
	if deps.TypingSpeed <= 0 {
		deps.TypingSpeed = 15 * time.Millisecond
	}

	coords := textinput.New()
	coords.Placeholder = "17.38,78.48"
	coords.CharLimit = 40

	input := textarea.New()
	input.ShowLineNumbers = false
	input.Prompt = "┃ "
	input.SetHeight(3)
	input.KeyMap.InsertNewline.SetKeys("alt+enter")

	m := Model{
		deps:        deps,
		ctx:         ctx,
		log:         deps.Log.With().Str("component", "ui").Logger(),
		keys:        DefaultKeyMap(),
		lang:        lang,
		askLocation: !p.LocationAsked,
		coords:      coords,
		input:       input,
		view:        viewport.New(80, 20),
		spin:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		selected:    -1,
		mdCache:     make(map[string]string),
	}
	m.input.Placeholder = m.t(i18n.KeyChatPlaceholder)
	if m.askLocation {
		m.coords.Focus()
	}
	if !deps.AudioAvailable {
		m.notice = m.t(i18n.KeyAlertNoAudio)
	}
	return m
}

func (m Model) t(key string, args ...any) string {
	return m.deps.Catalog.T(m.lang, key, args...)
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitCatalog()}
	if m.deps.Player != nil {
		cmds = append(cmds, subscribe(m.deps.Player))
	}
	if cmd := m.lookupLocation(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// subscribeMsg hands the coordinator channel to the model; Init cannot
// store it because Init has a value receiver.
type subscribeMsg struct{ ch <-chan playback.Status }

func subscribe(p Player) tea.Cmd {
	return func() tea.Msg { return subscribeMsg{ch: p.Subscribe()} }
}

func waitStatus(ch <-chan playback.Status) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(s)
	}
}

func (m Model) waitCatalog() tea.Cmd {
	if m.deps.Catalog == nil {
		return nil
	}
	changed := m.deps.Catalog.Changed()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-changed:
			return catalogMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) lookupLocation() tea.Cmd {
	loc := m.deps.Prefs.Get().Location
	if loc == nil || m.deps.Geocoder == nil {
		return nil
	}
	g, ctx, c, fallback := m.deps.Geocoder, m.ctx, *loc, m.t(i18n.KeyLocationSaved)
	return func() tea.Msg {
		return locationMsg(g.Describe(ctx, c, fallback))
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case subscribeMsg:
		m.sub = msg.ch
		return m, waitStatus(m.sub)

	case statusMsg:
		// labels read Player.IsActive; the message only triggers a redraw
		m.refresh()
		return m, waitStatus(m.sub)

	case catalogMsg:
		m.input.Placeholder = m.t(i18n.KeyChatPlaceholder)
		m.mdCache = make(map[string]string)
		m.refresh()
		return m, m.waitCatalog()

	case locationMsg:
		m.location = string(msg)
		return m, nil
	}

	if m.screen == screenLanding {
		return m.updateLanding(msg)
	}
	return m.updateChat(msg)
}

func (m Model) View() string {
	if m.screen == screenLanding {
		return m.landingView()
	}
	return m.chatView()
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.input.SetWidth(w - 2)
	m.view.Width = w
	m.view.Height = max(h-m.input.Height()-5, 3)
	m.coords.Width = min(40, max(w-8, 10))
	m.refresh()
}

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E7D32"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9A825"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1565C0"))
	botStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E7D32"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9A825"))
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2E7D32")).Padding(1, 2)
)
