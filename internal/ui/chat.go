/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"krishimitra/internal/assistant"
	"krishimitra/internal/chat"
	"krishimitra/internal/codec"
	"krishimitra/internal/i18n"
	"krishimitra/internal/voice"
)

// ======================================================
// Chat screen
// ======================================================

func (m Model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading && !m.transcribing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case replyMsg:
		return m.handleReply(msg)

	case typingTickMsg:
		cmd := m.advanceTyping(msg.id)
		return m, cmd

	case recordStartedMsg:
		if msg.err != nil {
			m.recording = nil
			m.showError(msg.err)
			return m, nil
		}
		m.recording = msg.rec
		m.notice = m.t(i18n.KeyListening)
		rec := msg.rec
		return m, func() tea.Msg {
			<-rec.Done()
			return recordEndedMsg{rec: rec}
		}

	case recordEndedMsg:
		if m.recording != msg.rec {
			return m, nil
		}
		return m.stopRecording()

	case transcriptMsg:
		m.transcribing = false
		m.notice = ""
		switch {
		case errors.Is(msg.err, voice.ErrNoSpeech):
			m.notice = m.t(i18n.KeyNoSpeech)
		case msg.err != nil:
			m.showError(msg.err)
		default:
			m.input.SetValue(strings.TrimSpace(m.input.Value() + " " + msg.text))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(k, m.keys.Send):
		return m.send()

	case key.Matches(k, m.keys.Voice):
		return m.toggleRecording()

	case key.Matches(k, m.keys.Autoplay):
		if m.deps.Autoplay != nil {
			if m.deps.Autoplay.Toggle() {
				m.notice = m.t(i18n.KeyAutoplayOn)
			} else {
				m.notice = m.t(i18n.KeyAutoplayOff)
			}
		}
		return m, nil

	case key.Matches(k, m.keys.PlayPause):
		if msg, ok := m.selectedMessage(); ok && m.deps.Player != nil {
			m.deps.Player.RequestPlayPause(msg.AudioRef)
		}
		return m, nil

	case key.Matches(k, m.keys.SelectUp):
		m.moveSelection(-1)
		m.refresh()
		return m, nil

	case key.Matches(k, m.keys.SelectDn):
		m.moveSelection(1)
		m.refresh()
		return m, nil

	case key.Matches(k, m.keys.Language):
		m.cycleLanguage()
		return m, nil

	case key.Matches(k, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(k)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

// ======================================================
// Sending
// ======================================================

func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())

	if strings.HasPrefix(text, "/") {
		if handled := m.command(text); handled {
			m.input.Reset()
			return m, nil
		}
	}
	if m.loading {
		return m, nil
	}
	if text == "" && len(m.image) == 0 {
		m.notice = m.t(i18n.KeyAlertNoInput)
		return m, nil
	}

	user := chat.Message{Author: chat.AuthorUser, Text: text}
	if len(m.image) > 0 {
		user.ImageRef = m.imageName
	}
	m.deps.Messages.Append(user)

	req := assistant.Request{
		Text:      text,
		Language:  m.lang,
		Image:     m.image,
		ImageName: m.imageName,
		ImageMime: m.imageMime,
	}
	m.image, m.imageName, m.imageMime = nil, "", ""
	m.input.Reset()
	m.loading = true
	m.errLine = ""
	m.notice = ""
	m.refresh()

	a, ctx := m.deps.Assistant, m.ctx
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		reply, err := a.Predict(ctx, req)
		return replyMsg{reply: reply, err: err}
	})
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	m.loading = false

	out := chat.Message{Author: chat.AuthorAssistant}
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("predict failed")
		out.Text = m.t(i18n.KeyConnectionError)
		out.Err = true
		m.errLine = msg.err.Error()
	} else {
		out.Text = msg.reply.Text
		out.AudioRef = msg.reply.AudioRef
		out.Err = msg.reply.Failed
		if out.Text == "" {
			out.Text = m.t(i18n.KeyNoResponse)
		}
	}

	// Append notifies the autoplay policy synchronously.
	stored := m.deps.Messages.Append(out)
	if stored.HasAudio() {
		m.selected = m.deps.Messages.Len() - 1
	}
	m.typing = typing{id: stored.ID}
	m.refresh()
	return m, m.typingTick(stored.ID)
}

// command runs a slash command and reports whether text was one.
func (m *Model) command(text string) bool {
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/image":
		if arg == "" {
			m.notice = m.t(i18n.KeyImageError, errors.New("missing path"))
			return true
		}
		f, err := os.Open(arg)
		if err != nil {
			m.notice = m.t(i18n.KeyImageError, err)
			return true
		}
		defer f.Close()
		data, mime, err := codec.PrepareImage(f, codec.MaxImageSide)
		if err != nil {
			m.notice = m.t(i18n.KeyImageError, err)
			return true
		}
		m.image, m.imageName, m.imageMime = data, filepath.Base(arg), mime
		m.notice = m.t(i18n.KeyImageAttached, m.imageName)
		return true
	case "/clear-image":
		m.image, m.imageName, m.imageMime = nil, "", ""
		m.notice = m.t(i18n.KeyImageCleared)
		return true
	}
	return false
}

func (m *Model) showError(err error) {
	if errors.Is(err, voice.ErrUnsupported) || errors.Is(err, assistant.ErrNoTranscription) {
		m.notice = m.t(i18n.KeyAlertNoMic)
		return
	}
	m.notice = ""
	m.errLine = err.Error()
}

// ======================================================
// Voice input
// ======================================================

func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.deps.Recorder == nil {
		m.notice = m.t(i18n.KeyAlertNoMic)
		return m, nil
	}
	if m.transcribing {
		return m, nil
	}
	if m.recording != nil {
		return m.stopRecording()
	}

	r, ctx := m.deps.Recorder, m.ctx
	return m, func() tea.Msg {
		rec, err := r.Start(ctx)
		return recordStartedMsg{rec: rec, err: err}
	}
}

func (m Model) stopRecording() (tea.Model, tea.Cmd) {
	rec := m.recording
	m.recording = nil
	m.transcribing = true
	m.notice = ""

	a, ctx, lang := m.deps.Assistant, m.ctx, m.lang
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		pcm, err := rec.Stop()
		if err != nil && len(pcm) == 0 {
			return transcriptMsg{err: err}
		}
		wav, err := voice.Prepare(pcm, voice.DefaultSilenceThreshold)
		if err != nil {
			return transcriptMsg{err: err}
		}
		text, err := a.Transcribe(ctx, wav, lang)
		return transcriptMsg{text: text, err: err}
	})
}

// ======================================================
// Selection and language
// ======================================================

func (m Model) selectedMessage() (chat.Message, bool) {
	msgs := m.deps.Messages.Messages()
	if m.selected < 0 || m.selected >= len(msgs) || !msgs[m.selected].HasAudio() {
		return chat.Message{}, false
	}
	return msgs[m.selected], true
}

// moveSelection steps to the previous (dir < 0) or next message with audio.
func (m *Model) moveSelection(dir int) {
	msgs := m.deps.Messages.Messages()
	start := m.selected
	if start < 0 || start >= len(msgs) {
		start = len(msgs)
		if dir > 0 {
			start = -1
		}
	}
	for i := start + dir; i >= 0 && i < len(msgs); i += dir {
		if msgs[i].HasAudio() {
			m.selected = i
			return
		}
	}
}

func (m *Model) cycleLanguage() {
	m.lang = i18n.Next(m.lang)
	if err := m.deps.Prefs.SetLanguage(m.lang); err != nil {
		m.log.Warn().Err(err).Msg("save prefs")
	}
	m.input.Placeholder = m.t(i18n.KeyChatPlaceholder)
	m.notice = m.t(i18n.KeyLanguageChanged, i18n.NameOf(m.lang))
	m.refresh()
}

// ======================================================
// Typing animation
// ======================================================

// typing reveals the newest assistant message one rune per tick.
type typing struct {
	id    string
	shown int
	done  bool
}

func (m Model) typingTick(id string) tea.Cmd {
	return tea.Tick(m.deps.TypingSpeed, func(time.Time) tea.Msg {
		return typingTickMsg{id: id}
	})
}

func (m *Model) advanceTyping(id string) tea.Cmd {
	if m.typing.id != id || m.typing.done {
		return nil
	}
	last, ok := m.deps.Messages.Last()
	if !ok || last.ID != id {
		m.typing.done = true
		return nil
	}
	m.typing.shown++
	if m.typing.shown >= len([]rune(last.Text)) {
		m.typing.done = true
		m.refresh()
		return nil
	}
	m.refresh()
	return m.typingTick(id)
}
