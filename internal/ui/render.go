/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"krishimitra/internal/chat"
	"krishimitra/internal/i18n"
)

// ======================================================
// Chat rendering
// ======================================================

// refresh re-renders the conversation into the viewport. The listen label of
// every message is derived from the coordinator on each pass.
func (m *Model) refresh() {
	if m.screen != screenChat {
		return
	}
	atBottom := m.view.AtBottom() || m.view.TotalLineCount() == 0

	msgs := m.deps.Messages.Messages()
	var b strings.Builder
	if len(msgs) == 0 {
		b.WriteString(mutedStyle.Render(m.t(i18n.KeyWelcome)))
		b.WriteString("\n")
	}
	for i, msg := range msgs {
		b.WriteString(m.renderMessage(i, msg, i == len(msgs)-1))
		b.WriteString("\n")
	}
	m.view.SetContent(b.String())
	if atBottom {
		m.view.GotoBottom()
	}
}

func (m *Model) renderMessage(idx int, msg chat.Message, newest bool) string {
	var b strings.Builder

	stamp := msg.Timestamp.Format("15:04")
	if msg.Author == chat.AuthorUser {
		b.WriteString(userStyle.Render(m.t(i18n.KeyYou)))
	} else {
		b.WriteString(botStyle.Render(m.t(i18n.KeyAssistant)))
	}
	b.WriteString(mutedStyle.Render(" · " + stamp))
	b.WriteString("\n")

	switch {
	case msg.Author == chat.AuthorUser:
		b.WriteString(indent(msg.Text))
	case msg.Err:
		b.WriteString(indent(errorStyle.Render(msg.Text)))
	case newest && m.typing.id == msg.ID && !m.typing.done:
		runes := []rune(msg.Text)
		b.WriteString(indent(string(runes[:min(m.typing.shown, len(runes))])))
	default:
		b.WriteString(m.markdown(msg))
	}

	if msg.ImageRef != "" {
		b.WriteString("\n")
		b.WriteString(indent(mutedStyle.Render("📎 " + msg.ImageRef)))
	}
	if msg.HasAudio() {
		b.WriteString("\n")
		b.WriteString(m.listenControl(idx, msg))
	}
	return b.String()
}

// listenControl shows Pause while the message's clip is the one playing and
// Listen otherwise, including when it is the paused active clip.
func (m *Model) listenControl(idx int, msg chat.Message) string {
	label := "▶ " + m.t(i18n.KeyListen)
	style := accentStyle
	if m.deps.Player != nil && m.deps.Player.IsActive(msg.AudioRef) {
		label = "⏸ " + m.t(i18n.KeyPause)
		style = activeStyle
	}
	marker := "  "
	if idx == m.selected {
		marker = "› "
	}
	return marker + style.Render("["+label+"]")
}

// markdown renders assistant text, falling back to plain text when glamour
// cannot.
func (m *Model) markdown(msg chat.Message) string {
	if out, ok := m.mdCache[msg.ID]; ok {
		return out
	}
	width := max(m.view.Width-4, 20)
	if m.md == nil || m.mdWidth != width {
		style := styles.LightStyle
		if lipgloss.HasDarkBackground() {
			style = styles.DarkStyle
		}
		r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(width))
		if err != nil {
			m.log.Debug().Err(err).Msg("markdown renderer")
			return indent(msg.Text)
		}
		m.md, m.mdWidth = r, width
		m.mdCache = make(map[string]string)
	}
	out, err := m.md.Render(msg.Text)
	if err != nil {
		return indent(msg.Text)
	}
	out = strings.Trim(out, "\n")
	m.mdCache[msg.ID] = out
	return out
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// ======================================================
// Chat view
// ======================================================

func (m Model) chatView() string {
	var b strings.Builder

	header := titleStyle.Render("🌱 Krishi Mitra")
	meta := []string{i18n.NameOf(m.lang)}
	if m.location != "" {
		meta = append(meta, "📍 "+m.location)
	}
	if m.deps.Autoplay != nil {
		if m.deps.Autoplay.Enabled() {
			meta = append(meta, m.t(i18n.KeyAutoplayOn))
		} else {
			meta = append(meta, m.t(i18n.KeyAutoplayOff))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header, mutedStyle.Render("  "+strings.Join(meta, " · "))))
	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spin.View() + " " + m.t(i18n.KeyAIIsThinking))
	case m.transcribing:
		b.WriteString(m.spin.View())
	case m.recording != nil:
		b.WriteString(errorStyle.Render("● ") + m.t(i18n.KeyListening))
	case m.errLine != "":
		b.WriteString(errorStyle.Render(m.errLine))
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")

	if m.imageName != "" {
		b.WriteString(mutedStyle.Render("📎 " + m.imageName))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.t(i18n.KeyHelp)))
	return b.String()
}
