/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"krishimitra/internal/i18n"
	"krishimitra/internal/prefs"
)

// ======================================================
// Landing screen
// ======================================================

func (m Model) updateLanding(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.askLocation {
			var cmd tea.Cmd
			m.coords, cmd = m.coords.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if k.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.askLocation {
		switch k.Type {
		case tea.KeyEsc:
			if err := m.deps.Prefs.SkipLocation(); err != nil {
				m.log.Warn().Err(err).Msg("save prefs")
			}
			m.askLocation = false
			m.coords.Blur()
			return m, nil
		case tea.KeyEnter:
			c, err := prefs.ParseCoords(m.coords.Value())
			if err != nil {
				m.locNotice = m.t(i18n.KeyLocationInvalid)
				return m, nil
			}
			if err := m.deps.Prefs.SetLocation(c); err != nil {
				m.log.Warn().Err(err).Msg("save prefs")
			}
			m.askLocation = false
			m.coords.Blur()
			m.locNotice = ""
			m.location = m.t(i18n.KeyLocationSaved)
			return m, m.lookupLocation()
		}
		var cmd tea.Cmd
		m.coords, cmd = m.coords.Update(msg)
		return m, cmd
	}

	switch k.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.enterChat()
	case tea.KeyCtrlL:
		m.cycleLanguage()
	}
	return m, nil
}

func (m Model) enterChat() (tea.Model, tea.Cmd) {
	m.screen = screenChat
	m.refresh()
	return m, m.input.Focus()
}

func (m Model) landingView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🌱 " + m.t(i18n.KeyAppTagline)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.t(i18n.KeyHeroTitle)))
	b.WriteString("\n")
	b.WriteString(m.wrap(m.t(i18n.KeyHeroSubtitle)))
	b.WriteString("\n\n")
	for _, f := range []string{i18n.KeyFeatureDiagnose, i18n.KeyFeatureVoice, i18n.KeyFeatureLanguage} {
		b.WriteString(accentStyle.Render("  • "))
		b.WriteString(m.t(f))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.askLocation {
		body := m.t(i18n.KeyLocationPrompt) + "\n\n" + m.coords.View() + "\n" +
			mutedStyle.Render(m.t(i18n.KeyLocationHint))
		if m.locNotice != "" {
			body += "\n" + errorStyle.Render(m.locNotice)
		}
		b.WriteString(modalStyle.Render(body))
		return b.String()
	}

	if m.location != "" {
		b.WriteString(mutedStyle.Render("📍 " + m.location))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(i18n.NameOf(m.lang) + " (ctrl+l)"))
	b.WriteString("\n\n")
	b.WriteString(accentStyle.Render(m.t(i18n.KeyGetStarted)))
	return b.String()
}

func (m Model) wrap(s string) string {
	if m.width <= 4 {
		return s
	}
	return lipgloss.NewStyle().Width(m.width - 2).Render(s)
}
