package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	m.refreshFormView()
	m.refreshPreviewIfDirty()

	form := formColumnStyle.Width(m.layout.formWidth).Render(m.formView.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, form, m.previewPanel())

	parts := []string{m.heroView(), body}
	if m.state.Error != "" {
		parts = append(parts, errorStyle.Render(m.state.Error))
	}
	parts = append(parts, m.sessionMeterView(), m.keyLegendView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		heroTitleStyle.Render(heroTitle),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) previewPanel() string {
	status := helperStyle.Render("Press Ctrl+S to brainstorm a revision.")
	if m.state.Loading {
		status = helperStyle.Render(fmt.Sprintf("%s Brainstorming…", m.spinner.View()))
	}
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		sectionHeaderStyle.Render("Preview"),
		status,
		m.preview.View(),
	)
	return previewBoxStyle.Width(m.layout.previewWidth - 2).Render(content)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n")
}

func (m *model) focusLabel() string {
	slot := slotFor(m.focus)
	switch {
	case slot.article:
		return "Article title"
	case slot.content:
		return fmt.Sprintf("Section %d content", slot.section+1)
	default:
		return fmt.Sprintf("Section %d title", slot.section+1)
	}
}

func (m *model) sessionMeterView() string {
	stats := []string{
		fmt.Sprintf("Sections %d", len(m.sections)),
		m.focusLabel(),
	}
	switch {
	case m.state.Loading:
		stats = append(stats, fmt.Sprintf("Waiting on %d", m.state.InFlight()))
	case m.state.Completion != "":
		stats = append(stats, "Revision ready")
	default:
		stats = append(stats, "Draft")
	}
	if m.config.Client != nil {
		stats = append(stats, m.config.Client.Endpoint())
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.activeJobs) == 0 && m.lastJob == nil {
		return nil
	}
	ids := make([]string, 0, len(m.activeJobs))
	for id := range m.activeJobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	badges := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		badges = append(badges, fmt.Sprintf("%s %s", id, m.activeJobs[id].Status))
	}
	if len(ids) == 0 && m.lastJob != nil {
		badge := fmt.Sprintf("%s %s in %s", m.lastJob.ID, m.lastJob.Status, m.lastJob.Duration.Round(10*time.Millisecond))
		badges = append(badges, badge)
	}
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Tab", "Next field"},
		{"Shift+Tab", "Previous field"},
		{"Ctrl+N", "Add section"},
		{"Ctrl+S", "Submit"},
		{"PgUp/PgDn", "Scroll preview"},
		{"Ctrl+C", "Quit"},
	}
	cells := make([]string, 0, len(hints))
	for _, hint := range hints {
		key := keyStyle.Render(hint.Key)
		desc := keyDescStyle.Render(" " + hint.Description + " ")
		cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
