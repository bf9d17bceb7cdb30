package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/styles"
	"github.com/colonyops/fleetcheck/internal/fleet"
)

func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	sections := []string{
		m.headerView(),
		m.tabsView(),
		"",
		m.listView(),
		"",
		m.statusView(),
		helpView(m.keys.shortHelp()),
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.width > 0 && m.height > 0 {
		content = m.toasts.overlay(content, m.width, m.height)
	}
	return content
}

func (m Model) headerView() string {
	title := styles.TitleStyle.Render("fleetcheck")
	return title + " " + styles.MutedStyle.Render("driver "+m.session.DriverID)
}

func (m Model) tabsView() string {
	tabs := make([]string, 0, len(m.kinds))
	for i, k := range m.kinds {
		snap := m.session.Controller(k).Snapshot()
		label := fmt.Sprintf("%s %d/%d", kindTitle(k), snap.SelectedCount, snap.EligibleCount)
		if i == m.active {
			tabs = append(tabs, styles.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) listView() string {
	ctrl := m.controller()
	if ctrl == nil {
		return styles.MutedStyle.Render("Nothing to show")
	}

	items := ctrl.Items()
	if len(items) == 0 {
		if !m.loaded[ctrl.Kind()] {
			return m.spinner.View() + " Loading " + ctrl.Kind().Plural()
		}
		return styles.MutedStyle.Render("No " + ctrl.Kind().Plural())
	}

	statuses := ctrl.Statuses()
	cursor := m.cursors[ctrl.Kind()]

	rows := make([]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, renderRow(it, statuses.ItemEligible(it), i == cursor))
	}
	return strings.Join(rows, "\n")
}

func renderRow(it checkin.Item, eligible, current bool) string {
	marker := " "
	if current {
		marker = styles.IconCursor
	}

	icon := styles.IconUnchecked
	style := styles.ItemStyle
	switch {
	case !eligible:
		icon = styles.IconIneligible
		style = styles.IneligibleStyle
	case it.Selected:
		icon = styles.CheckedStyle.Render(styles.IconChecked)
	}

	status := it.Status
	if status == "" {
		status = "(none)"
	}

	when := ""
	if it.ScheduledAt != nil {
		when = " " + it.ScheduledAt.Local().Format("Jan 02 15:04")
	}

	line := fmt.Sprintf("%s %s %s%s %s", marker, icon, style.Render(it.Label()), styles.MutedStyle.Render(when), styles.MutedStyle.Render("["+status+"]"))
	if current {
		return styles.CursorRowStyle.Render(line)
	}
	return line
}

func (m Model) statusView() string {
	ctrl := m.controller()
	if ctrl == nil {
		return ""
	}

	var line string
	switch phase := ctrl.Phase(); {
	case phase == checkin.PhaseSubmitting:
		line = m.spinner.View() + " Checking in " + ctrl.Kind().Plural() + "..."
	case phase == checkin.PhaseRefreshing:
		line = m.spinner.View() + " Refreshing " + ctrl.Kind().Plural() + "..."
	case ctrl.LastError() != "":
		line = styles.ErrorStyle.Render(ctrl.LastError())
	case ctrl.LastResult() != nil:
		line = resultLine(ctrl.LastResult())
	default:
		snap := ctrl.Snapshot()
		line = styles.MutedStyle.Render(fmt.Sprintf("%d of %d selected", snap.SelectedCount, snap.EligibleCount))
	}

	if src := m.source(ctrl.Kind()); src != nil && src.Last().Stale {
		line += " " + styles.WarningStyle.Render(styles.IconOffline+" offline, cached list")
	}
	return styles.StatusBarStyle.Render(line)
}

func (m Model) source(kind checkin.Kind) *fleet.CachedSource {
	if m.session.Sources == nil {
		return nil
	}
	return m.session.Sources[kind]
}

func resultLine(res checkin.Result) string {
	switch res.(type) {
	case checkin.AllSucceeded:
		return styles.SuccessStyle.Render(res.Message())
	case checkin.PartialSuccess, checkin.NoSelection, checkin.AlreadyInProgress, checkin.Cancelled:
		return styles.WarningStyle.Render(res.Message())
	default:
		return styles.ErrorStyle.Render(res.Message())
	}
}

func kindTitle(k checkin.Kind) string {
	p := k.Plural()
	if p == "" {
		return p
	}
	return strings.ToUpper(p[:1]) + p[1:]
}
