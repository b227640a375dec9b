package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"
)

// spacesPerRow limits the width of the space grid.
const spacesPerRow = 4

// RenderText lays out page for a terminal. A width of zero means unbounded.
func RenderText(page Page, theme Theme, width int) string {
	var sections []string

	sections = append(sections, renderHeader(page, theme))

	if page.Indicator != nil {
		sections = append(sections, renderIndicator(page.Indicator, theme))
	}
	if page.Data != nil {
		sections = append(sections,
			renderSummary(page.Data.Summary, theme),
			renderSpaces(page.Data.Spaces, theme),
			renderDevice(page.Data.Device, theme),
			renderActivity(page.Data, theme),
		)
	}

	sections = append(sections, lipgloss.NewStyle().Foreground(theme.FaintText).Render(Footer))

	out := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if width > 0 {
		out = lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	return out
}

func renderHeader(page Page, theme Theme) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Title).Render(Title)
	subtitle := lipgloss.NewStyle().Foreground(theme.FaintText).Render(Subtitle)

	statusColor := theme.Disconnected
	if page.Connected {
		statusColor = theme.Connected
	}
	status := lipgloss.NewStyle().Bold(true).Foreground(statusColor).Render("● " + page.Status)
	if page.LastUpdate != "" {
		status += lipgloss.NewStyle().Foreground(theme.FaintText).Render("  Last update: " + page.LastUpdate)
	}

	return lipgloss.NewStyle().MarginBottom(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, subtitle, status),
	)
}

func renderIndicator(ind *Indicator, theme Theme) string {
	color := theme.Disconnected
	if ind.Kind == IndicatorWaiting {
		color = theme.Waiting
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Padding(0, 2).
		MarginBottom(1).
		Render(ind.Text)
}

func renderSummary(tiles []Tile, theme Theme) string {
	rendered := make([]string, 0, len(tiles))
	for i, t := range tiles {
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(t.Label),
			lipgloss.NewStyle().Bold(true).Render(t.Value),
			t.Caption,
		)
		rendered = append(rendered, lipgloss.NewStyle().
			Background(theme.TileColor(i)).
			Foreground(theme.TileText).
			Padding(0, 2).
			MarginRight(1).
			Width(20).
			Render(body))
	}
	return lipgloss.NewStyle().MarginBottom(1).Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func renderSpaces(spaces []SpaceTile, theme Theme) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.Title).Render("Parking Spots Status")

	var rows []string
	var row []string
	for _, s := range spaces {
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(s.Name),
			"Status   "+s.Status,
			"Distance "+s.Distance,
		)
		row = append(row, lipgloss.NewStyle().
			Background(theme.SpaceColor(s.Occupied)).
			Foreground(theme.TileText).
			Padding(0, 2).
			MarginRight(1).
			Width(22).
			Render(body))

		if len(row) == spacesPerRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return lipgloss.NewStyle().MarginBottom(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, append([]string{heading}, rows...)...),
	)
}

func renderDevice(d DevicePanel, theme Theme) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.Title).Render("Device Information")

	table := uitable.New()
	table.AddRow("Device ID:", d.Device)
	table.AddRow("MQTT Topic:", d.Topic)

	return lipgloss.NewStyle().MarginBottom(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, heading,
			lipgloss.NewStyle().Foreground(theme.NormalText).Render(table.String())),
	)
}

func renderActivity(data *DataSection, theme Theme) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.Title).Render("Recent Activity")

	if data.EmptyActivity != "" {
		return lipgloss.NewStyle().MarginBottom(1).Render(lipgloss.JoinVertical(lipgloss.Left, heading,
			lipgloss.NewStyle().Foreground(theme.FaintText).Render(data.EmptyActivity)))
	}

	table := uitable.New()
	table.Separator = "  "
	table.AddRow("TIME", "FREE", "OCCUPIED", "AVAILABILITY")
	for _, a := range data.Activity {
		table.AddRow(a.Time, fmt.Sprint(a.Free), fmt.Sprint(a.Occupied), a.Availability)
	}

	body := lipgloss.NewStyle().Foreground(theme.NormalText).Render(strings.TrimRight(table.String(), "\n"))
	return lipgloss.NewStyle().MarginBottom(1).Render(lipgloss.JoinVertical(lipgloss.Left, heading, body))
}
