package view

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette of the terminal renderer. Colors are ANSI
// 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Title      lipgloss.Color
	Border     lipgloss.Color

	Connected    lipgloss.Color
	Disconnected lipgloss.Color
	Waiting      lipgloss.Color

	// Summary tile backgrounds, in Build's tile order.
	TileColors [4]lipgloss.Color

	SpaceFree     lipgloss.Color
	SpaceOccupied lipgloss.Color
	TileText      lipgloss.Color
}

// DefaultTheme mirrors the colors of the web dashboard.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	Title:      lipgloss.Color("255"),
	Border:     lipgloss.Color("240"),

	Connected:    lipgloss.Color("42"),
	Disconnected: lipgloss.Color("203"),
	Waiting:      lipgloss.Color("75"),

	TileColors: [4]lipgloss.Color{
		lipgloss.Color("28"),  // free
		lipgloss.Color("124"), // occupied
		lipgloss.Color("25"),  // availability
		lipgloss.Color("55"),  // total
	},

	SpaceFree:     lipgloss.Color("34"),
	SpaceOccupied: lipgloss.Color("160"),
	TileText:      lipgloss.Color("255"),
}

// TileColor returns the background for summary tile i.
func (t Theme) TileColor(i int) lipgloss.Color {
	if i < 0 || i >= len(t.TileColors) {
		return t.Border
	}
	return t.TileColors[i]
}

// SpaceColor returns the background for a space tile.
func (t Theme) SpaceColor(occupied bool) lipgloss.Color {
	if occupied {
		return t.SpaceOccupied
	}
	return t.SpaceFree
}
