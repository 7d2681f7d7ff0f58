package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

// Listing colors
const (
	Foreground = "#D4D4D4" // Default light gray text
	InlineCode = "#EACD53" // Golden color for mnemonics in prose
	Dim        = "#4F4F4F" // Offsets
	ErrorRed   = "#FF5F5F" // Listing failures
)

// Listing column styles shared by the plain listing and the viewer.
var (
	OffsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Dim))
	BytesStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex()))
	RawStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Cheeky.Hex()))
	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Malibu.Hex())).Bold(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ErrorRed)).Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(charmtone.Zest.Hex())).
			Background(lipgloss.Color(charmtone.Charple.Hex())).
			Bold(true).
			Padding(0, 1)
	StatusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex()))
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	NormalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
