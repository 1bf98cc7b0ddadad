package textview

import "github.com/charmbracelet/lipgloss"

// MarkerGlyph and MarkerGlyphUnverified are the gutter glyphs for
// verified and unverified breakpoints.
const (
	MarkerGlyph           = "●"
	MarkerGlyphUnverified = "○"
)

// Style controls the view's rendering.
type Style struct {
	Gutter        lipgloss.Style
	LineNum       lipgloss.Style
	LineNumActive lipgloss.Style

	Marker           lipgloss.Style
	MarkerUnverified lipgloss.Style

	Text        lipgloss.Style
	Cursor      lipgloss.Style
	CurrentLine lipgloss.Style
}

func DefaultStyle() Style {
	gutter := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return Style{
		Gutter:           gutter,
		LineNum:          gutter,
		LineNumActive:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		Marker:           lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		MarkerUnverified: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Text:             lipgloss.NewStyle(),
		Cursor:           lipgloss.NewStyle().Reverse(true),
		CurrentLine:      lipgloss.NewStyle().Background(lipgloss.Color("58")),
	}
}
