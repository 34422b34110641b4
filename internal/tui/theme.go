package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the colour palette of the viewer.
type Theme struct {
	Bg        lipgloss.Color
	Trace     lipgloss.Color // plotted samples and axes
	TraceDim  lipgloss.Color
	Selection lipgloss.Color // drag-to-zoom box
	Highlight lipgloss.Color // sample under cursor
	Follow    lipgloss.Color // follow-live hint
	Border    lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	PanelBg   lipgloss.Color
	PanelText lipgloss.Color
}

// DefaultTheme is yellow on slate, like a scope trace.
var DefaultTheme = Theme{
	Bg:        lipgloss.Color("#020617"),
	Trace:     lipgloss.Color("#fde047"),
	TraceDim:  lipgloss.Color("#854d0e"),
	Selection: lipgloss.Color("#fb923c"),
	Highlight: lipgloss.Color("#f8fafc"),
	Follow:    lipgloss.Color("#38bdf8"),
	Border:    lipgloss.Color("#475569"),
	Error:     lipgloss.Color("#dc2626"),
	Muted:     lipgloss.Color("#64748b"),
	PanelBg:   lipgloss.Color("#d1d5db"),
	PanelText: lipgloss.Color("#000000"),
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title     lipgloss.Style
	Trace     lipgloss.Style
	Dim       lipgloss.Style
	Selection lipgloss.Style
	Highlight lipgloss.Style
	Follow    lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Rule      lipgloss.Style
	Panel     lipgloss.Style
	PanelHead lipgloss.Style
	Key       lipgloss.Style
}

// NewStyles builds the styles for t.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Foreground(t.Trace).Bold(true),
		Trace:     lipgloss.NewStyle().Foreground(t.Trace),
		Dim:       lipgloss.NewStyle().Foreground(t.TraceDim),
		Selection: lipgloss.NewStyle().Foreground(t.Selection),
		Highlight: lipgloss.NewStyle().Foreground(t.Highlight).Bold(true),
		Follow:    lipgloss.NewStyle().Foreground(t.Follow).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(t.Muted),
		Label:     lipgloss.NewStyle().Foreground(t.Trace).Bold(true),
		Value:     lipgloss.NewStyle().Foreground(t.Trace),
		Rule:      lipgloss.NewStyle().Foreground(t.Border),
		Panel: lipgloss.NewStyle().
			Background(t.PanelBg).
			Foreground(t.PanelText).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
		PanelHead: lipgloss.NewStyle().Bold(true).Foreground(t.PanelText).Background(t.PanelBg),
		Key:       lipgloss.NewStyle().Bold(true).Foreground(t.Follow),
	}
}
