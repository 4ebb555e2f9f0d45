package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abramin/wattson/internal/dialog"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// KindColor returns the style for a turn's kind marker: green for a
// completed turn, yellow while waiting on the user, red for an upstream
// failure, dim otherwise.
func KindColor(kind dialog.Kind) lipgloss.Style {
	switch kind {
	case "":
		return StyleGreen
	case dialog.KindAmbiguousIndicator, dialog.KindMissingSlot:
		return StyleYellow
	case dialog.KindUpstreamFailure:
		return StyleRed
	default:
		return StyleDim
	}
}

// KindIndicator returns a colored status marker for a turn, such as
// "● 待选择". A completed turn carries no kind and gets the green marker.
func KindIndicator(kind dialog.Kind) string {
	return KindColor(kind).Render("● " + kindLabel(kind))
}

func kindLabel(kind dialog.Kind) string {
	switch kind {
	case dialog.KindAmbiguousIndicator:
		return "待选择"
	case dialog.KindMissingSlot:
		return "待补充"
	case dialog.KindUpstreamFailure:
		return "查询失败"
	case dialog.KindMalformedTurn:
		return "未理解"
	default:
		return "已完成"
	}
}

// Header renders a section header with the orange header style and an
// underline. Width is measured in terminal cells so CJK titles line up.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
