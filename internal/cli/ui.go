package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // selection, titles
	colorGreen  = lipgloss.Color("35")  // success, valid drop
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors, invalid drop
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // free cells, hints
)

// widgetColors cycles per widget type in the grid view.
var widgetColors = []lipgloss.Color{
	lipgloss.Color("75"), lipgloss.Color("214"), lipgloss.Color("114"), lipgloss.Color("168"),
	lipgloss.Color("140"), lipgloss.Color("180"), lipgloss.Color("109"), lipgloss.Color("111"),
}

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	// Edit mode badge.
	styleEditOn  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleEditOff = lipgloss.NewStyle().Foreground(colorGray)

	// Grid view.
	styleFreeCell    = lipgloss.NewStyle().Foreground(colorDim)
	stylePlaceholder = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleInvalidDrop = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleHighlighted = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconEditing = "editing"
	iconLocked  = "locked"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints layout statistics on a single line.
func printStats(widgets, rows, cols int, backend string) {
	parts := []string{
		fmt.Sprintf("%d widgets", widgets),
		fmt.Sprintf("%d×%d grid", cols, rows),
	}
	if backend != "" {
		parts = append(parts, backend)
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line)
}

// editBadge renders the edit-mode indicator.
func editBadge(editing bool) string {
	if editing {
		return styleEditOn.Render(iconEditing)
	}
	return styleEditOff.Render(iconLocked)
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
