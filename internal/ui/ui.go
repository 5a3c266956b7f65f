package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4") // Purple
	secondaryColor = lipgloss.Color("#00D9FF") // Cyan
	successColor   = lipgloss.Color("#04B575") // Green
	errorColor     = lipgloss.Color("#FF5F87") // Pink/Red
	warningColor   = lipgloss.Color("#FFAF00") // Orange
	mutedColor     = lipgloss.Color("#626262") // Gray
	accentColor    = lipgloss.Color("#FFD700") // Gold

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1).
			MarginBottom(1).
			PaddingLeft(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor).
			MarginTop(1).
			PaddingLeft(1)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	checkmark = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true).
			SetString("✓")

	cross = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true).
		SetString("✗")

	arrow = lipgloss.NewStyle().
		Foreground(secondaryColor).
		SetString("→")

	dot = lipgloss.NewStyle().
		Foreground(mutedColor).
		SetString("•")

	star = lipgloss.NewStyle().
		Foreground(accentColor).
		SetString("★")

	stepStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(lipgloss.Color("#FAFAFA"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)
)

var (
	out     io.Writer = os.Stdout
	verbose bool
)

// SetOutput redirects all terminal output, e.g. to silence it in tests
func SetOutput(w io.Writer) {
	out = w
}

// SetVerbose turns on per-step output
func SetVerbose(v bool) {
	verbose = v
}

func writeLine(s string) {
	fmt.Fprintln(out, s)
}

// PrintTitle prints a major title (for app name or major sections)
func PrintTitle(title string) {
	writeLine(titleStyle.Render("╭─ " + title + " ─╮"))
}

// PrintHeader prints a section header
func PrintHeader(title string) {
	writeLine(headerStyle.Render("\n▸ " + title))
}

// PrintStep prints a step with indentation
func PrintStep(step string) {
	writeLine(stepStyle.Render(arrow.String() + " " + step))
}

// PrintItem prints an item in a list
func PrintItem(item string) {
	writeLine(itemStyle.Render(dot.String() + " " + item))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	writeLine(stepStyle.Render(checkmark.String() + " " + successStyle.Render(message)))
}

// PrintError prints an error message
func PrintError(message string) {
	writeLine(stepStyle.Render(cross.String() + " " + errorStyle.Render(message)))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	writeLine(stepStyle.Render("⚠ " + warningStyle.Render(message)))
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	writeLine(stepStyle.Render(infoStyle.Render(message)))
}

// PrintHighlight prints highlighted text
func PrintHighlight(message string) {
	writeLine(stepStyle.Render(star.String() + " " + highlightStyle.Render(message)))
}

// PrintBox prints text in a rounded box
func PrintBox(content string) {
	writeLine(boxStyle.Render(content))
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	writeLine(infoStyle.Render(strings.Repeat("─", 45)))
}

// PrintKeyValue prints a key-value pair with nice formatting
func PrintKeyValue(key, value string) {
	writeLine(stepStyle.Render(keyStyle.Render(key+":") + " " + value))
}

// Column widths of part tables: file, material, volumes, reflectors
var tableWidths = []int{30, 20, 15, 25}

func tableCells(columns []string, truncate func(string, int) string) string {
	cells := make([]string, 0, len(columns))
	for i, col := range columns {
		if i >= len(tableWidths) {
			break
		}
		width := tableWidths[i]
		if len(col) > width {
			col = truncate(col, width)
		} else {
			col += strings.Repeat(" ", width-len(col))
		}
		cells = append(cells, col)
	}
	return strings.Join(cells, " │ ")
}

// PrintTableRow prints a formatted table row with columns
func PrintTableRow(columns ...string) {
	if len(columns) == 0 {
		return
	}
	row := tableCells(columns, func(col string, width int) string {
		return col[:width-3] + "..."
	})
	writeLine(stepStyle.Render(row))
}

// PrintTableHeader prints a table header
func PrintTableHeader(headers ...string) {
	row := tableCells(headers, func(col string, width int) string {
		return col[:width]
	})
	writeLine(stepStyle.Render(keyStyle.Render(row)))

	var rules []string
	for i := range headers {
		if i >= len(tableWidths) {
			break
		}
		rules = append(rules, strings.Repeat("─", tableWidths[i]))
	}
	writeLine(stepStyle.Render(infoStyle.Render(strings.Join(rules, "─┼─"))))
}

// IsVerbose checks if verbose output is enabled
func IsVerbose() bool {
	return verbose || os.Getenv("CI") != ""
}
