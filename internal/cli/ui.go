package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// Styles shared by the commands.
var (
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleError     = lipgloss.NewStyle().Foreground(colorFail)

	styleValue = lipgloss.NewStyle().Foreground(colorText)
	styleKey   = lipgloss.NewStyle().Foreground(colorMuted).Width(10)
)

// status is one kind of status line: a colored icon followed by the message
// passed through text.
type status struct {
	icon string
	mark lipgloss.Style
	text func(...string) string
}

var (
	statusSuccess = status{"✓", lipgloss.NewStyle().Foreground(colorOK), plain}
	statusWarning = status{"!", lipgloss.NewStyle().Foreground(colorWarn), lipgloss.NewStyle().Foreground(colorWarn).Render}
	statusInfo    = status{"›", lipgloss.NewStyle().Foreground(colorMuted), plain}
	statusError   = status{"✗", lipgloss.NewStyle().Foreground(colorFail), StyleError.Render}
)

func (s status) print(w io.Writer, msg string) {
	fmt.Fprintln(w, s.mark.Render(s.icon)+" "+s.text(msg))
}

// swatch renders a block color as a small filled square.
func swatch(color string) string {
	if color == "" {
		return " "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

func printSuccess(w io.Writer, format string, args ...any) {
	statusSuccess.print(w, fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	statusWarning.print(w, fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	statusInfo.print(w, fmt.Sprintf(format, args...))
}

// PrintError prints msg in the error style.
func PrintError(w io.Writer, msg string) {
	statusError.print(w, msg)
}

// printFile reports a written output file.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

func plain(strs ...string) string { return strings.Join(strs, "") }
