// Package output provides CLI output formatting: a status writer with
// optional color and text/JSON formatters for search results and index
// listings.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles used when writing to a terminal.
var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	stylePath    = lipgloss.NewStyle().Bold(true)
	styleScore   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Writer provides formatted output for CLI commands.
type Writer struct {
	out      io.Writer
	useColor bool
}

// New creates a Writer. Color is enabled only when out is a terminal.
func New(out io.Writer) *Writer {
	useColor := false
	if f, ok := out.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd())
	}
	return &Writer{out: out, useColor: useColor}
}

// Printf writes a formatted line.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}

// Success writes a success line.
func (w *Writer) Success(format string, args ...any) {
	w.styled(styleSuccess, format, args...)
}

// Warning writes a warning line.
func (w *Writer) Warning(format string, args ...any) {
	w.styled(styleWarning, format, args...)
}

// Error writes an error line.
func (w *Writer) Error(format string, args ...any) {
	w.styled(styleError, format, args...)
}

// Newline writes an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

func (w *Writer) styled(style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.useColor {
		msg = style.Render(msg)
	}
	_, _ = fmt.Fprintln(w.out, msg)
}

func (w *Writer) path(s string) string {
	if w.useColor {
		return stylePath.Render(s)
	}
	return s
}

func (w *Writer) score(s string) string {
	if w.useColor {
		return styleScore.Render(s)
	}
	return s
}
