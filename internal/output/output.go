// Package output handles CLI output formatting including move lines, verbose mode and progress indicators.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Color modes, matching the output.color configuration values.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
	Color     string    // auto, always or never (default: auto)
}

// Output handles formatted output with verbose and progress support.
type Output struct {
	config          Config
	errStyle        lipgloss.Style
	dimStyle        lipgloss.Style
	progressActive  bool
	progressTotal   int
	progressCurrent int
	progressMu      sync.Mutex
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	if config.Color == "" {
		config.Color = ColorAuto
	}

	r := lipgloss.NewRenderer(config.ErrWriter)
	switch {
	case config.Color == ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case config.Color == ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case !config.IsTTY:
		r.SetColorProfile(termenv.Ascii)
	}

	return &Output{
		config:   config,
		errStyle: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}).Bold(true),
		dimStyle: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#A8A8A8"}),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Move reports a completed move as "<src> -> <dst>".
// The line is never styled so it stays parseable.
func (o *Output) Move(src, dst string) {
	o.clearProgressLine()
	fmt.Fprintf(o.config.Writer, "%s -> %s\n", src, dst)
}

// Planned reports a move that a dry run would perform.
func (o *Output) Planned(src, dst string) {
	o.clearProgressLine()
	fmt.Fprintf(o.config.Writer, "would move: %s -> %s\n", src, dst)
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.clearProgressLine()
	fmt.Fprint(o.config.Writer, withNewline(fmt.Sprintf(format, args...)))
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.clearProgressLine()
	fmt.Fprint(o.config.Writer, withNewline(fmt.Sprintf(format, args...)))
}

// Hint prints a dimmed secondary message to stderr.
func (o *Output) Hint(format string, args ...interface{}) {
	o.clearProgressLine()
	msg := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	fmt.Fprint(o.config.ErrWriter, o.dimStyle.Render(msg)+"\n")
}

// Error prints an error message to stderr behind an "error:" prefix.
func (o *Output) Error(format string, args ...interface{}) {
	o.clearProgressLine()
	msg := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	fmt.Fprint(o.config.ErrWriter, o.errStyle.Render("error:")+" "+msg+"\n")
}

func withNewline(msg string) string {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return msg
}

// clearProgressLine clears the current progress line if active.
func (o *Output) clearProgressLine() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progressActive && o.config.IsTTY {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
	}
}

// StartProgress begins a progress indicator session.
func (o *Output) StartProgress(total int) {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.progressActive = true
	o.progressTotal = total
	o.progressCurrent = 0
}

// UpdateProgress updates the progress indicator.
func (o *Output) UpdateProgress(current int, message string) {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressCurrent = current
	progressMsg := fmt.Sprintf("\rMoving file %d/%d...", current, o.progressTotal)
	if message != "" {
		progressMsg = fmt.Sprintf("\r%s %d/%d...", message, current, o.progressTotal)
	}
	fmt.Fprint(o.config.Writer, progressMsg)
}

// EndProgress clears the progress indicator.
func (o *Output) EndProgress() {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressActive = false
	fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}
