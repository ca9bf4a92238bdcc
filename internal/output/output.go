// Package output renders command results for a terminal or a pipe. Logs go
// to stderr through zap; everything here is meant for the user.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

const (
	CheckMark   = "✓"
	XMark       = "✗"
	WarningMark = "⚠"
	InfoMark    = "ℹ"
	Bullet      = "•"
)

type Writer struct {
	Out      io.Writer
	Err      io.Writer
	JSON     bool
	terminal *Terminal

	successColor *color.Color
	errorColor   *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	mutedColor   *color.Color
	titleColor   *color.Color
}

// Default returns a Writer for stdout and stderr.
func Default() *Writer {
	return NewWriter(os.Stdout, os.Stderr, DetectTerminal())
}

func NewWriter(out, errOut io.Writer, term *Terminal) *Writer {
	if term == nil {
		term = &Terminal{}
	}

	w := &Writer{
		Out:          out,
		Err:          errOut,
		terminal:     term,
		successColor: color.New(color.FgGreen),
		errorColor:   color.New(color.FgRed),
		warningColor: color.New(color.FgYellow),
		infoColor:    color.New(color.FgCyan),
		mutedColor:   color.New(color.FgHiBlack),
		titleColor:   color.New(color.Bold),
	}

	if !term.ColorEnabled() {
		color.NoColor = true
	}

	return w
}

func (w *Writer) Terminal() *Terminal {
	return w.terminal
}

func (w *Writer) Print(format string, args ...any) {
	fmt.Fprintf(w.Out, format, args...)
}

func (w *Writer) Println(args ...any) {
	fmt.Fprintln(w.Out, args...)
}

// PrintJSON writes v as indented JSON.
func (w *Writer) PrintJSON(v any) error {
	enc := json.NewEncoder(w.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (w *Writer) writeStatus(out io.Writer, tone *color.Color, prefix, message string) {
	if w.terminal.ColorEnabled() {
		tone.Fprint(out, prefix+" ")
		fmt.Fprintln(out, message)
		return
	}
	fmt.Fprintln(out, prefix+" "+message)
}

func (w *Writer) Success(format string, args ...any) {
	w.writeStatus(w.Out, w.successColor, CheckMark, fmt.Sprintf(format, args...))
}

// Failure writes to stderr.
func (w *Writer) Failure(format string, args ...any) {
	w.writeStatus(w.Err, w.errorColor, XMark, fmt.Sprintf(format, args...))
}

func (w *Writer) Warning(format string, args ...any) {
	w.writeStatus(w.Out, w.warningColor, WarningMark, fmt.Sprintf(format, args...))
}

func (w *Writer) Info(format string, args ...any) {
	w.writeStatus(w.Out, w.infoColor, InfoMark, fmt.Sprintf(format, args...))
}

func (w *Writer) Muted(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.terminal.ColorEnabled() {
		w.mutedColor.Fprintln(w.Out, msg)
		return
	}
	fmt.Fprintln(w.Out, msg)
}

// Title writes a section heading.
func (w *Writer) Title(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.terminal.ColorEnabled() {
		w.titleColor.Fprintln(w.Out, msg)
		return
	}
	fmt.Fprintln(w.Out, msg)
}

// Spinner wraps briandowns/spinner. On a pipe it degrades to plain lines.
type Spinner struct {
	spinner  *spinner.Spinner
	message  string
	writer   *Writer
	disabled bool
}

func (w *Writer) Spinner(message string) *Spinner {
	if w.JSON || !w.terminal.SpinnersEnabled() {
		return &Spinner{disabled: true, message: message, writer: w}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w.Out))
	s.Suffix = " " + message

	return &Spinner{spinner: s, message: message, writer: w}
}

func (s *Spinner) Start() {
	if s.disabled {
		if !s.writer.JSON {
			s.writer.Print("%s...\n", s.message)
		}
		return
	}
	s.spinner.Start()
}

func (s *Spinner) Stop() {
	if !s.disabled {
		s.spinner.Stop()
	}
}

// UpdateMessage changes the text next to the spinner. Disabled spinners
// print the new message only when it differs.
func (s *Spinner) UpdateMessage(message string) {
	if message == s.message {
		return
	}
	s.message = message
	if s.disabled {
		if !s.writer.JSON {
			s.writer.Muted("%s", message)
		}
		return
	}
	s.spinner.Lock()
	s.spinner.Suffix = " " + message
	s.spinner.Unlock()
}

func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	if message != "" && !s.writer.JSON {
		s.writer.Success("%s", message)
	}
}

func (s *Spinner) StopWithFailure(message string) {
	s.Stop()
	if message != "" {
		s.writer.Failure("%s", message)
	}
}
