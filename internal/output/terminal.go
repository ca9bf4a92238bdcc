package output

import (
	"os"

	"golang.org/x/term"
)

// Terminal holds what the writer needs to know about stdout.
type Terminal struct {
	IsTTY   bool
	NoColor bool
	Width   int
}

// DetectTerminal inspects stdout and the NO_COLOR and TERM variables.
func DetectTerminal() *Terminal {
	fd := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(fd)

	width := 80
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	_, noColor := os.LookupEnv("NO_COLOR")
	if os.Getenv("TERM") == "dumb" {
		noColor = true
	}

	return &Terminal{IsTTY: isTTY, NoColor: noColor, Width: width}
}

func (t *Terminal) ColorEnabled() bool {
	return t != nil && t.IsTTY && !t.NoColor
}

// SpinnersEnabled reports whether animated progress is allowed.
func (t *Terminal) SpinnersEnabled() bool {
	return t.ColorEnabled()
}

// Interactive reports whether prompts can be shown.
func (t *Terminal) Interactive() bool {
	return t != nil && t.IsTTY
}
