package ui

import "fmt"

// ANSI256 colours used by the eugenio CLI.
const (
	colorAccent = 74  // blue
	colorDone   = 71  // green
	colorWarn   = 179 // amber
	colorMuted  = 245 // medium gray
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) colour.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderDone returns s in green, used for checked items.
func RenderDone(s string) string { return paint(colorDone, s) }

// RenderWarn returns s in amber.
func RenderWarn(s string) string { return paint(colorWarn, s) }

// RenderMuted returns s in the muted (gray) colour.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// ForceNoColor disables colour output globally.
func ForceNoColor() {
	noColor = true
}
