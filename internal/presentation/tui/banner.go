package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the writ logo and version to w, colored when the
// terminal supports it.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" __      __  _ __  (_) |_ ", "#818cf8"},
		{" \\ \\ /\\ / / | '__| | | __|", "#a78bfa"},
		{"  \\ V  V /  | |    | | |_ ", "#c084fc"},
		{"   \\_/\\_/   |_|    |_|\\__|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  legal document wizards "+version).Faint())
	fmt.Fprintln(w)
}
