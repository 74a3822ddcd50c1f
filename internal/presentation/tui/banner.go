package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the formflow banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __                       __ _               ", "#34d399"},
		{"  / _| ___  _ __ _ __ ___  / _| | _____      __", "#2dd4bf"},
		{" | |_ / _ \\| '__| '_ ` _ \\| |_| |/ _ \\ \\ /\\ / /", "#22d3ee"},
		{" |  _| (_) | |  | | | | | |  _| | (_) \\ V  V / ", "#38bdf8"},
		{" |_|  \\___/|_|  |_| |_| |_|_| |_|\\___/ \\_/\\_/  ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" v"+version).Faint())
	fmt.Fprintln(w)
}
