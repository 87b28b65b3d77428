package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"     _            _        _   ",
	"  __| | ___   ___| | _____| |_ ",
	" / _` |/ _ \\ / __| |/ / _ \\ __|",
	"| (_| | (_) | (__|   <  __/ |_ ",
	" \\__,_|\\___/ \\___|_|\\_\\___|\\__|",
}

var bannerColors = []string{"#0ea5e9", "#14b8a6", "#22c55e", "#84cc16", "#eab308"}

// PrintBanner writes the docket banner, coloured when w is a colour-capable terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(p.Color(bannerColors[i%len(bannerColors)])))
	}
	fmt.Fprintln(w)
}
