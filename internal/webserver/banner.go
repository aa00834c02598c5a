package webserver

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
)

// Name is the server name shown in the startup banner.
const Name = "Century Old Tunes Web Server"

// PrintBanner writes the startup banner for cfg to w. Pass color.Output as w
// to get colors on a terminal.
func PrintBanner(w io.Writer, cfg Config) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(w, "🎵 %s\n", Name)
	fmt.Fprintf(w, "📁 Serving %s/ directory\n", filepath.Base(cfg.RootDir))
	fmt.Fprint(w, "🌐 Open: ")
	cyan.Fprintln(w, cfg.URL())
	fmt.Fprint(w, "⏹️  Press Ctrl+C to stop\n\n")
}

// PrintShutdown writes the shutdown message to w.
func PrintShutdown(w io.Writer) {
	fmt.Fprintln(w, "\n👋 Server stopped")
}
