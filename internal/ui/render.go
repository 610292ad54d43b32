package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/secwise/kbsearch/internal/cache"
	"github.com/secwise/kbsearch/internal/search"
)

// snippetLength is the maximum rendered content length per result.
const snippetLength = 160

// Renderer writes search output to a single destination.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer picks styled or plain output for the writer. NO_COLOR and
// non-TTY destinations force plain mode.
func NewRenderer(out io.Writer) *Renderer {
	styles := NoColorStyles()
	if isTTY(out) && !noColor() {
		styles = DefaultStyles()
	}
	return &Renderer{out: out, styles: styles}
}

// Results renders a ranked result list.
func (r *Renderer) Results(query string, results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(r.out, r.styles.Dim.Render("no results for: ")+query)
		return
	}

	fmt.Fprintln(r.out, r.styles.Header.Render(fmt.Sprintf("%d results for %q", len(results), query)))
	for i, res := range results {
		fmt.Fprintf(r.out, "%s %s %s\n",
			r.styles.Title.Render(fmt.Sprintf("%2d.", i+1)),
			r.styles.Score.Render(fmt.Sprintf("%.4f", res.Score)),
			r.styles.Tag.Render("["+string(res.Origin)+"]"))
		if res.Source != "" {
			fmt.Fprintf(r.out, "    %s\n", r.styles.Source.Render(res.Source))
		}
		fmt.Fprintf(r.out, "    %s\n", r.styles.Snippet.Render(snippet(res.Content)))
	}
}

// Stats renders an engine statistics snapshot.
func (r *Renderer) Stats(stats search.Stats, cacheStats cache.Stats) {
	fmt.Fprintln(r.out, r.styles.Header.Render("engine"))
	fmt.Fprintf(r.out, "  documents:    %d\n", stats.DocumentCount)
	fmt.Fprintf(r.out, "  vocabulary:   %d terms\n", stats.VocabularySize)
	fmt.Fprintf(r.out, "  avg doc len:  %.2f tokens\n", stats.AvgDocLength)
	fmt.Fprintf(r.out, "  weight:       %.2f\n", stats.SemanticWeight)
	fmt.Fprintf(r.out, "  semantic:     %v\n", stats.SemanticEnabled)

	fmt.Fprintln(r.out, r.styles.Header.Render("cache"))
	fmt.Fprintf(r.out, "  entries:      %d / %d\n", cacheStats.Size, cacheStats.Capacity)
	fmt.Fprintf(r.out, "  expired:      %d\n", cacheStats.Expired)
	fmt.Fprintf(r.out, "  age <1h:      %d\n", cacheStats.Ages.UnderHour)
	fmt.Fprintf(r.out, "  age 1-6h:     %d\n", cacheStats.Ages.OneToSix)
	fmt.Fprintf(r.out, "  age 6-24h:    %d\n", cacheStats.Ages.SixToDay)
	fmt.Fprintf(r.out, "  age >24h:     %d\n", cacheStats.Ages.OverDay)
}

// Warning renders a warning line.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.out, r.styles.Warning.Render("warning: ")+msg)
}

// snippet trims content to one display line.
func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) > snippetLength {
		return string(runes[:snippetLength]) + "…"
	}
	return content
}

// isTTY checks if the writer is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// noColor honors the NO_COLOR convention.
func noColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
