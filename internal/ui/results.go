package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/localfiles/internal/index"
)

// SearchRenderer displays search results.
type SearchRenderer struct {
	out    io.Writer
	styles Styles
}

// NewSearchRenderer creates a search result renderer.
func NewSearchRenderer(out io.Writer, noColor bool) *SearchRenderer {
	return &SearchRenderer{out: out, styles: GetStyles(noColor)}
}

// Render prints one block per result: path with line and score, then the
// snippet indented on a single line.
func (r *SearchRenderer) Render(resp *index.SearchResponse) error {
	if resp == nil || len(resp.Results) == 0 {
		_, _ = fmt.Fprintln(r.out, r.styles.Dim.Render("No results."))
		return nil
	}

	for i, res := range resp.Results {
		loc := res.FilePath
		if res.Line > 0 {
			loc = fmt.Sprintf("%s:%d", res.FilePath, res.Line)
		}
		_, _ = fmt.Fprintf(r.out, "%s %s %s\n",
			r.styles.Label.Render(fmt.Sprintf("%2d.", i+1)),
			r.styles.Path.Render(loc),
			r.styles.Score.Render(fmt.Sprintf("(%.2f)", res.Score)))
		_, _ = fmt.Fprintf(r.out, "    %s\n", flatten(res.Snippet))
	}

	_, _ = fmt.Fprintf(r.out, "\n%s\n", r.styles.Dim.Render(fmt.Sprintf("%d result(s)", resp.TotalCount)))
	return nil
}

// RenderJSON outputs the response as JSON.
func (r *SearchRenderer) RenderJSON(resp *index.SearchResponse) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// flatten collapses runs of whitespace so a snippet fits on one line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
