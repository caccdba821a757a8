package mcp

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/localfiles/internal/index"
)

// FormatSearchResults renders results as markdown for clients that only
// show text content.
func FormatSearchResults(query string, results []index.SearchResult) string {
	if len(results) == 0 {
		if strings.TrimSpace(query) == "" {
			return "No results found"
		}
		return fmt.Sprintf("No results found for \"%s\"", query)
	}

	var sb strings.Builder
	if strings.TrimSpace(query) == "" {
		sb.WriteString("## Search Results\n\n")
	} else {
		fmt.Fprintf(&sb, "## Search Results for \"%s\"\n\n", query)
	}
	fmt.Fprintf(&sb, "Found %d result", len(results))
	if len(results) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, r := range results {
		formatResult(&sb, i+1, r)
	}
	return sb.String()
}

func formatResult(sb *strings.Builder, num int, r index.SearchResult) {
	if r.Line > 0 {
		fmt.Fprintf(sb, "### %d. %s:%d (score: %.2f)\n", num, r.FilePath, r.Line, r.Score)
	} else {
		fmt.Fprintf(sb, "### %d. %s (score: %.2f)\n", num, r.FilePath, r.Score)
	}
	fmt.Fprintf(sb, "```\n%s\n```\n\n", r.Snippet)
}

// clampLimit ensures limit is within bounds.
func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}
