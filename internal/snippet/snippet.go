// Package snippet locates query terms in document text and cuts short
// excerpts around the first match without splitting UTF-8 sequences.
package snippet

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ellipsis wraps every excerpt on both sides.
const Ellipsis = "..."

// Terms splits a free-text query into highlight terms: whitespace-separated
// words that contain no ':' (field-qualified terms never highlight).
func Terms(text string) []string {
	var terms []string
	for _, w := range strings.Fields(text) {
		if !strings.Contains(w, ":") {
			terms = append(terms, w)
		}
	}
	return terms
}

// FindMatchLine returns the 1-based line of the first term (in the given
// order) that occurs anywhere in content, ignoring case.
func FindMatchLine(content string, terms []string) (int, bool) {
	pos, ok := firstMatch(content, terms)
	if !ok {
		return 0, false
	}
	return strings.Count(content[:pos], "\n") + 1, true
}

// Extract returns about window bytes of content centred on the first
// matching term, trimmed and wrapped in ellipses. With no match the
// excerpt starts at the beginning of content.
func Extract(content string, terms []string, window int) string {
	pos, _ := firstMatch(content, terms)
	if window < 0 {
		window = 0
	}
	half := window / 2

	start := max(pos-half, 0)
	end := min(pos+half, len(content))
	start = floorRuneStart(content, start)
	end = ceilRuneStart(content, end)

	return Ellipsis + strings.TrimSpace(content[start:end]) + Ellipsis
}

// firstMatch returns the byte offset in content of the first term that
// occurs, trying terms in order.
func firstMatch(content string, terms []string) (int, bool) {
	if len(terms) == 0 {
		return 0, false
	}
	folded := newFoldedText(content)
	for _, term := range terms {
		if pos, ok := folded.index(strings.ToLower(term)); ok {
			return pos, true
		}
	}
	return 0, false
}

// foldedText is a lowercased view of a string that can report match
// offsets in the original. Lowercasing can change the byte length of some
// runes, so offsets are mapped back whenever that happens.
type foldedText struct {
	lower   string
	offsets []int // lower byte offset -> original byte offset; nil when aligned
}

func newFoldedText(s string) foldedText {
	if isCaseAligned(s) {
		return foldedText{lower: strings.ToLower(s)}
	}

	var sb strings.Builder
	sb.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		lr := unicode.ToLower(r)
		if r == utf8.RuneError {
			lr = r
		}
		n := utf8.RuneLen(lr)
		if n < 0 {
			lr, n = utf8.RuneError, utf8.RuneLen(utf8.RuneError)
		}
		for k := 0; k < n; k++ {
			offsets = append(offsets, i)
		}
		sb.WriteRune(lr)
	}
	offsets = append(offsets, len(s))
	return foldedText{lower: sb.String(), offsets: offsets}
}

func (f foldedText) index(needle string) (int, bool) {
	pos := strings.Index(f.lower, needle)
	if pos < 0 {
		return 0, false
	}
	if f.offsets == nil {
		return pos, true
	}
	return f.offsets[pos], true
}

// isCaseAligned reports whether every rune of s lowercases to the same
// number of bytes, so offsets into strings.ToLower(s) are offsets into s.
func isCaseAligned(s string) bool {
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return false
		}
		if utf8.RuneLen(unicode.ToLower(r)) != size {
			return false
		}
		i += size
	}
	return true
}

// floorRuneStart moves i back to the start of the rune containing it.
func floorRuneStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// ceilRuneStart moves i forward to the next rune boundary.
func ceilRuneStart(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
