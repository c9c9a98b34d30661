// Package highlight wraps search matches in already-rendered terminal
// output without disturbing its escape sequences. Matches never span an
// escape-sequence boundary.
package highlight

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

type Result struct {
	Text      string
	Count     int
	LineIndex []int
}

// Apply wraps every case-insensitive occurrence of query in wrap and
// reports how many matches landed on which lines, so a viewport can jump
// between them.
func Apply(input, query string, wrap func(string) string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Text: input}
	}
	if wrap == nil {
		wrap = func(s string) string { return s }
	}

	lines := strings.SplitAfter(input, "\n")
	if len(lines) == 0 {
		lines = []string{input}
	}

	var out strings.Builder
	lineMatches := make([]int, 0, 64)
	total := 0

	for lineNo, line := range lines {
		hasNewline := strings.HasSuffix(line, "\n")
		core := line
		if hasNewline {
			core = strings.TrimSuffix(line, "\n")
		}

		rendered, count := applyToLine(core, query, wrap)
		out.WriteString(rendered)
		if hasNewline {
			out.WriteByte('\n')
		}
		if count > 0 {
			lineMatches = append(lineMatches, lineNo)
			total += count
		}
	}

	return Result{
		Text:      out.String(),
		Count:     total,
		LineIndex: lineMatches,
	}
}

func applyToLine(s, query string, wrap func(string) string) (string, int) {
	plain := ansi.Strip(s)
	if plain == s {
		return applyToPlain(s, query, wrap)
	}
	if !strings.Contains(strings.ToLower(plain), strings.ToLower(query)) {
		// Cheap rejection before walking escape sequences.
		return s, 0
	}

	var out strings.Builder
	total := 0
	pos := 0
	for pos < len(s) {
		esc := strings.IndexByte(s[pos:], 0x1b)
		if esc < 0 {
			rendered, count := applyToPlain(s[pos:], query, wrap)
			out.WriteString(rendered)
			total += count
			break
		}
		if esc > 0 {
			rendered, count := applyToPlain(s[pos:pos+esc], query, wrap)
			out.WriteString(rendered)
			total += count
			pos += esc
		}
		seqEnd := escapeEnd(s, pos)
		out.WriteString(s[pos:seqEnd])
		pos = seqEnd
	}
	return out.String(), total
}

// escapeEnd returns the index just past the escape sequence starting at
// start. CSI sequences end at their final byte (0x40-0x7e); anything
// unrecognized is passed through as a two-byte sequence.
func escapeEnd(s string, start int) int {
	if start+1 >= len(s) {
		return len(s)
	}
	if s[start+1] != '[' {
		return start + 2
	}
	for i := start + 2; i < len(s); i++ {
		if s[i] >= 0x40 && s[i] <= 0x7e {
			return i + 1
		}
	}
	return len(s)
}

func applyToPlain(s, query string, wrap func(string) string) (string, int) {
	if s == "" || query == "" {
		return s, 0
	}

	lower := strings.ToLower(s)
	q := strings.ToLower(query)
	if !strings.Contains(lower, q) {
		return s, 0
	}

	var out strings.Builder
	count := 0
	start := 0
	for {
		rel := strings.Index(lower[start:], q)
		if rel < 0 {
			out.WriteString(s[start:])
			break
		}
		idx := start + rel
		out.WriteString(s[start:idx])
		end := idx + len(query)
		out.WriteString(wrap(s[idx:end]))
		count++
		start = end
	}
	return out.String(), count
}
