package ui

import (
	"fmt"
	"strings"

	"github.com/rohzzn/medical-rag/internal/api"
	"github.com/rohzzn/medical-rag/internal/chat"
	"github.com/rohzzn/medical-rag/internal/papers"
)

// BuildTranscriptMarkdown renders the thread log as markdown for the
// viewport. Assistant answers come back from the backend as markdown
// already; user turns and source lists are framed around them.
func BuildTranscriptMarkdown(entries []chat.Entry, expandSources bool) string {
	var b strings.Builder
	for _, e := range entries {
		content := strings.TrimSpace(e.Content)
		if content == "" {
			continue
		}

		switch {
		case e.Role == chat.RoleUser:
			b.WriteString("## You\n\n")
			b.WriteString(content)
		case e.Notice:
			b.WriteString("## Assistant\n\n")
			b.WriteString("> " + content)
		default:
			b.WriteString("## Assistant\n\n")
			b.WriteString(content)
			if block := buildSourcesBlock(e.Sources, expandSources); block != "" {
				b.WriteString("\n\n")
				b.WriteString(block)
			}
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func buildSourcesBlock(sources []api.Source, expand bool) string {
	unique := dedupeSources(sources)
	if len(unique) == 0 {
		return ""
	}

	shown := unique
	if len(shown) > maxDisplayedSources {
		shown = shown[:maxDisplayedSources]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Sources (%d)**\n\n", len(unique))
	for _, s := range shown {
		name := s.SourceName
		if url := sourceURL(s); url != "" {
			fmt.Fprintf(&b, "- [%s](%s)\n", name, url)
		} else {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		if !expand {
			continue
		}
		if s.SourcePath != "" {
			fmt.Fprintf(&b, "  - path: `%s`\n", s.SourcePath)
		}
		if s.Location != "" {
			fmt.Fprintf(&b, "  - location: %s\n", s.Location)
		}
		if passage := strings.TrimSpace(s.Content); passage != "" {
			fmt.Fprintf(&b, "  - passage: %q\n", clampPassage(passage, 400))
		}
		if s.WhyItSupports != "" {
			fmt.Fprintf(&b, "  - why: %s\n", s.WhyItSupports)
		}
	}
	if hidden := len(unique) - len(shown); hidden > 0 {
		fmt.Fprintf(&b, "- ... and %d more\n", hidden)
	}
	return strings.TrimRight(b.String(), "\n")
}

// sourceURL prefers what the backend sent and falls back to the static
// paper table for well-known documents.
func sourceURL(s api.Source) string {
	if s.PaperURL != "" {
		return s.PaperURL
	}
	return papers.URL(s.SourceName)
}

func clampPassage(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
