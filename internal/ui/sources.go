package ui

import (
	"github.com/rohzzn/medical-rag/internal/api"
)

// maxDisplayedSources caps how many citations are listed under one
// assistant message. The full count is still reported.
const maxDisplayedSources = 5

// dedupeSources collapses duplicates by source name, first occurrence
// wins. The backend happily returns one paper once per matched passage;
// collapsing is the client's job. The input is never modified.
func dedupeSources(sources []api.Source) []api.Source {
	if len(sources) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(sources))
	out := make([]api.Source, 0, len(sources))
	for _, s := range sources {
		if _, ok := seen[s.SourceName]; ok {
			continue
		}
		seen[s.SourceName] = struct{}{}
		out = append(out, s)
	}
	return out
}
