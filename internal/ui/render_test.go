package ui

import (
	"strings"
	"testing"

	"github.com/rohzzn/medical-rag/internal/api"
	"github.com/rohzzn/medical-rag/internal/chat"
)

func TestBuildTranscriptMarkdown_Order(t *testing.T) {
	entries := []chat.Entry{
		{ID: chat.ConfirmedID(1), Role: chat.RoleUser, Content: "What is EoE?"},
		{ID: chat.ConfirmedID(2), Role: chat.RoleAssistant, Content: "Eosinophilic esophagitis is..."},
		{ID: chat.NewPendingID(), Role: chat.RoleUser, Content: "How is it treated?"},
	}

	out := BuildTranscriptMarkdown(entries, false)

	first := strings.Index(out, "What is EoE?")
	second := strings.Index(out, "Eosinophilic esophagitis is...")
	third := strings.Index(out, "How is it treated?")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("missing content:\n%s", out)
	}
	if !(first < second && second < third) {
		t.Fatalf("transcript out of order:\n%s", out)
	}
	if strings.Count(out, "## You") != 2 || strings.Count(out, "## Assistant") != 1 {
		t.Fatalf("unexpected headers:\n%s", out)
	}
}

func TestBuildTranscriptMarkdown_NoticeRendersAsQuote(t *testing.T) {
	entries := []chat.Entry{
		{ID: chat.NewPendingID(), Role: chat.RoleUser, Content: "hello"},
		{ID: chat.NewPendingID(), Role: chat.RoleAssistant, Content: "Sorry, the server could not be reached", Notice: true},
	}
	out := BuildTranscriptMarkdown(entries, false)
	if !strings.Contains(out, "> Sorry, the server could not be reached") {
		t.Fatalf("notice should render as blockquote:\n%s", out)
	}
}

func TestBuildTranscriptMarkdown_SkipsEmptyEntries(t *testing.T) {
	entries := []chat.Entry{
		{ID: chat.NewPendingID(), Role: chat.RoleUser, Content: "   "},
		{ID: chat.NewPendingID(), Role: chat.RoleAssistant, Content: "answer"},
	}
	out := BuildTranscriptMarkdown(entries, false)
	if strings.Contains(out, "## You") {
		t.Fatalf("blank entry should be skipped:\n%s", out)
	}
}

func TestDedupeSources_FirstOccurrenceWins(t *testing.T) {
	sources := []api.Source{
		{SourceName: "Paper A", SourcePath: "/a.pdf"},
		{SourceName: "Paper B", SourcePath: "/b.pdf"},
		{SourceName: "Paper A", SourcePath: "/a-duplicate.pdf"},
	}

	unique := dedupeSources(sources)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique sources, got %d", len(unique))
	}
	if unique[0].SourcePath != "/a.pdf" {
		t.Fatalf("first occurrence must win, got %+v", unique[0])
	}

	// The input slice is untouched.
	if len(sources) != 3 || sources[2].SourcePath != "/a-duplicate.pdf" {
		t.Fatalf("input mutated: %+v", sources)
	}
}

func TestSourcesBlock_CapAndCount(t *testing.T) {
	sources := make([]api.Source, 0, 8)
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		sources = append(sources, api.Source{SourceName: "Paper " + name, SourcePath: "/" + name})
	}

	out := buildSourcesBlock(sources, false)
	if !strings.Contains(out, "**Sources (8)**") {
		t.Fatalf("full count missing:\n%s", out)
	}
	if strings.Count(out, "- Paper") != maxDisplayedSources {
		t.Fatalf("expected %d listed sources:\n%s", maxDisplayedSources, out)
	}
	if !strings.Contains(out, "and 3 more") {
		t.Fatalf("hidden count missing:\n%s", out)
	}
}

func TestSourcesBlock_ExpandedFields(t *testing.T) {
	sources := []api.Source{{
		SourceName:    "Paper A",
		SourcePath:    "/a.pdf",
		Location:      "p. 4",
		Content:       "an exact passage",
		WhyItSupports: "directly defines the condition",
	}}

	collapsed := buildSourcesBlock(sources, false)
	if strings.Contains(collapsed, "an exact passage") {
		t.Fatalf("collapsed view must not show the passage:\n%s", collapsed)
	}

	expanded := buildSourcesBlock(sources, true)
	for _, want := range []string{"p. 4", "an exact passage", "directly defines the condition", "/a.pdf"} {
		if !strings.Contains(expanded, want) {
			t.Fatalf("expanded view missing %q:\n%s", want, expanded)
		}
	}
}

func TestSourceURL_PrefersBackendThenTable(t *testing.T) {
	withURL := api.Source{SourceName: "whatever", PaperURL: "https://example.com/paper"}
	if got := sourceURL(withURL); got != "https://example.com/paper" {
		t.Fatalf("backend URL should win, got %q", got)
	}

	known := api.Source{SourceName: "A Clinical Severity Index for Eosinophilic Esophagitis.pdf"}
	if got := sourceURL(known); got == "" {
		t.Fatal("known paper should resolve from the table")
	}

	unknown := api.Source{SourceName: "Unknown Paper.pdf"}
	if got := sourceURL(unknown); got != "" {
		t.Fatalf("unknown paper should have no URL, got %q", got)
	}
}
