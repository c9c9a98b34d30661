package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/rohzzn/medical-rag/internal/api"
	"github.com/rohzzn/medical-rag/internal/chat"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
)

func testModel() Model {
	return Model{
		thread: chat.New(),
		list:   list.New([]list.Item{}, list.NewDefaultDelegate(), 40, 20),
		keys:   defaultKeys(),
	}
}

func TestApplyConversations_SelectsActiveConversation(t *testing.T) {
	m := testModel()
	epoch := m.thread.BeginFetch(2)
	m.thread.ApplyFetch(epoch, api.Conversation{ID: 2})

	m.applyConversations([]api.Conversation{
		{ID: 3, Title: "newest"},
		{ID: 2, Title: "active one"},
		{ID: 1, Title: "oldest"},
	})

	if m.list.Index() != 1 {
		t.Fatalf("expected selection on index 1, got %d", m.list.Index())
	}
	if m.selectedListID != 2 {
		t.Fatalf("expected selected id 2, got %d", m.selectedListID)
	}
}

func TestApplyConversations_DraftDefaultsToFirst(t *testing.T) {
	m := testModel()
	m.applyConversations([]api.Conversation{
		{ID: 9, Title: "first"},
		{ID: 8, Title: "second"},
	})
	if m.list.Index() != 0 || m.selectedListID != 9 {
		t.Fatalf("expected first item selected, got index=%d id=%d", m.list.Index(), m.selectedListID)
	}
}

func TestApplyConversations_EmptyList(t *testing.T) {
	m := testModel()
	m.applyConversations(nil)
	if m.selectedListID != 0 {
		t.Fatalf("expected no selection, got %d", m.selectedListID)
	}
}

func TestFailedHistoryFetchRestoresTranscript(t *testing.T) {
	m := testModel()
	m.viewport = viewport.New(60, 20)

	_, _, epoch, err := m.thread.BeginSend("kept question")
	if err != nil {
		t.Fatalf("BeginSend: %v", err)
	}
	m.thread.ApplySendResult(epoch, api.QueryResult{Answer: "kept answer", ConversationID: 4})

	fetchEpoch := m.thread.BeginFetch(5)
	m.viewport.SetContent("Loading conversation...")

	next, cmd := m.Update(historyMsg{epoch: fetchEpoch, err: errors.New("boom")})
	updated := next.(Model)
	if cmd == nil {
		t.Fatal("expected a re-render command after the failed fetch")
	}
	if !updated.rendering {
		t.Fatal("failed fetch should kick off a transcript re-render")
	}
	if len(updated.thread.Entries()) != 2 {
		t.Fatalf("previous log must survive the failed fetch, got %d entries", len(updated.thread.Entries()))
	}
	if updated.status != "Could not load conversation" {
		t.Fatalf("unexpected status: %q", updated.status)
	}
}

func TestTruncateTitle(t *testing.T) {
	if got := truncateTitle("", 30); got != "Untitled conversation" {
		t.Fatalf("empty title fallback mismatch: %q", got)
	}
	if got := truncateTitle("short", 30); got != "short" {
		t.Fatalf("short title changed: %q", got)
	}
	long := "What are the treatment options for eosinophilic esophagitis?"
	got := truncateTitle(long, 30)
	if len(got) != 33 || got[30:] != "..." {
		t.Fatalf("long title not truncated: %q", got)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-time.Minute), "1 min ago"},
		{now.Add(-45 * time.Minute), "45 mins ago"},
		{now.Add(-2 * time.Hour), "2 hours ago"},
		{now.Add(-3 * 24 * time.Hour), "3 days ago"},
		{now.Add(-30 * 24 * time.Hour), "2025-02-08"},
	}
	for _, tc := range cases {
		if got := relativeTime(tc.t, now); got != tc.want {
			t.Errorf("relativeTime(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}

func TestNextModeCycles(t *testing.T) {
	mode := api.ModeHybrid
	seen := map[api.RetrieverMode]bool{}
	for i := 0; i < 3; i++ {
		seen[mode] = true
		mode = nextMode(mode)
	}
	if mode != api.ModeHybrid {
		t.Fatalf("cycle should return to hybrid, got %s", mode)
	}
	if len(seen) != 3 {
		t.Fatalf("expected all 3 modes visited, got %v", seen)
	}
	if nextMode("bogus") != api.ModeHybrid {
		t.Fatal("unknown mode should reset to hybrid")
	}
}
