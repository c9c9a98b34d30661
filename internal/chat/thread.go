// Package chat owns the active conversation: which server conversation is
// selected, the ordered message log, and what is currently in flight. It
// performs no I/O. Callers begin a fetch or send, run the network call
// themselves, and feed the result back with the epoch they were handed;
// results from a superseded epoch are discarded, never applied.
package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/rohzzn/medical-rag/internal/api"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrEmptyMessage rejects empty or whitespace-only sends locally,
	// before any network call.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrSendInFlight rejects a send while another is outstanding.
	ErrSendInFlight = errors.New("a send is already in flight")
)

// Entry is one log line: a confirmed server message, an optimistic local
// one, or a synthetic assistant notice for a failed send.
type Entry struct {
	ID        EntryID
	Role      string
	Content   string
	CreatedAt time.Time
	Sources   []api.Source
	Notice    bool
}

// Thread is the conversation state machine. A zero conversation id is the
// draft state: no server conversation exists yet, the log holds only
// optimistic entries. The id is fixed by the first successful send and
// reused until NewChat or BeginFetch retargets the thread.
type Thread struct {
	conversationID int
	entries        []Entry
	epoch          int
	sendPending    bool
	fetching       bool
	now            func() time.Time
}

func New() *Thread {
	return &Thread{now: time.Now}
}

func (t *Thread) Draft() bool         { return t.conversationID == 0 }
func (t *Thread) ConversationID() int { return t.conversationID }
func (t *Thread) Entries() []Entry    { return t.entries }
func (t *Thread) SendPending() bool   { return t.sendPending }
func (t *Thread) Fetching() bool      { return t.fetching }

// NewChat resets to an empty draft. Anything in flight is orphaned: its
// completion arrives with a stale epoch and is dropped.
func (t *Thread) NewChat() {
	t.epoch++
	t.conversationID = 0
	t.entries = nil
	t.sendPending = false
	t.fetching = false
}

// BeginFetch targets the thread at an existing conversation and reports
// the epoch the caller must hand back with the fetched history. Earlier
// fetches and sends are invalidated. The current log stays visible until
// the history arrives; ApplyFetch replaces it wholesale.
func (t *Thread) BeginFetch(conversationID int) int {
	t.epoch++
	t.conversationID = conversationID
	t.sendPending = false
	t.fetching = true
	return t.epoch
}

// ApplyFetch installs fetched history. A stale epoch means the user moved
// on before the response landed; it is discarded and false is returned.
func (t *Thread) ApplyFetch(epoch int, conv api.Conversation) bool {
	if epoch != t.epoch {
		return false
	}
	t.fetching = false
	t.entries = make([]Entry, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		t.entries = append(t.entries, Entry{
			ID:        ConfirmedID(m.ID),
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Sources:   m.Sources,
		})
	}
	return true
}

// FailFetch clears the loading flag. The previous log is left intact; a
// failed fetch never overwrites it.
func (t *Thread) FailFetch(epoch int) bool {
	if epoch != t.epoch {
		return false
	}
	t.fetching = false
	return true
}

// BeginSend appends an optimistic user entry and reports the conversation
// id to submit with (0 while drafting) and the epoch for the result. At
// most one send may be outstanding. An unfinished fetch is invalidated:
// its history would land on top of the optimistic entry, so it arrives
// with a stale epoch and is dropped.
func (t *Thread) BeginSend(text string) (Entry, int, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, 0, 0, ErrEmptyMessage
	}
	if t.sendPending {
		return Entry{}, 0, 0, ErrSendInFlight
	}

	entry := Entry{
		ID:        NewPendingID(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: t.now(),
	}
	t.entries = append(t.entries, entry)
	t.epoch++
	t.sendPending = true
	t.fetching = false
	return entry, t.conversationID, t.epoch, nil
}

// ApplySendResult appends the assistant reply after the optimistic user
// entry. A draft thread adopts the server-assigned conversation id here
// and nowhere else.
func (t *Thread) ApplySendResult(epoch int, res api.QueryResult) bool {
	if epoch != t.epoch {
		return false
	}
	t.sendPending = false
	if t.conversationID == 0 {
		t.conversationID = res.ConversationID
	}
	t.entries = append(t.entries, Entry{
		ID:        NewPendingID(),
		Role:      RoleAssistant,
		Content:   res.Answer,
		CreatedAt: t.now(),
		Sources:   res.Sources,
	})
	return true
}

// FailSend appends a synthetic assistant notice carrying the error. The
// conversation id is untouched: a failed send from draft stays draft.
func (t *Thread) FailSend(epoch int, err error) bool {
	if epoch != t.epoch {
		return false
	}
	t.sendPending = false
	t.entries = append(t.entries, Entry{
		ID:        NewPendingID(),
		Role:      RoleAssistant,
		Content:   "Sorry, I couldn't process your question: " + userMessage(err),
		CreatedAt: t.now(),
		Notice:    true,
	})
	return true
}

// userMessage flattens the error taxonomy into something worth showing in
// the transcript.
func userMessage(err error) string {
	var reqErr *api.RequestError
	var transport *api.TransportError
	switch {
	case err == nil:
		return "unknown error"
	case errors.Is(err, api.ErrUnauthenticated):
		return "you are not logged in"
	case errors.As(err, &reqErr):
		return reqErr.Detail
	case errors.As(err, &transport):
		return "the server could not be reached"
	default:
		return err.Error()
	}
}
