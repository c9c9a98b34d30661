package api

import "time"

// Source is a citation backing an assistant message. The backend's plain
// query endpoint fills only path and name; the expanded RAG endpoint adds
// the passage-level fields.
type Source struct {
	SourcePath    string `json:"source_path"`
	SourceName    string `json:"source_name"`
	PaperID       string `json:"paper_id,omitempty"`
	PaperURL      string `json:"paper_url,omitempty"`
	Content       string `json:"content,omitempty"`
	Location      string `json:"location,omitempty"`
	WhyItSupports string `json:"why_it_supports,omitempty"`
}

// Message is one persisted turn in a conversation.
type Message struct {
	ID        int       `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Sources   []Source  `json:"sources,omitempty"`
}

// Conversation is a server-owned ordered sequence of messages. List
// responses carry message stubs; GetConversation returns the full history.
type Conversation struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// QueryResult is the answer to a submitted query. ConversationID is
// authoritative: the server assigns it when the request carried none.
type QueryResult struct {
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
	ConversationID int      `json:"conversation_id"`
}

// User is the minimal identity behind a session credential.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RetrieverMode selects the backend retrieval strategy for the session.
type RetrieverMode string

const (
	ModeHybrid       RetrieverMode = "hybrid"
	ModeVector       RetrieverMode = "vector"
	ModeVectorCypher RetrieverMode = "vector_cypher"
)

func (m RetrieverMode) Valid() bool {
	switch m {
	case ModeHybrid, ModeVector, ModeVectorCypher:
		return true
	}
	return false
}

func Modes() []RetrieverMode {
	return []RetrieverMode{ModeHybrid, ModeVector, ModeVectorCypher}
}
