package api

import (
	"context"
	"fmt"
	"net/http"
)

type queryRequest struct {
	Query          string `json:"query"`
	ConversationID int    `json:"conversation_id,omitempty"`
}

type retrieverRequest struct {
	Mode RetrieverMode `json:"mode"`
}

// SubmitQuery posts a user turn. conversationID 0 means "start a new
// conversation"; the returned result carries the id the server settled on.
// A non-empty mode overrides the session retriever for this one request
// via the retriever-type header.
func (c *Client) SubmitQuery(ctx context.Context, query string, conversationID int, mode RetrieverMode) (QueryResult, error) {
	var header map[string]string
	if mode != "" {
		if !mode.Valid() {
			return QueryResult{}, fmt.Errorf("unknown retriever mode %q", mode)
		}
		header = map[string]string{"retriever-type": string(mode)}
	}

	req := queryRequest{Query: query, ConversationID: conversationID}
	var result QueryResult
	if err := c.do(ctx, http.MethodPost, "/queries/query", req, &result, header); err != nil {
		return QueryResult{}, err
	}
	return result, nil
}

// ListConversations returns the caller's conversation summaries, most
// recently updated first (server ordering is preserved).
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var conversations []Conversation
	if err := c.do(ctx, http.MethodGet, "/queries/conversations", nil, &conversations, nil); err != nil {
		return nil, err
	}
	return conversations, nil
}

// GetConversation returns one conversation with its full message history.
// Unknown or foreign ids surface as a RequestError with status 404 or 403.
func (c *Client) GetConversation(ctx context.Context, id int) (Conversation, error) {
	var conversation Conversation
	path := fmt.Sprintf("/queries/conversations/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &conversation, nil); err != nil {
		return Conversation{}, err
	}
	return conversation, nil
}

// SetRetrieverMode configures which retrieval strategy the backend uses
// for subsequent queries in this session. Not tied to any conversation.
func (c *Client) SetRetrieverMode(ctx context.Context, mode RetrieverMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown retriever mode %q", mode)
	}
	return c.do(ctx, http.MethodPost, "/queries/retriever", retrieverRequest{Mode: mode}, nil, nil)
}
