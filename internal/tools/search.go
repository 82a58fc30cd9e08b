package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/chatdesk/internal/envelope"
	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/HendryAvila/chatdesk/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

var shortQueryMessage = fmt.Sprintf("Search query must be at least %d characters long", validate.MinSearchQueryLength)

// ─── search_chat_messages ────────────────────────────────────────────────────

// SearchMessagesTool handles the search_chat_messages MCP tool.
type SearchMessagesTool struct {
	store *store.Store
}

// NewSearchMessagesTool creates a SearchMessagesTool.
func NewSearchMessagesTool(s *store.Store) *SearchMessagesTool {
	return &SearchMessagesTool{store: s}
}

// Definition returns the MCP tool definition for search_chat_messages.
func (t *SearchMessagesTool) Definition() mcp.Tool {
	return mcp.NewTool("search_chat_messages",
		mcp.WithDescription("Search a user's chat messages for a substring."),
		mcp.WithNumber("userId",
			mcp.Required(),
			mcp.Description("The user ID whose messages to search"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for (at least 2 characters)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 20)"),
			mcp.DefaultNumber(20),
		),
	)
}

// Handle processes the search_chat_messages tool call.
func (t *SearchMessagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "userId")
	if err != nil {
		return respond(invalid(err.Error()))
	}
	query := req.GetString("query", "")
	if !validate.SearchQuery(query) {
		return respond(invalid(shortQueryMessage))
	}
	limit := limitArg(req, "limit", 20)

	if _, err := t.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respond(envelope.Failure(envelope.KindNotFound, "User not found", envelope.Fields{"user_id": userID}))
		}
		return respond(storeFailure(ctx, "search_chat_messages", err, "Failed to search messages", envelope.Fields{"user_id": userID}))
	}

	msgs, err := t.store.SearchMessages(ctx, userID, query, limit)
	if err != nil {
		return respond(storeFailure(ctx, "search_chat_messages", err, "Failed to search messages", envelope.Fields{"user_id": userID}))
	}

	return respond(envelope.Success(envelope.Fields{
		"messages": msgs,
		"count":    len(msgs),
		"user_id":  userID,
		"query":    query,
	}))
}

// ─── get_active_sessions ─────────────────────────────────────────────────────

// ActiveSessionsTool handles the get_active_sessions MCP tool.
type ActiveSessionsTool struct {
	store *store.Store
}

// NewActiveSessionsTool creates an ActiveSessionsTool.
func NewActiveSessionsTool(s *store.Store) *ActiveSessionsTool {
	return &ActiveSessionsTool{store: s}
}

// Definition returns the MCP tool definition for get_active_sessions.
func (t *ActiveSessionsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_active_sessions",
		mcp.WithDescription("List a user's chat sessions with the time of their latest message, most recent first."),
		mcp.WithNumber("userId",
			mcp.Required(),
			mcp.Description("The user ID to list sessions for"),
		),
	)
}

// Handle processes the get_active_sessions tool call.
func (t *ActiveSessionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "userId")
	if err != nil {
		return respond(invalid(err.Error()))
	}

	if _, err := t.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respond(envelope.Failure(envelope.KindNotFound, "User not found", envelope.Fields{"user_id": userID}))
		}
		return respond(storeFailure(ctx, "get_active_sessions", err, "Failed to retrieve sessions", envelope.Fields{"user_id": userID}))
	}

	sessions, err := t.store.ActiveSessions(ctx, userID)
	if err != nil {
		return respond(storeFailure(ctx, "get_active_sessions", err, "Failed to retrieve sessions", envelope.Fields{"user_id": userID}))
	}

	return respond(envelope.Success(envelope.Fields{
		"sessions": sessions,
		"count":    len(sessions),
		"user_id":  userID,
	}))
}
