package tools

import (
	"context"
	"errors"

	"github.com/HendryAvila/chatdesk/internal/envelope"
	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── get_chat_history ────────────────────────────────────────────────────────

// ChatHistoryTool handles the get_chat_history MCP tool.
type ChatHistoryTool struct {
	store *store.Store
}

// NewChatHistoryTool creates a ChatHistoryTool.
func NewChatHistoryTool(s *store.Store) *ChatHistoryTool {
	return &ChatHistoryTool{store: s}
}

// Definition returns the MCP tool definition for get_chat_history.
func (t *ChatHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_chat_history",
		mcp.WithDescription("Retrieve chat history for a specific user, newest first, with pagination."),
		mcp.WithNumber("userId",
			mcp.Required(),
			mcp.Description("The user ID to get chat history for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages to return (default: 50)"),
			mcp.DefaultNumber(50),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of messages to skip (default: 0)"),
			mcp.DefaultNumber(0),
		),
	)
}

// Handle processes the get_chat_history tool call.
func (t *ChatHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "userId")
	if err != nil {
		return respond(invalid(err.Error()))
	}
	limit := limitArg(req, "limit", 50)
	offset := offsetArg(req, "offset")

	user, err := t.store.FindUser(ctx, userID)
	if err != nil {
		return respond(storeFailure(ctx, "get_chat_history", err, "Failed to retrieve chat history", nil))
	}
	if user == nil {
		return respond(envelope.Failure(envelope.KindNotFound, "User not found", nil))
	}

	msgs, err := t.store.UserMessages(ctx, userID, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		return respond(storeFailure(ctx, "get_chat_history", err, "Failed to retrieve chat history", nil))
	}

	return respond(envelope.Success(envelope.Fields{
		"messages": msgs,
		"count":    len(msgs),
		"user_id":  userID,
		"limit":    limit,
		"offset":   offset,
	}))
}

// ─── get_recent_messages ─────────────────────────────────────────────────────

// RecentMessagesTool handles the get_recent_messages MCP tool.
type RecentMessagesTool struct {
	store *store.Store
}

// NewRecentMessagesTool creates a RecentMessagesTool.
func NewRecentMessagesTool(s *store.Store) *RecentMessagesTool {
	return &RecentMessagesTool{store: s}
}

// Definition returns the MCP tool definition for get_recent_messages.
func (t *RecentMessagesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_recent_messages",
		mcp.WithDescription("Get the most recent chat messages for a user."),
		mcp.WithNumber("userId",
			mcp.Required(),
			mcp.Description("The user ID to get recent messages for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of recent messages to return (default: 10)"),
			mcp.DefaultNumber(10),
		),
	)
}

// Handle processes the get_recent_messages tool call.
func (t *RecentMessagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "userId")
	if err != nil {
		return respond(invalid(err.Error()))
	}
	limit := limitArg(req, "limit", 10)

	if _, err := t.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respond(envelope.Failure(envelope.KindNotFound, "User not found", envelope.Fields{"user_id": userID}))
		}
		return respond(storeFailure(ctx, "get_recent_messages", err, "Failed to retrieve recent messages", envelope.Fields{"user_id": userID}))
	}

	msgs, err := t.store.UserMessages(ctx, userID, store.Page{Limit: limit})
	if err != nil {
		return respond(storeFailure(ctx, "get_recent_messages", err, "Failed to retrieve recent messages", envelope.Fields{"user_id": userID}))
	}

	return respond(envelope.Success(envelope.Fields{
		"messages": msgs,
		"count":    len(msgs),
		"user_id":  userID,
	}))
}

// ─── get_session_history ─────────────────────────────────────────────────────

// SessionHistoryTool handles the get_session_history MCP tool.
type SessionHistoryTool struct {
	store *store.Store
}

// NewSessionHistoryTool creates a SessionHistoryTool.
func NewSessionHistoryTool(s *store.Store) *SessionHistoryTool {
	return &SessionHistoryTool{store: s}
}

// Definition returns the MCP tool definition for get_session_history.
func (t *SessionHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_session_history",
		mcp.WithDescription("Get all messages of a chat session, newest first."),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("The session ID to retrieve"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages to return (default: 50)"),
			mcp.DefaultNumber(50),
		),
	)
}

// Handle processes the get_session_history tool call.
func (t *SessionHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("sessionId", "")
	if sessionID == "" {
		return respond(invalid("'sessionId' is required"))
	}
	limit := limitArg(req, "limit", 50)

	msgs, err := t.store.SessionMessages(ctx, sessionID, limit)
	if err != nil {
		return respond(storeFailure(ctx, "get_session_history", err, "Failed to retrieve session history", nil))
	}

	return respond(envelope.Success(envelope.Fields{
		"messages":   msgs,
		"count":      len(msgs),
		"session_id": sessionID,
	}))
}
