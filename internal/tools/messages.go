package tools

import (
	"context"
	"errors"

	"github.com/HendryAvila/chatdesk/internal/envelope"
	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/HendryAvila/chatdesk/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── add_chat_message ────────────────────────────────────────────────────────

// AddMessageTool handles the add_chat_message MCP tool.
type AddMessageTool struct {
	store *store.Store
}

// NewAddMessageTool creates an AddMessageTool.
func NewAddMessageTool(s *store.Store) *AddMessageTool {
	return &AddMessageTool{store: s}
}

// Definition returns the MCP tool definition for add_chat_message.
func (t *AddMessageTool) Definition() mcp.Tool {
	return mcp.NewTool("add_chat_message",
		mcp.WithDescription("Add a new chat message to a user's conversation."),
		mcp.WithNumber("userId",
			mcp.Required(),
			mcp.Description("The user ID the message belongs to"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The message content"),
		),
		mcp.WithString("senderType",
			mcp.Required(),
			mcp.Description("Who sent the message"),
			mcp.Enum(validate.SenderTypes...),
		),
		mcp.WithString("sessionId",
			mcp.Description("Optional session ID grouping related messages"),
		),
	)
}

// Handle processes the add_chat_message tool call. Input is validated
// before the store is touched.
func (t *AddMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "userId")
	if err != nil {
		return respond(invalid(err.Error()))
	}
	senderType := req.GetString("senderType", "")
	if !validate.SenderType(senderType) {
		return respond(invalid("Invalid sender type. Must be user, agent, or bot"))
	}
	text := req.GetString("message", "")
	if !validate.MessageText(text) {
		return respond(invalid("Message cannot be empty"))
	}

	user, err := t.store.FindUser(ctx, userID)
	if err != nil {
		return respond(storeFailure(ctx, "add_chat_message", err, "Failed to add message", nil))
	}
	if user == nil {
		return respond(envelope.Failure(envelope.KindNotFound, "User not found", envelope.Fields{"user_id": userID}))
	}

	msg := &store.ChatMessage{
		UserID:     userID,
		Message:    text,
		SenderType: senderType,
		SessionID:  optionalString(req, "sessionId"),
	}
	if err := t.store.AddMessage(ctx, msg); err != nil {
		return respond(storeFailure(ctx, "add_chat_message", err, "Failed to add message", nil))
	}

	return respond(envelope.Success(envelope.Fields{"message": msg}))
}

// ─── get_message_by_id ───────────────────────────────────────────────────────

// MessageByIDTool handles the get_message_by_id MCP tool.
type MessageByIDTool struct {
	store *store.Store
}

// NewMessageByIDTool creates a MessageByIDTool.
func NewMessageByIDTool(s *store.Store) *MessageByIDTool {
	return &MessageByIDTool{store: s}
}

// Definition returns the MCP tool definition for get_message_by_id.
func (t *MessageByIDTool) Definition() mcp.Tool {
	return mcp.NewTool("get_message_by_id",
		mcp.WithDescription("Get a specific chat message by its ID."),
		mcp.WithNumber("messageId",
			mcp.Required(),
			mcp.Description("The message ID"),
		),
	)
}

// Handle processes the get_message_by_id tool call.
func (t *MessageByIDTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idArg(req, "messageId")
	if err != nil {
		return respond(invalid(err.Error()))
	}

	msg, err := t.store.GetMessage(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return respond(envelope.Failure(envelope.KindNotFound, "Message not found", envelope.Fields{"message_id": id}))
	}
	if err != nil {
		return respond(storeFailure(ctx, "get_message_by_id", err, "Failed to retrieve message", envelope.Fields{"message_id": id}))
	}

	return respond(envelope.Success(envelope.Fields{"message": msg}))
}

// ─── get_message_count ───────────────────────────────────────────────────────

// MessageCountTool handles the get_message_count MCP tool.
type MessageCountTool struct {
	store *store.Store
}

// NewMessageCountTool creates a MessageCountTool.
func NewMessageCountTool(s *store.Store) *MessageCountTool {
	return &MessageCountTool{store: s}
}

// Definition returns the MCP tool definition for get_message_count.
func (t *MessageCountTool) Definition() mcp.Tool {
	return mcp.NewTool("get_message_count",
		mcp.WithDescription("Get the total number of messages for a user. Unknown users have a count of 0."),
		mcp.WithNumber("userId",
			mcp.Required(),
			mcp.Description("The user ID to count messages for"),
		),
	)
}

// Handle processes the get_message_count tool call.
func (t *MessageCountTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "userId")
	if err != nil {
		return respond(invalid(err.Error()))
	}

	n, err := t.store.CountMessages(ctx, userID)
	if err != nil {
		return respond(storeFailure(ctx, "get_message_count", err, "Failed to count messages", envelope.Fields{"user_id": userID}))
	}

	return respond(envelope.Success(envelope.Fields{
		"count":   n,
		"user_id": userID,
	}))
}
