package tools

import (
	"context"
	"errors"

	"github.com/HendryAvila/chatdesk/internal/envelope"
	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/HendryAvila/chatdesk/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── get_user_info ───────────────────────────────────────────────────────────

// UserInfoTool handles the get_user_info MCP tool.
type UserInfoTool struct {
	store *store.Store
}

// NewUserInfoTool creates a UserInfoTool.
func NewUserInfoTool(s *store.Store) *UserInfoTool {
	return &UserInfoTool{store: s}
}

// Definition returns the MCP tool definition for get_user_info.
func (t *UserInfoTool) Definition() mcp.Tool {
	return mcp.NewTool("get_user_info",
		mcp.WithDescription("Get detailed information about a user."),
		mcp.WithNumber("userId",
			mcp.Required(),
			mcp.Description("The user ID"),
		),
	)
}

// Handle processes the get_user_info tool call.
func (t *UserInfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "userId")
	if err != nil {
		return respond(invalid(err.Error()))
	}

	user, err := t.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return respond(envelope.Failure(envelope.KindNotFound, "User not found", envelope.Fields{"user_id": userID}))
	}
	if err != nil {
		return respond(storeFailure(ctx, "get_user_info", err, "Failed to retrieve user", envelope.Fields{"user_id": userID}))
	}

	return respond(envelope.Success(envelope.Fields{"user": user}))
}

// ─── search_users ────────────────────────────────────────────────────────────

// SearchUsersTool handles the search_users MCP tool.
type SearchUsersTool struct {
	store *store.Store
}

// NewSearchUsersTool creates a SearchUsersTool.
func NewSearchUsersTool(s *store.Store) *SearchUsersTool {
	return &SearchUsersTool{store: s}
}

// Definition returns the MCP tool definition for search_users.
func (t *SearchUsersTool) Definition() mcp.Tool {
	return mcp.NewTool("search_users",
		mcp.WithDescription("Search users by first name, last name or email."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for (at least 2 characters)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of users to return (default: 10)"),
			mcp.DefaultNumber(10),
		),
	)
}

// Handle processes the search_users tool call.
func (t *SearchUsersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if !validate.SearchQuery(query) {
		return respond(invalid(shortQueryMessage))
	}
	limit := limitArg(req, "limit", 10)

	users, err := t.store.SearchUsers(ctx, query, limit)
	if err != nil {
		return respond(storeFailure(ctx, "search_users", err, "Failed to search users", nil))
	}

	return respond(envelope.Success(envelope.Fields{
		"users": users,
		"count": len(users),
		"query": query,
	}))
}

// ─── get_active_users ────────────────────────────────────────────────────────

// ActiveUsersTool handles the get_active_users MCP tool.
type ActiveUsersTool struct {
	store *store.Store
}

// NewActiveUsersTool creates an ActiveUsersTool.
func NewActiveUsersTool(s *store.Store) *ActiveUsersTool {
	return &ActiveUsersTool{store: s}
}

// Definition returns the MCP tool definition for get_active_users.
func (t *ActiveUsersTool) Definition() mcp.Tool {
	return mcp.NewTool("get_active_users",
		mcp.WithDescription("List active users ordered by first and last name."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of users to return (default: 50)"),
			mcp.DefaultNumber(50),
		),
	)
}

// Handle processes the get_active_users tool call.
func (t *ActiveUsersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := limitArg(req, "limit", 50)

	users, err := t.store.ActiveUsers(ctx, limit)
	if err != nil {
		return respond(storeFailure(ctx, "get_active_users", err, "Failed to retrieve active users", nil))
	}

	return respond(envelope.Success(envelope.Fields{
		"users": users,
		"count": len(users),
	}))
}

// ─── get_user_by_email ───────────────────────────────────────────────────────

// UserByEmailTool handles the get_user_by_email MCP tool.
type UserByEmailTool struct {
	store *store.Store
}

// NewUserByEmailTool creates a UserByEmailTool.
func NewUserByEmailTool(s *store.Store) *UserByEmailTool {
	return &UserByEmailTool{store: s}
}

// Definition returns the MCP tool definition for get_user_by_email.
func (t *UserByEmailTool) Definition() mcp.Tool {
	return mcp.NewTool("get_user_by_email",
		mcp.WithDescription("Find a user by exact email address."),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("The email address to look up"),
		),
	)
}

// Handle processes the get_user_by_email tool call.
func (t *UserByEmailTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email := req.GetString("email", "")
	if !validate.Email(email) {
		return respond(invalid("Invalid email address format"))
	}

	user, err := t.store.FindUserByEmail(ctx, email)
	if err != nil {
		return respond(storeFailure(ctx, "get_user_by_email", err, "Failed to retrieve user", envelope.Fields{"email": email}))
	}
	if user == nil {
		return respond(envelope.Failure(envelope.KindNotFound, "User not found", envelope.Fields{"email": email}))
	}

	return respond(envelope.Success(envelope.Fields{"user": user}))
}
