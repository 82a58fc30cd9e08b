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

// ─── create_user ─────────────────────────────────────────────────────────────

// CreateUserTool handles the create_user MCP tool.
type CreateUserTool struct {
	store *store.Store
}

// NewCreateUserTool creates a CreateUserTool.
func NewCreateUserTool(s *store.Store) *CreateUserTool {
	return &CreateUserTool{store: s}
}

// Definition returns the MCP tool definition for create_user.
func (t *CreateUserTool) Definition() mcp.Tool {
	return mcp.NewTool("create_user",
		mcp.WithDescription("Create a new user account. New users start with status active."),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Unique email address"),
		),
		mcp.WithString("firstName",
			mcp.Required(),
			mcp.Description("First name"),
		),
		mcp.WithString("lastName",
			mcp.Required(),
			mcp.Description("Last name"),
		),
		mcp.WithString("phone",
			mcp.Description("Optional phone number"),
		),
	)
}

// Handle processes the create_user tool call.
func (t *CreateUserTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email := req.GetString("email", "")
	if !validate.Email(email) {
		return respond(invalid("Invalid email address format"))
	}
	first := req.GetString("firstName", "")
	if first == "" {
		return respond(invalid("'firstName' is required"))
	}
	last := req.GetString("lastName", "")
	if last == "" {
		return respond(invalid("'lastName' is required"))
	}

	existing, err := t.store.FindUserByEmail(ctx, email)
	if err != nil {
		return respond(storeFailure(ctx, "create_user", err, "Failed to create user", nil))
	}
	if existing != nil {
		return respond(invalid("User with this email already exists"))
	}

	user := &store.User{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Phone:     optionalString(req, "phone"),
		Status:    store.StatusActive,
	}
	if err := t.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return respond(invalid("User with this email already exists"))
		}
		return respond(storeFailure(ctx, "create_user", err, "Failed to create user", nil))
	}

	return respond(envelope.Success(envelope.Fields{
		"user":    user,
		"message": "User created successfully",
	}))
}

// ─── update_user ─────────────────────────────────────────────────────────────

// UpdateUserTool handles the update_user MCP tool.
type UpdateUserTool struct {
	store *store.Store
}

// NewUpdateUserTool creates an UpdateUserTool.
func NewUpdateUserTool(s *store.Store) *UpdateUserTool {
	return &UpdateUserTool{store: s}
}

// Definition returns the MCP tool definition for update_user.
func (t *UpdateUserTool) Definition() mcp.Tool {
	return mcp.NewTool("update_user",
		mcp.WithDescription(
			"Update user information. Only the fields present in userData change: "+
				"email, first_name, last_name, phone, status.",
		),
		mcp.WithNumber("userId",
			mcp.Required(),
			mcp.Description("The user ID to update"),
		),
		mcp.WithObject("userData",
			mcp.Required(),
			mcp.Description("Fields to change, e.g. {\"first_name\": \"Ana\"}"),
		),
	)
}

// userDataAliases accepts camelCase spellings of the fillable fields.
var userDataAliases = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
}

// Handle processes the update_user tool call. The user must exist before
// any field is validated.
func (t *UpdateUserTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "userId")
	if err != nil {
		return respond(invalid(err.Error()))
	}

	notFound := envelope.Failure(envelope.KindNotFound, "User not found", envelope.Fields{"user_id": userID})
	if _, err := t.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respond(notFound)
		}
		return respond(storeFailure(ctx, "update_user", err, "Failed to update user", envelope.Fields{"user_id": userID}))
	}

	data, ok := req.GetArguments()["userData"].(map[string]any)
	if !ok {
		return respond(invalid("'userData' must be an object"))
	}

	changes, msg := userChanges(data)
	if msg != "" {
		return respond(envelope.Failure(envelope.KindValidation, msg, envelope.Fields{"user_id": userID}))
	}

	user, err := t.store.UpdateUser(ctx, userID, changes)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return respond(notFound)
	case errors.Is(err, store.ErrDuplicate):
		return respond(envelope.Failure(envelope.KindValidation, "User with this email already exists", envelope.Fields{"user_id": userID}))
	case err != nil:
		return respond(storeFailure(ctx, "update_user", err, "Failed to update user", envelope.Fields{"user_id": userID}))
	}

	return respond(envelope.Success(envelope.Fields{
		"user":    user,
		"message": "User updated successfully",
	}))
}

// userChanges filters data down to fillable columns and checks their types.
// A null value is only meaningful for phone; elsewhere it is dropped. Email
// is validated only when present. A non-empty second return is the
// validation message.
func userChanges(data map[string]any) (map[string]any, string) {
	normalized := make(map[string]any, len(data))
	for k, v := range data {
		if alias, ok := userDataAliases[k]; ok {
			k = alias
		}
		normalized[k] = v
	}

	changes := make(map[string]any, len(store.UserFillable))
	for _, key := range store.UserFillable {
		v, ok := normalized[key]
		if !ok {
			continue
		}
		if v == nil {
			if key == "phone" {
				changes[key] = nil
			}
			continue
		}
		s, ok := v.(string)
		if !ok {
			if key == "email" {
				return nil, "Invalid email address format"
			}
			return nil, fmt.Sprintf("Invalid value for '%s'", key)
		}
		if key == "email" && !validate.Email(s) {
			return nil, "Invalid email address format"
		}
		changes[key] = s
	}
	return changes, ""
}
