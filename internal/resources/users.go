package resources

import (
	"context"
	"errors"

	"github.com/HendryAvila/chatdesk/internal/envelope"
	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// activeUsersLimit caps users://active.
const activeUsersLimit = 50

// UserHandler serves the user:// and users:// resources.
type UserHandler struct {
	store *store.Store
	now   Clock
}

// NewUserHandler creates a UserHandler. A nil clock uses the wall clock.
func NewUserHandler(s *store.Store, now Clock) *UserHandler {
	return &UserHandler{store: s, now: now}
}

// ─── Definitions ─────────────────────────────────────────────────────────────

// ProfileTemplate returns the template definition for user://{userId}/profile.
func (h *UserHandler) ProfileTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(envelope.FacetProfile.Template(), "user_profile",
		mcp.WithTemplateDescription("User profile information"),
		mcp.WithTemplateMIMEType(mimeJSON),
	)
}

// SummaryTemplate returns the template definition for user://{userId}/summary.
func (h *UserHandler) SummaryTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(envelope.FacetSummary.Template(), "user_summary",
		mcp.WithTemplateDescription("User summary information"),
		mcp.WithTemplateMIMEType(mimeJSON),
	)
}

// ListResource returns the definition for users://list.
func (h *UserHandler) ListResource() mcp.Resource {
	return mcp.NewResource(envelope.UsersListURI, "users_list",
		mcp.WithResourceDescription("List of all users in the system"),
		mcp.WithMIMEType(mimeJSON),
	)
}

// ActiveResource returns the definition for users://active.
func (h *UserHandler) ActiveResource() mcp.Resource {
	return mcp.NewResource(envelope.UsersActiveURI, "active_users",
		mcp.WithResourceDescription("List of active users, ordered by name"),
		mcp.WithMIMEType(mimeJSON),
	)
}

// ─── Envelopes ───────────────────────────────────────────────────────────────

func userNotFound(kind envelope.Kind, msg string, userID int64) envelope.Envelope {
	return envelope.ResourceFailure(kind, msg, envelope.Fields{"user_id": userID})
}

// Profile builds the user://{id}/profile envelope.
func (h *UserHandler) Profile(ctx context.Context, userID int64) envelope.Envelope {
	u, err := h.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return userNotFound(envelope.KindNotFound, "User not found", userID)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("reading user profile")
		return userNotFound(envelope.KindStore, "Failed to retrieve user", userID)
	}
	f := envelope.Fields{
		"user":      u,
		"timestamp": h.now.stamp(),
	}
	f[envelope.FacetProfile.Key()] = envelope.FacetProfile.URI(userID)
	return envelope.Resource(f)
}

// Summary builds the user://{id}/summary envelope. It carries no timestamp.
func (h *UserHandler) Summary(ctx context.Context, userID int64) envelope.Envelope {
	u, err := h.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return userNotFound(envelope.KindNotFound, "User not found", userID)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("reading user summary")
		return userNotFound(envelope.KindStore, "Failed to retrieve user", userID)
	}
	f := envelope.Fields{
		"id":         u.ID,
		"name":       u.FullName(),
		"email":      u.Email,
		"status":     u.Status,
		"created_at": u.CreatedAt,
	}
	f[envelope.FacetSummary.Key()] = envelope.FacetSummary.URI(userID)
	return envelope.Resource(f)
}

// List builds the users://list envelope.
func (h *UserHandler) List(ctx context.Context) envelope.Envelope {
	users, err := h.store.ListUsers(ctx, store.UserListOptions{})
	return h.userList(ctx, users, err)
}

// Active builds the users://active envelope.
func (h *UserHandler) Active(ctx context.Context) envelope.Envelope {
	users, err := h.store.ActiveUsers(ctx, activeUsersLimit)
	return h.userList(ctx, users, err)
}

func (h *UserHandler) userList(ctx context.Context, users []store.User, err error) envelope.Envelope {
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("listing users")
		return envelope.ResourceFailure(envelope.KindStore, "Failed to retrieve users", envelope.Fields{
			"users":     []store.User{},
			"count":     0,
			"timestamp": h.now.stamp(),
		})
	}
	return envelope.Resource(envelope.Fields{
		"users":     users,
		"count":     len(users),
		"timestamp": h.now.stamp(),
	})
}

// ─── MCP handlers ────────────────────────────────────────────────────────────

// HandleProfile serves user://{userId}/profile.
func (h *UserHandler) HandleProfile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := parseUserURI(req.Params.URI, envelope.FacetProfile)
	if err != nil {
		return nil, err
	}
	return contents(req.Params.URI, h.Profile(ctx, id))
}

// HandleSummary serves user://{userId}/summary.
func (h *UserHandler) HandleSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := parseUserURI(req.Params.URI, envelope.FacetSummary)
	if err != nil {
		return nil, err
	}
	return contents(req.Params.URI, h.Summary(ctx, id))
}

// HandleList serves users://list.
func (h *UserHandler) HandleList(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return contents(req.Params.URI, h.List(ctx))
}

// HandleActive serves users://active.
func (h *UserHandler) HandleActive(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return contents(req.Params.URI, h.Active(ctx))
}
