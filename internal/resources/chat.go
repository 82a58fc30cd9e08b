package resources

import (
	"context"
	"errors"
	"strings"

	"github.com/HendryAvila/chatdesk/internal/envelope"
	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// Defaults for chat resource listings.
const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

// ChatHandler serves the chat:// resources.
type ChatHandler struct {
	store *store.Store
	now   Clock
}

// NewChatHandler creates a ChatHandler. A nil clock uses the wall clock.
func NewChatHandler(s *store.Store, now Clock) *ChatHandler {
	return &ChatHandler{store: s, now: now}
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func chatTemplate(uri, name, desc string) mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(uri, name,
		mcp.WithTemplateDescription(desc),
		mcp.WithTemplateMIMEType(mimeJSON),
	)
}

// HistoryTemplate returns the template definition for chat://{userId}/history.
func (h *ChatHandler) HistoryTemplate() mcp.ResourceTemplate {
	return chatTemplate(envelope.FacetHistory.Template(), "chat_history", "Chat message history for a user")
}

// RecentTemplate returns the template definition for chat://{userId}/recent.
func (h *ChatHandler) RecentTemplate() mcp.ResourceTemplate {
	return chatTemplate(envelope.FacetRecent.Template(), "recent_messages", "Recent chat messages for a user")
}

// SessionTemplate returns the template definition for chat://session/{sessionId}.
func (h *ChatHandler) SessionTemplate() mcp.ResourceTemplate {
	return chatTemplate(sessionPrefix+"{sessionId}", "session_history", "Chat messages for a specific session")
}

// SessionsTemplate returns the template definition for chat://{userId}/sessions.
func (h *ChatHandler) SessionsTemplate() mcp.ResourceTemplate {
	return chatTemplate(envelope.FacetSessions.Template(), "user_sessions", "Active chat sessions for a user")
}

// CountTemplate returns the template definition for chat://{userId}/count.
func (h *ChatHandler) CountTemplate() mcp.ResourceTemplate {
	return chatTemplate(envelope.FacetCount.Template(), "message_count", "Total message count for a user")
}

// ─── Envelopes ───────────────────────────────────────────────────────────────

// messagesShape is the full shape of a per-user message listing; failures
// zero-fill it.
func (h *ChatHandler) messagesShape(f envelope.Facet, userID int64, msgs []store.ChatMessage) envelope.Fields {
	if msgs == nil {
		msgs = []store.ChatMessage{}
	}
	fields := envelope.Fields{
		"user_id":   userID,
		"messages":  msgs,
		"count":     len(msgs),
		"timestamp": h.now.stamp(),
	}
	fields[f.Key()] = f.URI(userID)
	return fields
}

func (h *ChatHandler) userMessages(ctx context.Context, f envelope.Facet, userID int64, page store.Page) envelope.Envelope {
	user, err := h.store.FindUser(ctx, userID)
	if err == nil && user == nil {
		return envelope.ResourceFailure(envelope.KindNotFound, "User not found", h.messagesShape(f, userID, nil))
	}
	var msgs []store.ChatMessage
	if err == nil {
		msgs, err = h.store.UserMessages(ctx, userID, page)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Str("resource", f.URI(userID)).Msg("reading messages")
		return envelope.ResourceFailure(envelope.KindStore, "Failed to retrieve messages", h.messagesShape(f, userID, nil))
	}
	return envelope.Resource(h.messagesShape(f, userID, msgs))
}

// History builds the chat://{id}/history envelope, newest first.
func (h *ChatHandler) History(ctx context.Context, userID int64, limit, offset int) envelope.Envelope {
	return h.userMessages(ctx, envelope.FacetHistory, userID, store.Page{Limit: limit, Offset: offset})
}

// Recent builds the chat://{id}/recent envelope, newest first.
func (h *ChatHandler) Recent(ctx context.Context, userID int64, limit, offset int) envelope.Envelope {
	return h.userMessages(ctx, envelope.FacetRecent, userID, store.Page{Limit: limit, Offset: offset})
}

// Session builds the chat://session/{id} envelope, newest first.
func (h *ChatHandler) Session(ctx context.Context, sessionID string, limit int) envelope.Envelope {
	msgs, err := h.store.SessionMessages(ctx, sessionID, limit)
	if msgs == nil {
		msgs = []store.ChatMessage{}
	}
	shape := envelope.Fields{
		"session_id":        sessionID,
		"messages":          msgs,
		"count":             len(msgs),
		envelope.SessionKey: envelope.SessionURI(sessionID),
		"timestamp":         h.now.stamp(),
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", sessionID).Msg("reading session")
		shape["messages"] = []store.ChatMessage{}
		shape["count"] = 0
		return envelope.ResourceFailure(envelope.KindStore, "Failed to retrieve messages", shape)
	}
	return envelope.Resource(shape)
}

// Sessions builds the chat://{id}/sessions envelope.
func (h *ChatHandler) Sessions(ctx context.Context, userID int64) envelope.Envelope {
	shape := func(sessions []store.Session) envelope.Fields {
		if sessions == nil {
			sessions = []store.Session{}
		}
		fields := envelope.Fields{
			"user_id":   userID,
			"sessions":  sessions,
			"count":     len(sessions),
			"timestamp": h.now.stamp(),
		}
		fields[envelope.FacetSessions.Key()] = envelope.FacetSessions.URI(userID)
		return fields
	}

	_, err := h.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return envelope.ResourceFailure(envelope.KindNotFound, "User not found", shape(nil))
	}
	var sessions []store.Session
	if err == nil {
		sessions, err = h.store.ActiveSessions(ctx, userID)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("reading sessions")
		return envelope.ResourceFailure(envelope.KindStore, "Failed to retrieve sessions", shape(nil))
	}
	return envelope.Resource(shape(sessions))
}

// Count builds the chat://{id}/count envelope. Unknown users count 0.
func (h *ChatHandler) Count(ctx context.Context, userID int64) envelope.Envelope {
	n, err := h.store.CountMessages(ctx, userID)
	fields := envelope.Fields{
		"user_id":       userID,
		"message_count": n,
		"timestamp":     h.now.stamp(),
	}
	fields[envelope.FacetCount.Key()] = envelope.FacetCount.URI(userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("counting messages")
		fields["message_count"] = 0
		return envelope.ResourceFailure(envelope.KindStore, "Failed to count messages", fields)
	}
	return envelope.Resource(fields)
}

// ─── MCP handlers ────────────────────────────────────────────────────────────

// isSessionURI reports whether uri addresses a session. chat://session/x
// also matches the per-user templates, so every per-user handler defers
// to HandleSession for these.
func isSessionURI(uri string) bool {
	return strings.HasPrefix(uri, sessionPrefix)
}

func (h *ChatHandler) handleUser(ctx context.Context, req mcp.ReadResourceRequest, f envelope.Facet, build func(int64) envelope.Envelope) ([]mcp.ResourceContents, error) {
	if isSessionURI(req.Params.URI) {
		return h.HandleSession(ctx, req)
	}
	id, err := parseUserURI(req.Params.URI, f)
	if err != nil {
		return nil, err
	}
	return contents(req.Params.URI, build(id))
}

// HandleHistory serves chat://{userId}/history.
func (h *ChatHandler) HandleHistory(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return h.handleUser(ctx, req, envelope.FacetHistory, func(id int64) envelope.Envelope {
		return h.History(ctx, id, DefaultLimit, DefaultOffset)
	})
}

// HandleRecent serves chat://{userId}/recent.
func (h *ChatHandler) HandleRecent(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return h.handleUser(ctx, req, envelope.FacetRecent, func(id int64) envelope.Envelope {
		return h.Recent(ctx, id, DefaultLimit, DefaultOffset)
	})
}

// HandleSessions serves chat://{userId}/sessions.
func (h *ChatHandler) HandleSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return h.handleUser(ctx, req, envelope.FacetSessions, func(id int64) envelope.Envelope {
		return h.Sessions(ctx, id)
	})
}

// HandleCount serves chat://{userId}/count.
func (h *ChatHandler) HandleCount(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return h.handleUser(ctx, req, envelope.FacetCount, func(id int64) envelope.Envelope {
		return h.Count(ctx, id)
	})
}

// HandleSession serves chat://session/{sessionId}.
func (h *ChatHandler) HandleSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := parseSessionURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	return contents(req.Params.URI, h.Session(ctx, id, DefaultLimit))
}
