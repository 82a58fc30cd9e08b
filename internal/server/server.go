// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources. No business logic
// lives here, only wiring and instrumentation.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/HendryAvila/chatdesk/internal/config"
	"github.com/HendryAvila/chatdesk/internal/logger"
	"github.com/HendryAvila/chatdesk/internal/metrics"
	"github.com/HendryAvila/chatdesk/internal/prompts"
	"github.com/HendryAvila/chatdesk/internal/resources"
	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/HendryAvila/chatdesk/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Deps are the shared dependencies every handler draws from.
type Deps struct {
	Store   *store.Store
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	// Clock stamps resource responses. Nil uses the wall clock.
	Clock func() time.Time
}

// OpenStore opens the configured database and runs migrations.
//
// The returned cleanup function closes the connection and must be called
// on shutdown. It is always non-nil and safe to call even on error.
func OpenStore(cfg config.Database, zl zerolog.Logger) (*store.Store, func(), error) {
	sc := store.Config{
		Driver: cfg.Driver,
		Path:   cfg.Path,
		Logger: logger.Gorm(zl),
	}
	if cfg.Driver == config.DriverMySQL {
		sc.DSN = cfg.DSN()
	}

	st, err := store.Open(sc)
	if err != nil {
		return nil, noop, fmt.Errorf("opening %s store: %w", cfg.Driver, err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			zl.Warn().Err(err).Msg("store close")
		}
	}
	return st, cleanup, nil
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

// New creates and configures the MCP server with all tools, prompts and
// resources registered.
func New(cfg config.Server, deps Deps) *server.MCPServer {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	version := cfg.Version
	if version == "" {
		version = Version
	}

	s := server.NewMCPServer(
		cfg.Name,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
		server.WithToolHandlerMiddleware(instrumentTools(deps.Logger, deps.Metrics)),
	)

	registerChatTools(s, deps.Store)
	registerUserTools(s, deps.Store)
	registerResources(s, deps)

	greeting := prompts.NewGreetingPrompt()
	s.AddPrompt(greeting.Definition(), instrumentPrompt("support_greeting", deps.Metrics, greeting.Handle))

	return s
}

// ─── Registration ────────────────────────────────────────────────────────────

// registerChatTools registers the 8 chat message tools.
func registerChatTools(s *server.MCPServer, st *store.Store) {
	// --- Reading ---
	history := tools.NewChatHistoryTool(st)
	s.AddTool(history.Definition(), history.Handle)

	recent := tools.NewRecentMessagesTool(st)
	s.AddTool(recent.Definition(), recent.Handle)

	session := tools.NewSessionHistoryTool(st)
	s.AddTool(session.Definition(), session.Handle)

	byID := tools.NewMessageByIDTool(st)
	s.AddTool(byID.Definition(), byID.Handle)

	count := tools.NewMessageCountTool(st)
	s.AddTool(count.Definition(), count.Handle)

	// --- Search & sessions ---
	search := tools.NewSearchMessagesTool(st)
	s.AddTool(search.Definition(), search.Handle)

	sessions := tools.NewActiveSessionsTool(st)
	s.AddTool(sessions.Definition(), sessions.Handle)

	// --- Writing ---
	add := tools.NewAddMessageTool(st)
	s.AddTool(add.Definition(), add.Handle)
}

// registerUserTools registers the 6 user tools.
func registerUserTools(s *server.MCPServer, st *store.Store) {
	info := tools.NewUserInfoTool(st)
	s.AddTool(info.Definition(), info.Handle)

	byEmail := tools.NewUserByEmailTool(st)
	s.AddTool(byEmail.Definition(), byEmail.Handle)

	search := tools.NewSearchUsersTool(st)
	s.AddTool(search.Definition(), search.Handle)

	active := tools.NewActiveUsersTool(st)
	s.AddTool(active.Definition(), active.Handle)

	create := tools.NewCreateUserTool(st)
	s.AddTool(create.Definition(), create.Handle)

	update := tools.NewUpdateUserTool(st)
	s.AddTool(update.Definition(), update.Handle)
}

// registerResources registers the 9 user and chat resources.
func registerResources(s *server.MCPServer, deps Deps) {
	users := resources.NewUserHandler(deps.Store, deps.Clock)
	chat := resources.NewChatHandler(deps.Store, deps.Clock)
	read := func(name string, h readFunc) readFunc {
		return instrumentResource(name, deps.Logger, deps.Metrics, h)
	}

	list := users.ListResource()
	s.AddResource(list, read(list.Name, users.HandleList))

	active := users.ActiveResource()
	s.AddResource(active, read(active.Name, users.HandleActive))

	templates := []struct {
		def    mcp.ResourceTemplate
		handle readFunc
	}{
		{users.ProfileTemplate(), users.HandleProfile},
		{users.SummaryTemplate(), users.HandleSummary},
		{chat.HistoryTemplate(), chat.HandleHistory},
		{chat.RecentTemplate(), chat.HandleRecent},
		{chat.SessionTemplate(), chat.HandleSession},
		{chat.SessionsTemplate(), chat.HandleSessions},
		{chat.CountTemplate(), chat.HandleCount},
	}
	for _, t := range templates {
		s.AddResourceTemplate(t.def, read(t.def.Name, t.handle))
	}
}

// ─── Instrumentation ─────────────────────────────────────────────────────────

// requestLogger prefers a logger the transport already attached to ctx,
// which carries the request id over HTTP.
func requestLogger(ctx context.Context, zl zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return zl
}

type readFunc = func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)

// instrumentTools attaches a request-scoped logger to the context and
// records one metric sample per call. A result with IsError set counts as
// an error even though the handler returned nil.
func instrumentTools(zl zerolog.Logger, m *metrics.Metrics) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name := req.Params.Name
			log := requestLogger(ctx, zl).With().Str("tool", name).Logger()
			ctx = log.WithContext(ctx)

			m.ToolCallsInFlight.Inc()
			start := time.Now()
			res, err := next(ctx, req)
			elapsed := time.Since(start)
			m.ToolCallsInFlight.Dec()

			status := metrics.StatusOK
			if err != nil || (res != nil && res.IsError) {
				status = metrics.StatusError
			}
			m.ObserveTool(name, status, elapsed)
			log.Debug().Str("status", status).Dur("elapsed", elapsed).Msg("tool call")
			return res, err
		}
	}
}

func instrumentResource(name string, zl zerolog.Logger, m *metrics.Metrics, next readFunc) readFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		log := requestLogger(ctx, zl).With().Str("resource", name).Str("uri", req.Params.URI).Logger()
		ctx = log.WithContext(ctx)

		start := time.Now()
		out, err := next(ctx, req)
		elapsed := time.Since(start)

		status := metrics.StatusOK
		if err != nil {
			status = metrics.StatusError
			log.Warn().Err(err).Msg("resource read failed")
		}
		m.ObserveResource(name, status, elapsed)
		log.Debug().Str("status", status).Dur("elapsed", elapsed).Msg("resource read")
		return out, err
	}
}

func instrumentPrompt(name string, m *metrics.Metrics, next server.PromptHandlerFunc) server.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		m.ObservePrompt(name)
		return next(ctx, req)
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to use the chat support server.
func serverInstructions() string {
	return `You have access to a customer support chat database.

## Users
- get_user_info / get_user_by_email: look up one customer
- search_users: match by first name, last name or email (partial, case-insensitive)
- get_active_users: active customers ordered by name
- create_user / update_user: maintain customer records

## Chat messages
- get_chat_history: paginated history for a user (limit, offset), newest first
- get_recent_messages: the latest messages for a user
- get_session_history: every message of one conversation session
- search_chat_messages: messages of one user containing a phrase (at least 2 characters)
- get_active_sessions: a user's sessions, most recent first
- add_chat_message: record a message from the user, an agent or a bot
- get_message_by_id / get_message_count

Every tool returns a JSON object with "success". On failure, "error" holds
a readable message; do not retry validation failures with the same input.

## Resources
user://{userId}/profile, user://{userId}/summary, users://list, users://active,
chat://{userId}/history, chat://{userId}/recent, chat://{userId}/sessions,
chat://{userId}/count and chat://session/{sessionId} return JSON snapshots.

## Prompts
support_greeting(userName, issueType) drafts an opening reply to a customer.`
}
