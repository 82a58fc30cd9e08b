package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/HendryAvila/chatdesk/internal/factory"
	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "tools.db")})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestFactory(t *testing.T, s *store.Store) *factory.Factory {
	t.Helper()
	return factory.New(s, gofakeit.New(7))
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// call invokes h and decodes the JSON envelope it returns.
func call(t *testing.T, h handler, args map[string]interface{}) (map[string]any, *mcp.CallToolResult) {
	t.Helper()
	res, err := h(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(resultText(res)), &body); err != nil {
		t.Fatalf("result is not JSON: %v (%s)", err, resultText(res))
	}
	return body, res
}

func mustSucceed(t *testing.T, body map[string]any, res *mcp.CallToolResult) {
	t.Helper()
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	if res.IsError {
		t.Error("IsError should be false on success")
	}
}

func mustFail(t *testing.T, body map[string]any, res *mcp.CallToolResult, wantErr string) {
	t.Helper()
	if body["success"] != false {
		t.Fatalf("expected failure, got %v", body)
	}
	if body["error"] != wantErr {
		t.Errorf("error = %q, want %q", body["error"], wantErr)
	}
	if !res.IsError {
		t.Error("IsError should be true on failure")
	}
}

func list(t *testing.T, body map[string]any, key string) []any {
	t.Helper()
	v, ok := body[key].([]any)
	if !ok {
		t.Fatalf("%s = %#v, want array", key, body[key])
	}
	return v
}

func strPtr(s string) *string { return &s }

var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, f *factory.Factory, attrs factory.UserAttrs) *store.User {
	t.Helper()
	u, err := f.User(context.Background(), attrs)
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return u
}

func mustMessage(t *testing.T, f *factory.Factory, attrs factory.MessageAttrs) *store.ChatMessage {
	t.Helper()
	m, err := f.Message(context.Background(), attrs)
	if err != nil {
		t.Fatalf("creating message: %v", err)
	}
	return m
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestDefinitions(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		def      mcp.Tool
		name     string
		required []string
	}{
		{NewChatHistoryTool(s).Definition(), "get_chat_history", []string{"userId"}},
		{NewRecentMessagesTool(s).Definition(), "get_recent_messages", []string{"userId"}},
		{NewSessionHistoryTool(s).Definition(), "get_session_history", []string{"sessionId"}},
		{NewAddMessageTool(s).Definition(), "add_chat_message", []string{"userId", "message", "senderType"}},
		{NewSearchMessagesTool(s).Definition(), "search_chat_messages", []string{"userId", "query"}},
		{NewActiveSessionsTool(s).Definition(), "get_active_sessions", []string{"userId"}},
		{NewMessageCountTool(s).Definition(), "get_message_count", []string{"userId"}},
		{NewMessageByIDTool(s).Definition(), "get_message_by_id", []string{"messageId"}},
		{NewUserInfoTool(s).Definition(), "get_user_info", []string{"userId"}},
		{NewSearchUsersTool(s).Definition(), "search_users", []string{"query"}},
		{NewActiveUsersTool(s).Definition(), "get_active_users", nil},
		{NewUserByEmailTool(s).Definition(), "get_user_by_email", []string{"email"}},
		{NewCreateUserTool(s).Definition(), "create_user", []string{"email", "firstName", "lastName"}},
		{NewUpdateUserTool(s).Definition(), "update_user", []string{"userId", "userData"}},
	}
	for _, tt := range tests {
		if tt.def.Name != tt.name {
			t.Errorf("tool name = %q, want %q", tt.def.Name, tt.name)
		}
		for _, r := range tt.required {
			found := false
			for _, got := range tt.def.InputSchema.Required {
				if got == r {
					found = true
				}
			}
			if !found {
				t.Errorf("%s: '%s' should be required", tt.name, r)
			}
		}
	}
}

// ─── Argument helpers ────────────────────────────────────────────────────────

func TestIDArg(t *testing.T) {
	tests := []struct {
		val     interface{}
		want    int64
		wantErr string
	}{
		{float64(5), 5, ""},
		{"12", 12, ""},
		{json.Number("9"), 9, ""},
		{nil, 0, "'userId' is required"},
		{"", 0, "'userId' is required"},
		{float64(1.5), 0, "'userId' must be an integer"},
		{"abc", 0, "'userId' must be an integer"},
		{true, 0, "'userId' must be an integer"},
	}
	for _, tt := range tests {
		got, err := idArg(makeReq(map[string]interface{}{"userId": tt.val}), "userId")
		if tt.wantErr != "" {
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("idArg(%v) err = %v, want %q", tt.val, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("idArg(%v) = %d, %v; want %d", tt.val, got, err, tt.want)
		}
	}

	if _, err := idArg(makeReq(map[string]interface{}{}), "userId"); err == nil {
		t.Error("missing key should be an error")
	}
}

func TestLimitAndOffsetArgs(t *testing.T) {
	req := makeReq(map[string]interface{}{"limit": float64(-3), "offset": float64(-1)})
	if got := limitArg(req, "limit", 50); got != 50 {
		t.Errorf("negative limit = %d, want default 50", got)
	}
	if got := offsetArg(req, "offset"); got != 0 {
		t.Errorf("negative offset = %d, want 0", got)
	}

	req = makeReq(map[string]interface{}{"limit": float64(7), "offset": float64(3)})
	if limitArg(req, "limit", 50) != 7 || offsetArg(req, "offset") != 3 {
		t.Error("explicit limit/offset ignored")
	}
}

// ─── get_chat_history ────────────────────────────────────────────────────────

func TestChatHistory_NewestFirstWithPagination(t *testing.T) {
	s := newTestStore(t)
	f := newTestFactory(t, s)
	u := mustUser(t, f, factory.UserAttrs{})
	for i := 0; i < 5; i++ {
		mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, Message: string(rune('a' + i)), Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}

	body, res := call(t, NewChatHistoryTool(s).Handle, map[string]interface{}{
		"userId": float64(u.ID), "limit": float64(2), "offset": float64(1),
	})
	mustSucceed(t, body, res)

	msgs := list(t, body, "messages")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].(map[string]any)["message"] != "d" {
		t.Errorf("first message = %v, want d", msgs[0])
	}
	if body["count"] != float64(2) || body["limit"] != float64(2) || body["offset"] != float64(1) {
		t.Errorf("metadata = %v", body)
	}
	if body["user_id"] != float64(u.ID) {
		t.Errorf("user_id = %v", body["user_id"])
	}
}

func TestChatHistory_UnknownUser(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewChatHistoryTool(s).Handle, map[string]interface{}{"userId": float64(404)})
	mustFail(t, body, res, "User not found")
	if _, ok := body["messages"]; ok {
		t.Error("tool failure must not carry messages")
	}
}

func TestChatHistory_MissingUserID(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewChatHistoryTool(s).Handle, map[string]interface{}{})
	mustFail(t, body, res, "'userId' is required")
}

// ─── get_recent_messages ─────────────────────────────────────────────────────

func TestRecentMessages(t *testing.T) {
	s := newTestStore(t)
	f := newTestFactory(t, s)
	u := mustUser(t, f, factory.UserAttrs{})
	for i := 0; i < 12; i++ {
		mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}

	body, res := call(t, NewRecentMessagesTool(s).Handle, map[string]interface{}{"userId": float64(u.ID)})
	mustSucceed(t, body, res)
	if got := len(list(t, body, "messages")); got != 10 {
		t.Errorf("default limit returned %d, want 10", got)
	}

	body, res = call(t, NewRecentMessagesTool(s).Handle, map[string]interface{}{"userId": float64(999)})
	mustFail(t, body, res, "User not found")
	if body["user_id"] != float64(999) {
		t.Errorf("user_id = %v, want 999", body["user_id"])
	}
}

// ─── get_session_history ─────────────────────────────────────────────────────

func TestSessionHistory(t *testing.T) {
	s := newTestStore(t)
	f := newTestFactory(t, s)
	u := mustUser(t, f, factory.UserAttrs{})
	mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, SessionID: strPtr("abc"), Timestamp: base})
	mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, SessionID: strPtr("abc"), Timestamp: base.Add(time.Minute)})
	mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, SessionID: strPtr("other")})

	body, res := call(t, NewSessionHistoryTool(s).Handle, map[string]interface{}{"sessionId": "abc"})
	mustSucceed(t, body, res)
	if body["count"] != float64(2) || body["session_id"] != "abc" {
		t.Errorf("body = %v", body)
	}

	body, res = call(t, NewSessionHistoryTool(s).Handle, map[string]interface{}{"sessionId": "nope"})
	mustSucceed(t, body, res)
	if len(list(t, body, "messages")) != 0 {
		t.Error("unknown session should return no messages")
	}

	body, res = call(t, NewSessionHistoryTool(s).Handle, map[string]interface{}{})
	mustFail(t, body, res, "'sessionId' is required")
}

// ─── add_chat_message ────────────────────────────────────────────────────────

func TestAddMessage_AllSenderTypes(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{})
	tool := NewAddMessageTool(s)

	for _, st := range []string{"user", "agent", "bot"} {
		body, res := call(t, tool.Handle, map[string]interface{}{
			"userId": float64(u.ID), "message": "hi", "senderType": st,
		})
		mustSucceed(t, body, res)
		msg := body["message"].(map[string]any)
		if msg["sender_type"] != st {
			t.Errorf("sender_type = %v, want %s", msg["sender_type"], st)
		}
		if msg["session_id"] != nil {
			t.Errorf("session_id = %v, want null", msg["session_id"])
		}
	}
}

func TestAddMessage_RejectsBlankText(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{})
	tool := NewAddMessageTool(s)

	for _, text := range []string{"", "0", "   "} {
		body, res := call(t, tool.Handle, map[string]interface{}{
			"userId": float64(u.ID), "message": text, "senderType": "user",
		})
		mustFail(t, body, res, "Message cannot be empty")
	}
}

func TestAddMessage_RejectsSenderType(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{})

	body, res := call(t, NewAddMessageTool(s).Handle, map[string]interface{}{
		"userId": float64(u.ID), "message": "hi", "senderType": "admin",
	})
	mustFail(t, body, res, "Invalid sender type. Must be user, agent, or bot")
}

func TestAddMessage_ValidatesBeforeUserLookup(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewAddMessageTool(s).Handle, map[string]interface{}{
		"userId": float64(404), "message": "", "senderType": "user",
	})
	mustFail(t, body, res, "Message cannot be empty")
}

func TestAddMessage_UnknownUser(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewAddMessageTool(s).Handle, map[string]interface{}{
		"userId": float64(404), "message": "hi", "senderType": "user",
	})
	mustFail(t, body, res, "User not found")
	if body["user_id"] != float64(404) {
		t.Errorf("user_id = %v", body["user_id"])
	}
}

func TestAddMessage_RoundTripByID(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{})

	added, res := call(t, NewAddMessageTool(s).Handle, map[string]interface{}{
		"userId": float64(u.ID), "message": "Need help", "senderType": "agent", "sessionId": "s-1",
	})
	mustSucceed(t, added, res)
	created := added["message"].(map[string]any)

	got, res := call(t, NewMessageByIDTool(s).Handle, map[string]interface{}{"messageId": created["id"]})
	mustSucceed(t, got, res)
	fetched := got["message"].(map[string]any)

	for _, key := range []string{"message", "sender_type", "session_id", "user_id"} {
		if fetched[key] != created[key] {
			t.Errorf("%s = %v, want %v", key, fetched[key], created[key])
		}
	}
}

// ─── get_message_by_id ───────────────────────────────────────────────────────

func TestMessageByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewMessageByIDTool(s).Handle, map[string]interface{}{"messageId": float64(77)})
	mustFail(t, body, res, "Message not found")
	if body["message_id"] != float64(77) {
		t.Errorf("message_id = %v, want 77", body["message_id"])
	}
}

// ─── get_message_count ───────────────────────────────────────────────────────

func TestMessageCount(t *testing.T) {
	s := newTestStore(t)
	f := newTestFactory(t, s)
	u := mustUser(t, f, factory.UserAttrs{})
	if _, err := f.Messages(context.Background(), 3, factory.MessageAttrs{UserID: u.ID}); err != nil {
		t.Fatal(err)
	}

	body, res := call(t, NewMessageCountTool(s).Handle, map[string]interface{}{"userId": float64(u.ID)})
	mustSucceed(t, body, res)
	if body["count"] != float64(3) {
		t.Errorf("count = %v, want 3", body["count"])
	}

	body, res = call(t, NewMessageCountTool(s).Handle, map[string]interface{}{"userId": float64(999)})
	mustSucceed(t, body, res)
	if body["count"] != float64(0) {
		t.Errorf("unknown user count = %v, want 0", body["count"])
	}
}

// ─── search_chat_messages ────────────────────────────────────────────────────

func TestSearchMessages(t *testing.T) {
	s := newTestStore(t)
	f := newTestFactory(t, s)
	u := mustUser(t, f, factory.UserAttrs{})
	mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, Message: "Hello world"})
	mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, Message: "Something else"})

	body, res := call(t, NewSearchMessagesTool(s).Handle, map[string]interface{}{
		"userId": float64(u.ID), "query": "hello",
	})
	mustSucceed(t, body, res)
	msgs := list(t, body, "messages")
	if len(msgs) != 1 || msgs[0].(map[string]any)["message"] != "Hello world" {
		t.Errorf("messages = %v", msgs)
	}
	if body["query"] != "hello" {
		t.Errorf("query = %v", body["query"])
	}
}

func TestSearchMessages_ShortQueryIsValidationNotNotFound(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewSearchMessagesTool(s).Handle, map[string]interface{}{
		"userId": float64(404), "query": "a",
	})
	mustFail(t, body, res, "Search query must be at least 2 characters long")

	body, res = call(t, NewSearchMessagesTool(s).Handle, map[string]interface{}{
		"userId": float64(404), "query": "ab",
	})
	mustFail(t, body, res, "User not found")
}

// ─── get_active_sessions ─────────────────────────────────────────────────────

func TestActiveSessions_ExcludesNullSessions(t *testing.T) {
	s := newTestStore(t)
	f := newTestFactory(t, s)
	u := mustUser(t, f, factory.UserAttrs{})
	mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, SessionID: strPtr("s1"), Timestamp: base})
	mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, SessionID: strPtr("s2"), Timestamp: base.Add(time.Hour)})
	mustMessage(t, f, factory.MessageAttrs{UserID: u.ID, NoSession: true, Timestamp: base.Add(2 * time.Hour)})

	body, res := call(t, NewActiveSessionsTool(s).Handle, map[string]interface{}{"userId": float64(u.ID)})
	mustSucceed(t, body, res)

	sessions := list(t, body, "sessions")
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	first := sessions[0].(map[string]any)
	if first["session_id"] != "s2" {
		t.Errorf("most recent session = %v, want s2", first["session_id"])
	}
	if _, ok := first["last_message_time"]; !ok {
		t.Error("last_message_time missing")
	}
	for _, raw := range sessions {
		if raw.(map[string]any)["session_id"] == nil {
			t.Error("null session leaked into result")
		}
	}
}

func TestActiveSessions_UnknownUser(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewActiveSessionsTool(s).Handle, map[string]interface{}{"userId": float64(5)})
	mustFail(t, body, res, "User not found")
}

// ─── get_user_info ───────────────────────────────────────────────────────────

func TestUserInfo(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{Email: "info@example.com"})

	body, res := call(t, NewUserInfoTool(s).Handle, map[string]interface{}{"userId": float64(u.ID)})
	mustSucceed(t, body, res)
	if body["user"].(map[string]any)["email"] != "info@example.com" {
		t.Errorf("user = %v", body["user"])
	}

	body, res = call(t, NewUserInfoTool(s).Handle, map[string]interface{}{"userId": float64(999)})
	mustFail(t, body, res, "User not found")
	if body["user_id"] != float64(999) {
		t.Errorf("user_id = %v", body["user_id"])
	}
}

// ─── search_users ────────────────────────────────────────────────────────────

func TestSearchUsers(t *testing.T) {
	s := newTestStore(t)
	f := newTestFactory(t, s)
	mustUser(t, f, factory.UserAttrs{FirstName: "John", LastName: "Doe", Email: "john@example.com"})
	mustUser(t, f, factory.UserAttrs{FirstName: "Jane", LastName: "Smith", Email: "jane@example.com"})

	body, res := call(t, NewSearchUsersTool(s).Handle, map[string]interface{}{"query": "john"})
	mustSucceed(t, body, res)
	if body["count"] != float64(1) || body["query"] != "john" {
		t.Errorf("body = %v", body)
	}
}

func TestSearchUsers_ShortQuery(t *testing.T) {
	s := newTestStore(t)
	for _, q := range []string{"", "a"} {
		body, res := call(t, NewSearchUsersTool(s).Handle, map[string]interface{}{"query": q})
		mustFail(t, body, res, "Search query must be at least 2 characters long")
	}
}

// ─── get_active_users ────────────────────────────────────────────────────────

func TestActiveUsers(t *testing.T) {
	s := newTestStore(t)
	f := newTestFactory(t, s)
	mustUser(t, f, factory.UserAttrs{FirstName: "Zed", LastName: "A"})
	mustUser(t, f, factory.UserAttrs{FirstName: "Amy", LastName: "B"})
	mustUser(t, f, factory.UserAttrs{FirstName: "Bob", LastName: "C", Status: store.StatusInactive})

	body, res := call(t, NewActiveUsersTool(s).Handle, map[string]interface{}{})
	mustSucceed(t, body, res)
	users := list(t, body, "users")
	if len(users) != 2 {
		t.Fatalf("got %d active users, want 2", len(users))
	}
	if users[0].(map[string]any)["first_name"] != "Amy" {
		t.Errorf("first = %v, want Amy", users[0])
	}
}

// ─── get_user_by_email ───────────────────────────────────────────────────────

func TestUserByEmail(t *testing.T) {
	s := newTestStore(t)
	mustUser(t, newTestFactory(t, s), factory.UserAttrs{Email: "found@example.com"})
	tool := NewUserByEmailTool(s)

	body, res := call(t, tool.Handle, map[string]interface{}{"email": "found@example.com"})
	mustSucceed(t, body, res)

	body, res = call(t, tool.Handle, map[string]interface{}{"email": "invalid-email"})
	mustFail(t, body, res, "Invalid email address format")

	body, res = call(t, tool.Handle, map[string]interface{}{"email": "missing@example.com"})
	mustFail(t, body, res, "User not found")
	if body["email"] != "missing@example.com" {
		t.Errorf("email = %v", body["email"])
	}
}

// ─── create_user ─────────────────────────────────────────────────────────────

func TestCreateUser_ThenDuplicate(t *testing.T) {
	s := newTestStore(t)
	tool := NewCreateUserTool(s)
	args := map[string]interface{}{
		"email": "new@example.com", "firstName": "New", "lastName": "User", "phone": "555-0100",
	}

	body, res := call(t, tool.Handle, args)
	mustSucceed(t, body, res)
	user := body["user"].(map[string]any)
	if user["status"] != "active" {
		t.Errorf("status = %v, want active", user["status"])
	}
	if user["phone"] != "555-0100" {
		t.Errorf("phone = %v", user["phone"])
	}
	if body["message"] != "User created successfully" {
		t.Errorf("message = %v", body["message"])
	}

	body, res = call(t, tool.Handle, args)
	mustFail(t, body, res, "User with this email already exists")
}

func TestCreateUser_InvalidEmailFirst(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewCreateUserTool(s).Handle, map[string]interface{}{
		"email": "invalid-email", "firstName": "", "lastName": "",
	})
	mustFail(t, body, res, "Invalid email address format")
}

func TestCreateUser_RequiresNames(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewCreateUserTool(s).Handle, map[string]interface{}{
		"email": "ok@example.com", "lastName": "X",
	})
	mustFail(t, body, res, "'firstName' is required")
}

// ─── update_user ─────────────────────────────────────────────────────────────

func TestUpdateUser_PartialKeepsEmail(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{Email: "stay@example.com", FirstName: "Old"})

	body, res := call(t, NewUpdateUserTool(s).Handle, map[string]interface{}{
		"userId":   float64(u.ID),
		"userData": map[string]interface{}{"first_name": "New"},
	})
	mustSucceed(t, body, res)
	user := body["user"].(map[string]any)
	if user["first_name"] != "New" || user["email"] != "stay@example.com" {
		t.Errorf("user = %v", user)
	}
	if body["message"] != "User updated successfully" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestUpdateUser_NotFoundBeforeEmailValidation(t *testing.T) {
	s := newTestStore(t)

	body, res := call(t, NewUpdateUserTool(s).Handle, map[string]interface{}{
		"userId":   float64(999),
		"userData": map[string]interface{}{"email": "bad"},
	})
	mustFail(t, body, res, "User not found")
	if body["user_id"] != float64(999) {
		t.Errorf("user_id = %v", body["user_id"])
	}
}

func TestUpdateUser_InvalidEmail(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{})

	body, res := call(t, NewUpdateUserTool(s).Handle, map[string]interface{}{
		"userId":   float64(u.ID),
		"userData": map[string]interface{}{"email": "invalid-email"},
	})
	mustFail(t, body, res, "Invalid email address format")
}

func TestUpdateUser_IgnoresUnknownFieldsAndAcceptsAliases(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{LastName: "Before"})

	body, res := call(t, NewUpdateUserTool(s).Handle, map[string]interface{}{
		"userId": float64(u.ID),
		"userData": map[string]interface{}{
			"lastName": "After",
			"id":       float64(1000),
			"bogus":    "x",
			"status":   "suspended",
		},
	})
	mustSucceed(t, body, res)
	user := body["user"].(map[string]any)
	if user["last_name"] != "After" || user["status"] != "suspended" {
		t.Errorf("user = %v", user)
	}
	if user["id"] != float64(u.ID) {
		t.Errorf("id changed to %v", user["id"])
	}
}

func TestUpdateUser_RequiresObject(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, newTestFactory(t, s), factory.UserAttrs{})

	body, res := call(t, NewUpdateUserTool(s).Handle, map[string]interface{}{
		"userId": float64(u.ID), "userData": "first_name=x",
	})
	mustFail(t, body, res, "'userData' must be an object")
}

func TestUserChanges(t *testing.T) {
	changes, msg := userChanges(map[string]any{"phone": nil, "email": nil, "first_name": "A"})
	if msg != "" {
		t.Fatalf("unexpected validation: %s", msg)
	}
	if v, ok := changes["phone"]; !ok || v != nil {
		t.Errorf("phone should be cleared, got %v", changes)
	}
	if _, ok := changes["email"]; ok {
		t.Error("null email should be treated as absent")
	}

	if _, msg := userChanges(map[string]any{"first_name": 5.0}); msg != "Invalid value for 'first_name'" {
		t.Errorf("msg = %q", msg)
	}
	if _, msg := userChanges(map[string]any{"email": 5.0}); msg != "Invalid email address format" {
		t.Errorf("msg = %q", msg)
	}
}
