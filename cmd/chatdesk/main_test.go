package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/chatdesk/internal/server"
)

// run executes the CLI with args against a throwaway SQLite database.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "v.db"), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "chatdesk v"+server.Version+"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestMigrate(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "m.db"), "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "Schema is up to date (sqlite)") {
		t.Errorf("output = %q", out)
	}
}

func TestSeedThenQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "seed.db")

	out, err := run(t, db, "seed", "--users", "3", "--messages", "2", "--seed", "11")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "Seeded 3 users and 6 messages") {
		t.Errorf("seed output = %q", out)
	}

	out, err = run(t, db, "query", "users", "--output", "json")
	if err != nil {
		t.Fatalf("query users: %v", err)
	}
	var users []map[string]any
	if err := json.Unmarshal([]byte(out), &users); err != nil {
		t.Fatalf("query users json: %v\n%s", err, out)
	}
	if len(users) != 3 {
		t.Fatalf("got %d users, want 3", len(users))
	}

	out, err = run(t, db, "query", "messages", "--user", "1")
	if err != nil {
		t.Fatalf("query messages: %v", err)
	}
	if !strings.Contains(out, "Sender") || !strings.Contains(out, "2 messages") {
		t.Errorf("messages table = %q", out)
	}
}

func TestQueryUsers_StatusFilterTable(t *testing.T) {
	db := filepath.Join(t.TempDir(), "q.db")
	if _, err := run(t, db, "seed", "--users", "2", "--messages", "0", "--seed", "3"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, db, "query", "users", "--status", "suspended")
	if err != nil {
		t.Fatalf("query users: %v", err)
	}
	if !strings.Contains(out, "Email") || !strings.Contains(out, "0 users") {
		t.Errorf("output = %q", out)
	}
}

func TestQueryMessages_RequiresUser(t *testing.T) {
	if _, err := run(t, filepath.Join(t.TempDir(), "r.db"), "query", "messages"); err == nil {
		t.Error("expected error without --user")
	}
}

func TestSeed_RejectsNegative(t *testing.T) {
	if _, err := run(t, filepath.Join(t.TempDir(), "n.db"), "seed", "--users", "-1"); err == nil {
		t.Error("expected error for negative --users")
	}
}

func TestServe_RejectsBadTransport(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "s.db"), "serve", "--transport", "carrier-pigeon")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("err = %v", err)
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short"); got != "short" {
		t.Errorf("preview = %q", got)
	}
	long := strings.Repeat("é", previewWidth+5)
	got := preview(long)
	if len([]rune(got)) != previewWidth || !strings.HasSuffix(got, "...") {
		t.Errorf("preview(long) = %q", got)
	}
}
