package envelope

import (
	"fmt"
	"time"
)

// Facet names the trailing segment of a per-user canonical URI.
type Facet int

const (
	FacetProfile Facet = iota
	FacetSummary
	FacetHistory
	FacetRecent
	FacetSessions
	FacetCount
)

var facets = [...]struct {
	scheme string
	name   string
	key    string
}{
	FacetProfile:  {"user", "profile", "profile_url"},
	FacetSummary:  {"user", "summary", "summary_url"},
	FacetHistory:  {"chat", "history", "history_url"},
	FacetRecent:   {"chat", "recent", "recent_url"},
	FacetSessions: {"chat", "sessions", "sessions_url"},
	FacetCount:    {"chat", "count", "count_url"},
}

// Fixed resource URIs.
const (
	UsersListURI   = "users://list"
	UsersActiveURI = "users://active"
	SessionKey     = "session_url"
)

func (f Facet) String() string { return facets[f].name }

// Scheme returns the URI scheme the facet lives under.
func (f Facet) Scheme() string { return facets[f].scheme }

// Key returns the response field that carries the facet's own URI.
func (f Facet) Key() string { return facets[f].key }

// URI builds the canonical URI of facet f for userID.
func (f Facet) URI(userID int64) string {
	return fmt.Sprintf("%s://%d/%s", facets[f].scheme, userID, facets[f].name)
}

// Template returns the URI template the facet is registered under.
func (f Facet) Template() string {
	return fmt.Sprintf("%s://{userId}/%s", facets[f].scheme, facets[f].name)
}

// SessionURI builds the canonical URI of a chat session.
func SessionURI(sessionID string) string {
	return "chat://session/" + sessionID
}

// TimestampLayout is ISO-8601 with a numeric offset.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// Timestamp formats t for a resource response.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
