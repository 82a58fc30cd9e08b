// Package resources implements MCP resource handlers for users and chats.
//
// Resources are read-only and URI-addressed (user://, users://, chat://).
// Their envelopes carry no success flag; see package envelope for the error
// shapes each family returns.
package resources

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/HendryAvila/chatdesk/internal/envelope"
	"github.com/mark3labs/mcp-go/mcp"
)

const mimeJSON = "application/json"

// Clock supplies the instant stamped on resource responses.
type Clock func() time.Time

func (c Clock) stamp() string {
	if c == nil {
		return envelope.Timestamp(time.Now())
	}
	return envelope.Timestamp(c())
}

// contents serializes env as the single JSON content of a resource read.
func contents(uri string, env envelope.Envelope) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}

// parseUserURI extracts the user id from a per-user URI of facet f,
// e.g. chat://12/history.
func parseUserURI(uri string, f envelope.Facet) (int64, error) {
	rest, ok := strings.CutPrefix(uri, f.Scheme()+"://")
	if !ok {
		return 0, fmt.Errorf("unexpected resource URI %q", uri)
	}
	idPart, facet, ok := strings.Cut(rest, "/")
	if !ok || facet != f.String() {
		return 0, fmt.Errorf("unexpected resource URI %q", uri)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id in %q", uri)
	}
	return id, nil
}

const sessionPrefix = "chat://session/"

// parseSessionURI extracts the session id from chat://session/{id}.
func parseSessionURI(uri string) (string, error) {
	id, ok := strings.CutPrefix(uri, sessionPrefix)
	if !ok || id == "" {
		return "", fmt.Errorf("unexpected session URI %q", uri)
	}
	return id, nil
}
