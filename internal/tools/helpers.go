// Package tools provides the MCP tool handlers for chat support.
//
// Every tool follows the same shape:
//   - a struct holding its dependencies, built by a NewXTool constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() validates arguments, queries the store and returns an envelope
//
// Domain failures (bad input, missing rows, store errors) are returned as
// failure envelopes with IsError set, never as Go errors.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/HendryAvila/chatdesk/internal/envelope"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// limitArg is intArg with non-positive values replaced by defaultVal.
func limitArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	if n := intArg(req, key, defaultVal); n > 0 {
		return n
	}
	return defaultVal
}

// offsetArg is intArg clamped at zero.
func offsetArg(req mcp.CallToolRequest, key string) int {
	return max(intArg(req, key, 0), 0)
}

// idArg extracts a required integer identifier. Numeric strings are
// accepted because some clients quote ids.
func idArg(req mcp.CallToolRequest, key string) (int64, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("'%s' is required", key)
	}

	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), nil
		}
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, fmt.Errorf("'%s' is required", key)
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("'%s' must be an integer", key)
}

// optionalString returns a pointer to the string argument key, or nil when
// it is absent, null or empty.
func optionalString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// invalid builds a validation failure envelope.
func invalid(msg string) envelope.Envelope {
	return envelope.Failure(envelope.KindValidation, msg, nil)
}

// storeFailure logs err against the tool and returns a generic failure
// envelope. The underlying error never reaches the caller.
func storeFailure(ctx context.Context, tool string, err error, msg string, extra envelope.Fields) envelope.Envelope {
	zerolog.Ctx(ctx).Error().Err(err).Str("tool", tool).Msg(msg)
	return envelope.Failure(envelope.KindStore, msg, extra)
}

// respond serializes env as the JSON text content of a tool result.
func respond(env envelope.Envelope) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	res := mcp.NewToolResultText(string(data))
	res.IsError = !env.OK()
	return res, nil
}
