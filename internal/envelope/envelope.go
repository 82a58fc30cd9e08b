// Package envelope builds the response mappings every tool and resource
// returns.
//
// Tool envelopes always carry "success"; failures add "error" plus any
// identifying context (user_id, message_id, email) but never a payload.
// Resource envelopes have no "success" flag. Each envelope also records a
// Kind, which is never serialized but lets callers log and count failures
// by category.
package envelope

import (
	"encoding/json"
)

// Kind classifies an envelope's outcome.
type Kind int

const (
	KindOK Kind = iota
	KindValidation
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Fields is the key/value payload of an envelope.
type Fields map[string]any

// Envelope is a serializable response.
type Envelope struct {
	kind   Kind
	fields Fields
}

// Success builds a tool success envelope.
func Success(payload Fields) Envelope {
	f := clone(payload)
	f["success"] = true
	return Envelope{kind: KindOK, fields: f}
}

// Failure builds a tool failure envelope. extra carries identifying context.
func Failure(kind Kind, msg string, extra Fields) Envelope {
	f := clone(extra)
	f["success"] = false
	f["error"] = msg
	return Envelope{kind: kind, fields: f}
}

// Resource builds a resource success envelope.
func Resource(payload Fields) Envelope {
	return Envelope{kind: KindOK, fields: clone(payload)}
}

// ResourceFailure builds a resource failure envelope. shape holds whatever
// zero-filled fields the resource family promises on error.
func ResourceFailure(kind Kind, msg string, shape Fields) Envelope {
	f := clone(shape)
	f["error"] = msg
	return Envelope{kind: kind, fields: f}
}

// Kind returns the outcome category.
func (e Envelope) Kind() Kind { return e.kind }

// OK reports whether the envelope represents success.
func (e Envelope) OK() bool { return e.kind == KindOK }

// Get returns the value stored under key.
func (e Envelope) Get(key string) any { return e.fields[key] }

// Error returns the failure message, or "" on success.
func (e Envelope) Error() string {
	s, _ := e.fields["error"].(string)
	return s
}

// Fields returns a copy of the envelope's fields.
func (e Envelope) Fields() Fields { return clone(e.fields) }

// MarshalJSON serializes the fields only.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(e.fields))
}

func clone(f Fields) Fields {
	out := make(Fields, len(f)+2)
	for k, v := range f {
		out[k] = v
	}
	return out
}
