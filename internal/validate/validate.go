// Package validate holds the input predicates shared by tools and prompts.
// Every function is pure and never touches the store.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinSearchQueryLength is the shortest accepted search query, in bytes.
// Message search and user search share it.
const MinSearchQueryLength = 2

// SenderTypes lists the accepted message sender types.
var SenderTypes = []string{"user", "agent", "bot"}

var v = validator.New()

// SenderType reports whether s is exactly one of SenderTypes.
func SenderType(s string) bool {
	for _, t := range SenderTypes {
		if s == t {
			return true
		}
	}
	return false
}

// MessageText reports whether s, once trimmed, carries content. The literal
// "0" counts as empty.
func MessageText(s string) bool {
	return PresentString(strings.TrimSpace(s))
}

// PresentString reports whether s is neither empty nor the literal "0".
func PresentString(s string) bool {
	return s != "" && s != "0"
}

// SearchQuery reports whether q is long enough to search with.
func SearchQuery(q string) bool {
	return len(q) >= MinSearchQueryLength
}

// Email reports whether s is a deliverable-looking address: it must parse
// as an email and its domain must contain a dot.
func Email(s string) bool {
	if s == "" || v.Var(s, "email") != nil {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}
