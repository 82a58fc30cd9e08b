// Package factory creates realistic users and chat messages for tests and
// the seed command.
//
// The fake-data generator is passed in explicitly, so two factories never
// share random state and a fixed seed reproduces the same data.
package factory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/HendryAvila/chatdesk/internal/validate"
	"github.com/brianvoe/gofakeit/v7"
)

// Factory writes generated records through a store.
type Factory struct {
	store *store.Store
	faker *gofakeit.Faker
	now   func() time.Time
	seen  map[string]struct{}
}

// New creates a Factory. faker must not be nil; use gofakeit.New(seed).
func New(s *store.Store, faker *gofakeit.Faker) *Factory {
	return &Factory{
		store: s,
		faker: faker,
		now:   func() time.Time { return time.Now().UTC() },
		seen:  make(map[string]struct{}),
	}
}

// WithClock sets the instant message timestamps are generated relative to.
func (f *Factory) WithClock(now func() time.Time) *Factory {
	f.now = now
	return f
}

// UserAttrs overrides generated user fields. Zero values keep the default.
type UserAttrs struct {
	Email     string
	FirstName string
	LastName  string
	Phone     *string
	NoPhone   bool
	Status    string
}

// MessageAttrs overrides generated message fields. Zero values keep the
// default; a zero UserID creates a fresh user.
type MessageAttrs struct {
	UserID     int64
	Message    string
	SenderType string
	Timestamp  time.Time
	SessionID  *string
	NoSession  bool
}

// User creates one user.
func (f *Factory) User(ctx context.Context, attrs UserAttrs) (*store.User, error) {
	u := &store.User{
		Email:     attrs.Email,
		FirstName: attrs.FirstName,
		LastName:  attrs.LastName,
		Phone:     attrs.Phone,
		Status:    attrs.Status,
	}
	if u.Email == "" {
		u.Email = f.uniqueEmail()
	}
	if u.FirstName == "" {
		u.FirstName = f.faker.FirstName()
	}
	if u.LastName == "" {
		u.LastName = f.faker.LastName()
	}
	if u.Phone == nil && !attrs.NoPhone {
		phone := f.faker.Phone()
		u.Phone = &phone
	}
	if u.Status == "" {
		u.Status = store.StatusActive
	}

	if err := f.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Users creates n users sharing attrs. A fixed Email is only valid for n <= 1.
func (f *Factory) Users(ctx context.Context, n int, attrs UserAttrs) ([]*store.User, error) {
	users := make([]*store.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := f.User(ctx, attrs)
		if err != nil {
			return users, fmt.Errorf("creating user %d of %d: %w", i+1, n, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// Message creates one chat message.
func (f *Factory) Message(ctx context.Context, attrs MessageAttrs) (*store.ChatMessage, error) {
	m := &store.ChatMessage{
		UserID:     attrs.UserID,
		Message:    attrs.Message,
		SenderType: attrs.SenderType,
		Timestamp:  attrs.Timestamp,
		SessionID:  attrs.SessionID,
	}
	if m.UserID == 0 {
		u, err := f.User(ctx, UserAttrs{})
		if err != nil {
			return nil, err
		}
		m.UserID = u.ID
	}
	if m.Message == "" {
		m.Message = f.faker.Sentence(8)
	}
	if m.SenderType == "" {
		m.SenderType = f.faker.RandomString(validate.SenderTypes)
	}
	if m.Timestamp.IsZero() {
		now := f.now()
		m.Timestamp = f.faker.DateRange(now.AddDate(-1, 0, 0), now).UTC()
	}
	if m.SessionID == nil && !attrs.NoSession {
		id := f.faker.UUID()
		m.SessionID = &id
	}

	if err := f.store.AddMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Messages creates n chat messages sharing attrs.
func (f *Factory) Messages(ctx context.Context, n int, attrs MessageAttrs) ([]*store.ChatMessage, error) {
	msgs := make([]*store.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		m, err := f.Message(ctx, attrs)
		if err != nil {
			return msgs, fmt.Errorf("creating message %d of %d: %w", i+1, n, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

var safeDomains = []string{"example.com", "example.org", "example.net"}

// uniqueEmail returns an address under a reserved example domain that this
// factory has not handed out before.
func (f *Factory) uniqueEmail() string {
	for i := 0; ; i++ {
		local := strings.ToLower(f.faker.Username())
		if i > 0 {
			local = fmt.Sprintf("%s%d", local, i)
		}
		email := local + "@" + f.faker.RandomString(safeDomains)
		if _, dup := f.seen[email]; !dup {
			f.seen[email] = struct{}{}
			return email
		}
	}
}
