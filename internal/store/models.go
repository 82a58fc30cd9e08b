package store

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Sender types accepted for chat messages.
const (
	SenderUser  = "user"
	SenderAgent = "agent"
	SenderBot   = "bot"
)

// User status values. Status is free-form in storage; these are the ones
// the application writes.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// User is a support customer.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FirstName string    `gorm:"size:255;not null" json:"first_name"`
	LastName  string    `gorm:"size:255;not null" json:"last_name"`
	Phone     *string   `gorm:"size:50" json:"phone"`
	Status    string    `gorm:"size:20;not null;default:active;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name with a single space.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ChatMessage is one line of a support conversation. Messages are append-only.
type ChatMessage struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	SenderType string    `gorm:"size:10;not null" json:"sender_type"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	SessionID  *string   `gorm:"size:255;index" json:"session_id"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Session summarizes one session thread of a user.
type Session struct {
	SessionID       string    `json:"session_id"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// UserFillable lists the user columns a partial update may touch, keyed by
// their JSON name.
var UserFillable = []string{"email", "first_name", "last_name", "phone", "status"}

// dbTime scans aggregate timestamp columns. MySQL returns time.Time;
// SQLite returns the stored text because MAX() has no declared type.
type dbTime struct {
	time.Time
}

var dbTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

// Value implements driver.Valuer.
func (t dbTime) Value() (driver.Value, error) {
	return t.Time, nil
}

func (t *dbTime) parse(s string) error {
	for _, layout := range dbTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
