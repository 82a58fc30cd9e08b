package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// newestFirst orders messages by creation instant, most recent first, with
// id as the tiebreak so equal timestamps still paginate deterministically.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("timestamp DESC").Order("id DESC")
}

// AddMessage inserts m. A zero Timestamp is set to the store clock.
func (s *Store) AddMessage(ctx context.Context, m *ChatMessage) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	} else {
		m.Timestamp = m.Timestamp.UTC()
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(m).Error; err != nil {
		return fmt.Errorf("adding message: %w", translate(err))
	}
	return nil
}

// GetMessage returns the message with id, or ErrNotFound.
func (s *Store) GetMessage(ctx context.Context, id int64) (*ChatMessage, error) {
	var m ChatMessage
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// UserMessages returns a page of userID's messages, newest first.
func (s *Store) UserMessages(ctx context.Context, userID int64, page Page) ([]ChatMessage, error) {
	msgs := []ChatMessage{}
	err := page.apply(newestFirst(
		s.db.WithContext(ctx).Where("user_id = ?", userID),
	)).Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("listing messages for user %d: %w", userID, err)
	}
	return msgs, nil
}

// SessionMessages returns up to limit messages in sessionID, newest first.
// The session is not required to exist.
func (s *Store) SessionMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	msgs := []ChatMessage{}
	err := Page{Limit: limit}.apply(newestFirst(
		s.db.WithContext(ctx).Where("session_id = ?", sessionID),
	)).Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("listing messages for session %q: %w", sessionID, err)
	}
	return msgs, nil
}

// SearchMessages returns up to limit of userID's messages containing query,
// newest first. Matching is case-insensitive for ASCII on SQLite and follows
// the column collation on MySQL.
func (s *Store) SearchMessages(ctx context.Context, userID int64, query string, limit int) ([]ChatMessage, error) {
	msgs := []ChatMessage{}
	err := Page{Limit: limit}.apply(newestFirst(
		s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Where("message LIKE ? ESCAPE '!'", likePattern(query)),
	)).Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("searching messages for user %d: %w", userID, err)
	}
	return msgs, nil
}

// ActiveSessions groups userID's messages by non-null session id and
// returns each session with its latest message time, most recent first.
func (s *Store) ActiveSessions(ctx context.Context, userID int64) ([]Session, error) {
	var rows []struct {
		SessionID       string
		LastMessageTime dbTime
	}
	err := s.db.WithContext(ctx).
		Model(&ChatMessage{}).
		Select("session_id, MAX(timestamp) AS last_message_time").
		Where("user_id = ?", userID).
		Where("session_id IS NOT NULL").
		Group("session_id").
		Order("last_message_time DESC").Order("session_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing sessions for user %d: %w", userID, err)
	}

	sessions := make([]Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, Session{
			SessionID:       r.SessionID,
			LastMessageTime: r.LastMessageTime.Time,
		})
	}
	return sessions, nil
}

// CountMessages returns how many messages userID has. An unknown user has 0.
func (s *Store) CountMessages(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&ChatMessage{}).Where("user_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting messages for user %d: %w", userID, err)
	}
	return n, nil
}
