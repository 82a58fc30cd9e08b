package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// FindUser returns the user with id, or (nil, nil) when none exists.
func (s *Store) FindUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.GetUser(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// GetUser returns the user with id, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindUserByEmail returns the user with the exact email, or (nil, nil).
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserListOptions filters ListUsers.
type UserListOptions struct {
	Status string
	Limit  int
}

// ListUsers returns users ordered by id, optionally filtered by status.
func (s *Store) ListUsers(ctx context.Context, opts UserListOptions) ([]User, error) {
	q := s.db.WithContext(ctx).Model(&User{})
	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}
	q = Page{Limit: opts.Limit}.apply(q.Order("id ASC"))

	users := []User{}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// ActiveUsers returns up to limit users with status active, ordered by
// first name then last name.
func (s *Store) ActiveUsers(ctx context.Context, limit int) ([]User, error) {
	users := []User{}
	err := Page{Limit: limit}.apply(
		s.db.WithContext(ctx).
			Where("status = ?", StatusActive).
			Order("first_name ASC").Order("last_name ASC").Order("id ASC"),
	).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("listing active users: %w", err)
	}
	return users, nil
}

// SearchUsers returns up to limit users whose first name, last name or
// email contains query, ordered by id.
func (s *Store) SearchUsers(ctx context.Context, query string, limit int) ([]User, error) {
	pattern := likePattern(query)
	users := []User{}
	err := Page{Limit: limit}.apply(
		s.db.WithContext(ctx).
			Where("first_name LIKE ? ESCAPE '!' OR last_name LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!'",
				pattern, pattern, pattern).
			Order("id ASC"),
	).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return users, nil
}

// CreateUser inserts u, filling its id and timestamps. An empty status
// becomes active. A taken email yields ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.Status == "" {
		u.Status = StatusActive
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("creating user: %w", translate(err))
	}
	return nil
}

// UpdateUser applies changes to the user with id and returns the re-read
// row. Keys outside UserFillable are ignored. A nil value clears the column.
func (s *Store) UpdateUser(ctx context.Context, id int64, changes map[string]any) (*User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	cols := make(map[string]any, len(changes))
	for _, key := range UserFillable {
		if v, ok := changes[key]; ok {
			cols[key] = v
		}
	}

	if len(cols) > 0 {
		if err := s.db.WithContext(ctx).Model(u).Updates(cols).Error; err != nil {
			return nil, fmt.Errorf("updating user %d: %w", id, translate(err))
		}
	}

	return s.GetUser(ctx, id)
}
