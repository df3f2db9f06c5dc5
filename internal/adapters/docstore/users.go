package docstore

import (
	"context"
	"time"

	"github.com/okian/campusconnect/internal/domain/model"
)

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (u model.User, err error) {
	defer func(start time.Time) { observe("get_user", start, err) }(time.Now())
	if id == "" {
		return model.User{}, ErrInvalidID
	}
	return get[model.User](ctx, s.db, userKeyPrefix+id)
}

// PutUser creates or replaces a user document.
func (s *Store) PutUser(ctx context.Context, u model.User) (err error) {
	defer func(start time.Time) { observe("put_user", start, err) }(time.Now())
	if u.ID == "" {
		return ErrInvalidID
	}
	return put(ctx, s.db, userKeyPrefix+u.ID, u)
}

// UpdateUser applies fn to the stored user atomically and returns the result.
// An error from fn aborts the update.
func (s *Store) UpdateUser(ctx context.Context, id string, fn func(*model.User) error) (u model.User, err error) {
	defer func(start time.Time) { observe("update_user", start, err) }(time.Now())
	if id == "" {
		return model.User{}, ErrInvalidID
	}
	return update(ctx, s.db, userKeyPrefix+id, fn)
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) (users []model.User, err error) {
	defer func(start time.Time) { observe("list_users", start, err) }(time.Now())
	return scan[model.User](ctx, s.db, userKeyPrefix, nil)
}

// ListMentors returns alumni and faculty ordered by id, available or not.
func (s *Store) ListMentors(ctx context.Context) (users []model.User, err error) {
	defer func(start time.Time) { observe("list_mentors", start, err) }(time.Now())
	return scan(ctx, s.db, userKeyPrefix, func(u *model.User) bool { return u.Role.CanMentor() })
}
