package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	"github.com/okian/campusconnect/internal/domain/model"
)

// GetUser loads a user profile.
func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	if err := s.running(); err != nil {
		return model.User{}, err
	}
	u, err := s.store.GetUser(ctx, id)
	return u, storeErr(err, "user")
}

// PutUser creates or replaces a profile. Points and activity counters are
// owned by the service and survive replacement, as do connections when u
// carries none. An empty role means student.
func (s *Service) PutUser(ctx context.Context, u model.User) (model.User, error) {
	if err := s.running(); err != nil {
		return model.User{}, err
	}
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return model.User{}, fmt.Errorf("%w: user id must not be empty", ErrInvalidInput)
	}
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	if !u.Role.Valid() {
		return model.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, u.Role)
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	now := s.now().UTC()
	existing, err := s.store.GetUser(ctx, u.ID)
	switch {
	case err == nil:
		u.Gamification = existing.Gamification
		u.CreatedAt = existing.CreatedAt
		if u.Connections == nil {
			u.Connections = existing.Connections
		}
	case errors.Is(err, docstore.ErrNotFound):
		u.Gamification = model.Gamification{}
		u.CreatedAt = now
	default:
		return model.User{}, storeErr(err, "user")
	}
	u.UpdatedAt = now

	if err := s.store.PutUser(ctx, u); err != nil {
		return model.User{}, storeErr(err, "user")
	}
	return u, nil
}
