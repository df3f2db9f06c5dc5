package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/internal/domain/types"
	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

// RequestConnection opens a pending connection from one user to another. Any
// earlier request between the pair, in either direction and in any state,
// blocks a new one.
func (s *Service) RequestConnection(ctx context.Context, fromID, toID, message string) (model.Connection, error) {
	if err := s.running(); err != nil {
		return model.Connection{}, err
	}
	fromID, toID = strings.TrimSpace(fromID), strings.TrimSpace(toID)
	switch {
	case fromID == "" || toID == "":
		return model.Connection{}, fmt.Errorf("%w: both users are required", ErrInvalidInput)
	case fromID == toID:
		return model.Connection{}, fmt.Errorf("%w: cannot connect with yourself", ErrInvalidInput)
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	from, err := s.store.GetUser(ctx, fromID)
	if err != nil {
		return model.Connection{}, storeErr(err, "user")
	}
	if _, err := s.store.GetUser(ctx, toID); err != nil {
		return model.Connection{}, storeErr(err, "user")
	}
	if slices.Contains(from.Connections, toID) {
		return model.Connection{}, ErrConnectionExists
	}
	existing, err := s.store.ListConnections(ctx, docstore.ConnectionFilter{UserID: fromID})
	if err != nil {
		return model.Connection{}, storeErr(err, "connections")
	}
	for i := range existing {
		if existing[i].Other(fromID) == toID {
			return model.Connection{}, ErrConnectionExists
		}
	}

	now := s.now().UTC()
	c := model.Connection{
		ID:        s.newID(),
		From:      fromID,
		To:        toID,
		Message:   strings.TrimSpace(message),
		Status:    model.ConnectionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.PutConnection(ctx, c); err != nil {
		return model.Connection{}, storeErr(err, "connection")
	}

	metrics.RecordConnectionRequest(string(c.Status))
	s.logger.Info(ctx, "connection requested",
		logger.String("connectionID", c.ID),
		logger.String("fromID", c.From),
		logger.String("toID", c.To),
	)
	return c, nil
}

// RespondConnection accepts or rejects a pending request. Only its recipient
// may answer. Accepting links both users and awards each of them a new
// connection.
func (s *Service) RespondConnection(ctx context.Context, id, actorID string, status model.ConnectionStatus) (model.Connection, error) {
	if err := s.running(); err != nil {
		return model.Connection{}, err
	}
	if status != model.ConnectionAccepted && status != model.ConnectionRejected {
		return model.Connection{}, fmt.Errorf("%w: status must be accepted or rejected", ErrInvalidInput)
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	c, err := s.store.GetConnection(ctx, id)
	if err != nil {
		return model.Connection{}, storeErr(err, "connection")
	}
	if actorID == "" || actorID != c.To {
		return model.Connection{}, fmt.Errorf("%w: only the recipient can answer this request", ErrForbidden)
	}
	if c.Status != model.ConnectionPending {
		return model.Connection{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.Status, status)
	}

	now := s.now().UTC()
	c.Status = status
	c.UpdatedAt = now
	if err := s.store.PutConnection(ctx, c); err != nil {
		return model.Connection{}, storeErr(err, "connection")
	}
	metrics.RecordConnectionRequest(string(c.Status))

	if c.Status != model.ConnectionAccepted {
		return c, nil
	}
	for _, uid := range []string{c.From, c.To} {
		other := c.Other(uid)
		_, err := s.store.UpdateUser(ctx, uid, func(u *model.User) error {
			if !slices.Contains(u.Connections, other) {
				u.Connections = append(u.Connections, other)
				u.UpdatedAt = now
			}
			return nil
		})
		if err != nil {
			return model.Connection{}, storeErr(err, "user")
		}
		s.recordActivity(ctx, model.Activity{
			ID:         "connection:" + c.ID + ":" + uid,
			UserID:     uid,
			Kind:       model.ActivityConnectionAdded,
			OccurredAt: now,
		})
	}
	return c, nil
}

// ListConnections returns the public profiles of a user's connections. Users
// deleted since connecting are skipped.
func (s *Service) ListConnections(ctx context.Context, userID string) ([]model.User, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	users := make([]model.User, 0, len(u.Connections))
	for _, id := range u.Connections {
		c, err := s.store.GetUser(ctx, id)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr(err, "user")
		}
		users = append(users, c)
	}
	return types.NewContacts(users), nil
}

// PendingConnections returns the requests waiting for userID's answer, newest first.
func (s *Service) PendingConnections(ctx context.Context, userID string) ([]model.Connection, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeErr(err, "user")
	}
	out, err := s.store.ListConnections(ctx, docstore.ConnectionFilter{
		UserID:    userID,
		Direction: docstore.DirectionIncoming,
		Status:    model.ConnectionPending,
	})
	return out, storeErr(err, "connections")
}
