package docstore

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/okian/campusconnect/internal/domain/model"
)

// Directions accepted by ConnectionFilter.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// ConnectionFilter narrows ListConnections to one user's requests.
type ConnectionFilter struct {
	UserID    string
	Direction string
	Status    model.ConnectionStatus
}

// GetConnection loads a connection request by id.
func (s *Store) GetConnection(ctx context.Context, id string) (c model.Connection, err error) {
	defer func(start time.Time) { observe("get_connection", start, err) }(time.Now())
	if id == "" {
		return model.Connection{}, ErrInvalidID
	}
	return get[model.Connection](ctx, s.db, connectionKeyPrefix+id)
}

// PutConnection stores a request and indexes it under both participants.
func (s *Store) PutConnection(ctx context.Context, c model.Connection) (err error) {
	defer func(start time.Time) { observe("put_connection", start, err) }(time.Now())
	if c.ID == "" {
		return ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := set(txn, connectionKeyPrefix+c.ID, c); err != nil {
			return err
		}
		if err := txn.Set([]byte(connectionByUserPref+c.From+":"+c.ID), []byte(c.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(connectionByUserPref+c.To+":"+c.ID), []byte(c.ID))
	})
}

// ListConnections returns the requests f.UserID takes part in, newest first.
func (s *Store) ListConnections(ctx context.Context, f ConnectionFilter) (out []model.Connection, err error) {
	defer func(start time.Time) { observe("list_connections", start, err) }(time.Now())
	if f.UserID == "" {
		return nil, ErrInvalidID
	}

	ids, err := scanKeys(s.db, connectionByUserPref+f.UserID+":")
	if err != nil {
		return nil, err
	}
	out = []model.Connection{}
	for _, id := range ids {
		c, err := get[model.Connection](ctx, s.db, connectionKeyPrefix+id)
		if err != nil {
			return nil, err
		}
		switch {
		case f.Status != "" && c.Status != f.Status:
		case f.Direction == DirectionIncoming && c.To != f.UserID:
		case f.Direction == DirectionOutgoing && c.From != f.UserID:
		default:
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Connection) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
