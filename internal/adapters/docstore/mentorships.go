package docstore

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/okian/campusconnect/internal/domain/model"
)

// Participant roles accepted by MentorshipFilter.
const (
	RoleMentor = "mentor"
	RoleMentee = "mentee"
)

// MentorshipFilter narrows ListMentorships. With a UserID and no Role, requests
// where the user is either side are returned.
type MentorshipFilter struct {
	UserID string
	Role   string
	Status model.MentorshipStatus
}

// GetMentorship loads a mentorship request by id.
func (s *Store) GetMentorship(ctx context.Context, id string) (m model.MentorshipRequest, err error) {
	defer func(start time.Time) { observe("get_mentorship", start, err) }(time.Now())
	if id == "" {
		return model.MentorshipRequest{}, ErrInvalidID
	}
	return get[model.MentorshipRequest](ctx, s.db, mentorshipKeyPrefix+id)
}

// PutMentorship stores a request together with its per-participant index keys.
func (s *Store) PutMentorship(ctx context.Context, m model.MentorshipRequest) (err error) {
	defer func(start time.Time) { observe("put_mentorship", start, err) }(time.Now())
	if m.ID == "" {
		return ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := set(txn, mentorshipKeyPrefix+m.ID, m); err != nil {
			return err
		}
		if err := txn.Set([]byte(mentorshipByMentorPref+m.MentorID+":"+m.ID), []byte(m.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(mentorshipByMenteePref+m.MenteeID+":"+m.ID), []byte(m.ID))
	})
}

// ListMentorships returns the requests matching f, newest first.
func (s *Store) ListMentorships(ctx context.Context, f MentorshipFilter) (out []model.MentorshipRequest, err error) {
	defer func(start time.Time) { observe("list_mentorships", start, err) }(time.Now())

	keep := func(m *model.MentorshipRequest) bool {
		return f.Status == "" || m.Status == f.Status
	}

	if f.UserID == "" {
		out, err = scan(ctx, s.db, mentorshipKeyPrefix, keep)
	} else {
		out, err = s.mentorshipsOf(ctx, f.UserID, f.Role, keep)
	}
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b model.MentorshipRequest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) mentorshipsOf(ctx context.Context, userID, role string, keep func(*model.MentorshipRequest) bool) ([]model.MentorshipRequest, error) {
	var prefixes []string
	switch role {
	case RoleMentor:
		prefixes = []string{mentorshipByMentorPref}
	case RoleMentee:
		prefixes = []string{mentorshipByMenteePref}
	default:
		prefixes = []string{mentorshipByMentorPref, mentorshipByMenteePref}
	}

	seen := make(map[string]struct{})
	out := []model.MentorshipRequest{}
	for _, p := range prefixes {
		ids, err := scanKeys(s.db, p+userID+":")
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			m, err := get[model.MentorshipRequest](ctx, s.db, mentorshipKeyPrefix+id)
			if err != nil {
				return nil, err
			}
			if keep(&m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}
