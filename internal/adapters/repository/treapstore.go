package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/campusconnect/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: points DESC, then userID ASC. "less" means ranks earlier, so an
// in-order traversal yields the leaderboard from best to worst. Every node
// tracks its subtree size, which turns Rank into an O(log n) descent.

type node struct {
	id     string
	points int64
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aPoints, aID) ranks before (bPoints, bID).
func less(aPoints int64, aID string, bPoints int64, bID string) bool {
	if aPoints != bPoints {
		return aPoints > bPoints
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n, in *node) *node {
	if n == nil {
		return in
	}
	if less(in.points, in.id, n.points, n.id) {
		n.left = insert(n.left, in)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, in)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, points int64) *node {
	if n == nil {
		return nil
	}
	switch {
	case points == n.points && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, points)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, points)
		}
	case less(points, id, n.points, n.id):
		n.left = deleteNode(n.left, id, points)
	default:
		n.right = deleteNode(n.right, id, points)
	}
	fix(n)
	return n
}

// position returns the 1-based in-order position of (id, points).
func position(n *node, id string, points int64) int {
	pos := 0
	for n != nil {
		switch {
		case id == n.id:
			return pos + nsize(n.left) + 1
		case less(points, id, n.points, n.id):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{Rank: len(*out) + 1, UserID: n.id, Points: n.points})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is the default Store.
type TreapStore struct {
	mu      sync.RWMutex
	root    *node
	byID    map[string]int64
	rng     *rand.Rand
	seed    uint64
	initial map[string]int64
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:    make(map[string]int64),
		seed:    uint64(time.Now().UnixNano()),
		initial: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15)) //nolint:gosec // priorities only need to be unpredictable enough to balance
	for id, p := range s.initial {
		s.put(id, p)
	}
	s.initial = nil
	metrics.UpdateLeaderboardUsers(len(s.byID))
	return s
}

// put stores the total for id. Must be called with s.mu held.
func (s *TreapStore) put(id string, points int64) {
	if old, ok := s.byID[id]; ok {
		s.root = deleteNode(s.root, id, old)
	}
	s.byID[id] = points
	s.root = insert(s.root, &node{id: id, points: points, prio: s.rng.Uint64(), size: 1})
}

// AddPoints implements Store.AddPoints in O(log n) expected time.
func (s *TreapStore) AddPoints(_ context.Context, userID string, delta int64) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if userID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_user")
		return 0, ErrInvalidUser
	}

	s.mu.Lock()
	old, known := s.byID[userID]
	total := max(old+delta, 0)
	if !known || total != old {
		s.put(userID, total)
	}
	count := len(s.byID)
	s.mu.Unlock()

	if !known {
		metrics.UpdateLeaderboardUsers(count)
	}
	return total, nil
}

// Rank returns the user's rank and total in O(log n).
func (s *TreapStore) Rank(_ context.Context, userID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	points, ok := s.byID[userID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{Rank: position(s.root, userID, points), UserID: userID, Points: points}, nil
}

// TopN returns the top n entries ordered by points desc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	return out, nil
}

// Count returns the number of ranked users.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
