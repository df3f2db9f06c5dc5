// Package matching scores mentors and events against a user and ranks them.
//
// Every scorer is a pure function over value inputs. Missing data never fails a
// call: each factor has its own neutral default, and an empty result is a valid
// outcome when no candidate is eligible.
package matching

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"
)

// Score bounds and shared constants.
const (
	minScore     = 0
	maxScore     = 100
	neutralScore = 50

	// reasonSeparator joins reason clauses in evaluation order.
	reasonSeparator = " • "
)

// Default result limits.
const (
	DefaultLimit         = 10
	DefaultTrendingLimit = 5
	DefaultSkillsLimit   = 5
)

// Match is a scored candidate. Details holds every rounded factor score keyed by
// factor name.
type Match[T any] struct {
	Target  T
	Score   int
	Reason  string
	Details map[string]int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source used to decide whether an event is upcoming.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine ranks mentors and events for a user. It holds no mutable state, so one
// Engine can serve concurrent callers.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// term is a comparable string with its original spelling kept for reasons.
type term struct {
	raw  string
	norm string
}

// terms normalizes values to lowercase, trimmed terms. Blank values are dropped;
// an empty input yields an empty result.
func terms(values []string) []term {
	out := make([]term, 0, len(values))
	for _, v := range values {
		raw := strings.TrimSpace(v)
		if raw == "" {
			continue
		}
		out = append(out, term{raw: raw, norm: strings.ToLower(raw)})
	}
	return out
}

// norm lowercases and trims a single value.
func norm(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// overlaps is the bidirectional substring match: a contains b or b contains a.
func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// overlapsAny reports whether s overlaps any of the given terms.
func overlapsAny(s string, others []term) bool {
	for _, o := range others {
		if overlaps(s, o.norm) {
			return true
		}
	}
	return false
}

// clamp bounds a factor score to [0,100].
func clamp(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}

// percent returns part/whole as a clamped percentage.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return clamp(float64(part) / float64(whole) * maxScore)
}

// factor is one weighted component of a match score.
type factor struct {
	name   string
	score  float64
	weight float64
}

// aggregate combines factors into the rounded 0..100 match score and the
// per-factor details.
func aggregate(factors []factor) (int, map[string]int) {
	total := 0.0
	details := make(map[string]int, len(factors))
	for _, f := range factors {
		s := clamp(f.score)
		total += s * f.weight
		details[f.name] = int(math.Round(s))
	}
	return int(clamp(math.Round(total))), details
}

// rank sorts matches by score descending, keeping input order for equal scores,
// and truncates to limit. A limit <= 0 yields an empty slice.
func rank[T any](matches []Match[T], limit int) []Match[T] {
	if limit <= 0 {
		return []Match[T]{}
	}
	sortStableDesc(matches, func(m Match[T]) int { return m.Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// sortStableDesc orders items by key descending; equal keys keep their order.
func sortStableDesc[T any, K cmp.Ordered](items []T, key func(T) K) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
}

func joinReasons(reasons []string, fallback string) string {
	if len(reasons) == 0 {
		return fallback
	}
	return strings.Join(reasons, reasonSeparator)
}
