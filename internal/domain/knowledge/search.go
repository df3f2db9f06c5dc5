// Package knowledge searches and ranks knowledge hub posts.
//
// Search is keyword based: a query is split into lowercase terms and each post
// earns weighted credit for every term found in its title, tags, company,
// industry or body. Posts that match no term are dropped.
package knowledge

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/okian/campusconnect/internal/domain/model"
)

// Result limits and the trending window.
const (
	DefaultLimit   = 20
	TrendingLimit  = 10
	TrendingWindow = 7 * 24 * time.Hour
)

// Field weights for keyword hits.
const (
	titleWeight   = 3.0
	tagWeight     = 2.0
	contextWeight = 1.5
	bodyWeight    = 1.0

	// bothBonus rewards a term that appears in the title and the body.
	bothBonus = 1.2
)

// SortBy orders search results.
type SortBy string

// Sort orders.
const (
	SortRelevance SortBy = "relevance"
	SortRecent    SortBy = "recent"
	SortPopular   SortBy = "popular"
	SortHelpful   SortBy = "helpful"
)

// Valid reports whether s is a known order. The empty value means relevance.
func (s SortBy) Valid() bool {
	switch s {
	case "", SortRelevance, SortRecent, SortPopular, SortHelpful:
		return true
	}
	return false
}

// Query filters and pages a search. Zero fields do not filter.
type Query struct {
	Text          string
	Category      model.KnowledgeCategory
	Company       string
	Industry      string
	Skill         string
	CourseCode    string
	VerifiedOnly  bool
	EvergreenOnly bool
	SortBy        SortBy
	Page          int
	Limit         int
}

// Result is one page of search hits.
type Result struct {
	Posts []model.KnowledgePost `json:"posts"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Pages int                   `json:"pages"`
}

type hit struct {
	post  model.KnowledgePost
	score float64
}

// Search filters posts by q, orders them and returns the requested page.
func Search(posts []model.KnowledgePost, q Query) Result {
	terms := Terms(q.Text)
	hits := make([]hit, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		if !matches(p, &q) {
			continue
		}
		score := 0.0
		if len(terms) > 0 {
			if score = Relevance(p, terms); score == 0 {
				continue
			}
		}
		hits = append(hits, hit{post: *p, score: score})
	}

	slices.SortStableFunc(hits, order(q.SortBy, len(terms) > 0))

	page, limit := max(q.Page, 1), q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	res := Result{
		Posts: []model.KnowledgePost{},
		Total: len(hits),
		Page:  page,
		Pages: (len(hits) + limit - 1) / limit,
	}
	from := (page - 1) * limit
	if from >= len(hits) {
		return res
	}
	for _, h := range hits[from:min(from+limit, len(hits))] {
		res.Posts = append(res.Posts, h.post)
	}
	return res
}

// Trending returns up to limit posts created within TrendingWindow of now,
// most viewed first.
func Trending(posts []model.KnowledgePost, now time.Time, limit int) []model.KnowledgePost {
	if limit < 1 {
		limit = TrendingLimit
	}
	since := now.Add(-TrendingWindow)
	out := []model.KnowledgePost{}
	for _, p := range posts {
		if p.CreatedAt.Before(since) {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b model.KnowledgePost) int {
		return cmp.Or(
			cmp.Compare(b.Views, a.Views),
			cmp.Compare(b.VoteScore, a.VoteScore),
			b.CreatedAt.Compare(a.CreatedAt),
		)
	})
	return out[:min(limit, len(out))]
}

// Terms splits text into distinct lowercase search terms of two or more characters.
func Terms(text string) []string {
	var out []string
	for _, w := range words(text) {
		if len(w) < 2 || slices.Contains(out, w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Relevance scores p against terms. Zero means no term matched.
func Relevance(p *model.KnowledgePost, terms []string) float64 {
	title := words(p.Title)
	body := words(p.Body)
	tags := words(strings.Join(p.Tags, " "))
	where := words(p.Company + " " + p.Industry)

	score := 0.0
	for _, t := range terms {
		inTitle := slices.Contains(title, t)
		inBody := slices.Contains(body, t)
		s := 0.0
		if inTitle {
			s += titleWeight
		}
		if slices.Contains(tags, t) {
			s += tagWeight
		}
		if slices.Contains(where, t) {
			s += contextWeight
		}
		if inBody {
			s += bodyWeight
		}
		if inTitle && inBody {
			s *= bothBonus
		}
		score += s
	}
	return score
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matches(p *model.KnowledgePost, q *Query) bool {
	switch {
	case q.Category != "" && p.Category != q.Category:
		return false
	case q.VerifiedOnly && !p.Verified:
		return false
	case q.EvergreenOnly && !p.Evergreen:
		return false
	case !containsFold(p.Company, q.Company):
		return false
	case !containsFold(p.Industry, q.Industry):
		return false
	case q.Skill != "" && !slices.ContainsFunc(p.RelatedSkills, func(s string) bool { return strings.EqualFold(s, q.Skill) }):
		return false
	case q.CourseCode != "" && !slices.ContainsFunc(p.CourseCodes, func(c string) bool { return strings.EqualFold(c, q.CourseCode) }):
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

func order(by SortBy, scored bool) func(a, b hit) int {
	newest := func(a, b hit) int { return b.post.CreatedAt.Compare(a.post.CreatedAt) }
	switch by {
	case SortRecent:
		return newest
	case SortPopular:
		return func(a, b hit) int {
			return cmp.Or(cmp.Compare(b.post.VoteScore, a.post.VoteScore), cmp.Compare(b.post.Views, a.post.Views), newest(a, b))
		}
	case SortHelpful:
		return func(a, b hit) int {
			return cmp.Or(cmp.Compare(b.post.HelpfulCount, a.post.HelpfulCount), newest(a, b))
		}
	}
	if !scored {
		return func(a, b hit) int {
			return cmp.Or(cmp.Compare(b.post.VoteScore, a.post.VoteScore), newest(a, b))
		}
	}
	return func(a, b hit) int {
		return cmp.Or(cmp.Compare(b.score, a.score), cmp.Compare(b.post.VoteScore, a.post.VoteScore), newest(a, b))
	}
}
