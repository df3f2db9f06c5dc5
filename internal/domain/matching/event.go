package matching

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/okian/campusconnect/internal/domain/model"
)

// Event factor names as reported in Match.Details.
const (
	FactorInterestMatch   = "interest_match"
	FactorMajorMatch      = "major_match"
	FactorCategoryMatch   = "category_match"
	FactorConnectionMatch = "connection_match"
	FactorTagMatch        = "tag_match"
)

// Event factor weights. They sum to 1.
const (
	weightInterests   = 0.35
	weightMajor       = 0.25
	weightCategory    = 0.20
	weightConnections = 0.15
	weightTags        = 0.05
)

const (
	majorWordPoints        = 25
	majorWordMinLength     = 3 // words must be longer than this
	newcomerCategoryScore  = 50
	regularCategoryScore   = 70
	connectionsForMaxScore = 5
	connectionsPerStep     = 20

	interestReasonMinScore   = 70
	majorReasonMinScore      = 80
	connectionReasonMinScore = 50

	eventFallbackReason = "Recommended based on your profile"
)

// EventMatch is a scored event candidate.
type EventMatch = Match[model.Event]

// eventSignals are the normalized inputs of the event scorers.
type eventSignals struct {
	interests      []term
	skills         []term
	major          string
	department     string
	connections    map[string]struct{}
	eventsAttended int

	title       string
	description string
	text        string // title and description joined by a space
	category    string
	tags        []term
	attendees   []string
}

func extractEventSignals(user *model.User, event *model.Event) eventSignals {
	s := eventSignals{
		interests:      terms(user.Profile.Interests),
		skills:         terms(user.Profile.Skills),
		major:          norm(user.Profile.Major),
		department:     norm(user.Profile.Department),
		connections:    make(map[string]struct{}, len(user.Connections)),
		eventsAttended: user.Gamification.Stats.EventsAttended,
		title:          strings.ToLower(event.Title),
		description:    strings.ToLower(event.Description),
		category:       norm(string(event.Category)),
		tags:           terms(event.Tags),
		attendees:      make([]string, 0, len(event.Attendees)),
	}
	s.text = s.title + " " + s.description
	for _, c := range user.Connections {
		if c != "" {
			s.connections[c] = struct{}{}
		}
	}
	for _, a := range event.Attendees {
		s.attendees = append(s.attendees, a.UserID)
	}
	return s
}

// interestMatch is the percentage of interests mentioned in the event title or
// description. Neutral when the user lists no interests.
func interestMatch(s *eventSignals) float64 {
	if len(s.interests) == 0 {
		return neutralScore
	}
	hits := 0
	for _, interest := range s.interests {
		if strings.Contains(s.text, interest.norm) {
			hits++
		}
	}
	return percent(hits, len(s.interests))
}

// majorMatch checks the user's major and department against the event title and
// category: full containment scores 100, otherwise every long word found adds
// 25. Neutral when the user has neither major nor department.
func majorMatch(s *eventSignals) float64 {
	if s.major == "" && s.department == "" {
		return neutralScore
	}
	mentioned := func(v string) bool {
		return strings.Contains(s.title, v) || strings.Contains(s.category, v)
	}
	for _, v := range []string{s.major, s.department} {
		if v != "" && mentioned(v) {
			return maxScore
		}
	}

	score := 0.0
	words := append(strings.Fields(s.major), strings.Fields(s.department)...)
	for _, w := range words {
		if utf8.RuneCountInString(w) > majorWordMinLength && mentioned(w) {
			score += majorWordPoints
		}
	}
	return clamp(score)
}

// categoryMatch is a flat heuristic: newcomers get a neutral score, anyone who
// attended an event before gets a mild preference. It does not look at which
// categories were attended.
func categoryMatch(s *eventSignals) float64 {
	if s.eventsAttended <= 0 {
		return newcomerCategoryScore
	}
	return regularCategoryScore
}

// connectionMatch grows with the number of distinct connections attending and
// saturates at five.
func connectionMatch(s *eventSignals) float64 {
	if len(s.connections) == 0 || len(s.attendees) == 0 {
		return 0
	}
	counted := make(map[string]struct{}, len(s.connections))
	for _, id := range s.attendees {
		if _, ok := s.connections[id]; ok {
			counted[id] = struct{}{}
		}
	}
	attending := len(counted)
	return clamp(float64(attending) / connectionsForMaxScore * maxScore)
}

// tagMatch is the percentage of event tags overlapping any of the user's skills.
func tagMatch(s *eventSignals) float64 {
	if len(s.skills) == 0 || len(s.tags) == 0 {
		return 0
	}
	hits := 0
	for _, tag := range s.tags {
		if overlapsAny(tag.norm, s.skills) {
			hits++
		}
	}
	return percent(hits, len(s.tags))
}

// MatchEvent scores a single event for a user without eligibility checks.
func (e *Engine) MatchEvent(user model.User, event model.Event) EventMatch {
	s := extractEventSignals(&user, &event)

	factors := []factor{
		{name: FactorInterestMatch, score: interestMatch(&s), weight: weightInterests},
		{name: FactorMajorMatch, score: majorMatch(&s), weight: weightMajor},
		{name: FactorCategoryMatch, score: categoryMatch(&s), weight: weightCategory},
		{name: FactorConnectionMatch, score: connectionMatch(&s), weight: weightConnections},
		{name: FactorTagMatch, score: tagMatch(&s), weight: weightTags},
	}
	score, details := aggregate(factors)

	return EventMatch{
		Target:  event,
		Score:   score,
		Reason:  eventReason(&s, &user, &event, factors),
		Details: details,
	}
}

// eventReason cites interest, major, connections and category in that order.
func eventReason(s *eventSignals, user *model.User, event *model.Event, factors []factor) string {
	var reasons []string

	if factors[0].score > interestReasonMinScore {
		for _, interest := range s.interests {
			if strings.Contains(s.title, interest.norm) || strings.Contains(s.description, interest.norm) {
				reasons = append(reasons, "Matches your interest in "+interest.raw)
				break
			}
		}
	}

	if factors[1].score > majorReasonMinScore {
		field := strings.TrimSpace(user.Profile.Major)
		if field == "" {
			field = strings.TrimSpace(user.Profile.Department)
		}
		if field != "" {
			reasons = append(reasons, "Relevant to "+field)
		}
	}

	if factors[3].score > connectionReasonMinScore {
		attending := int(math.Ceil(factors[3].score / connectionsPerStep))
		reasons = append(reasons, fmt.Sprintf("%d+ of your connections are attending", attending))
	}

	if event.Category != "" {
		reasons = append(reasons, fmt.Sprintf("%s event", event.Category))
	}

	return joinReasons(reasons, eventFallbackReason)
}

// upcoming reports whether the event starts strictly after now.
func (e *Engine) upcoming(event *model.Event) bool {
	return event.StartDate.After(e.now())
}

// RecommendEvents scores every upcoming event in the pool and returns the best
// limit matches by descending score. Equal scores keep the pool's order.
func (e *Engine) RecommendEvents(user model.User, pool []model.Event, limit int) []EventMatch {
	if limit <= 0 {
		return []EventMatch{}
	}
	matches := make([]EventMatch, 0, len(pool))
	for i := range pool {
		if !e.upcoming(&pool[i]) {
			continue
		}
		matches = append(matches, e.MatchEvent(user, pool[i]))
	}
	return rank(matches, limit)
}

// TrendingEvents orders upcoming events by RSVP count plus the fill ratio of
// capacity-limited events, highest first.
func (e *Engine) TrendingEvents(pool []model.Event, limit int) []model.Event {
	out := []model.Event{}
	if limit <= 0 {
		return out
	}
	type scored struct {
		event model.Event
		score float64
	}
	candidates := make([]scored, 0, len(pool))
	for i := range pool {
		if !e.upcoming(&pool[i]) {
			continue
		}
		candidates = append(candidates, scored{event: pool[i], score: trendingScore(&pool[i])})
	}
	sortStableDesc(candidates, func(c scored) float64 { return c.score })
	for i := 0; i < len(candidates) && i < limit; i++ {
		out = append(out, candidates[i].event)
	}
	return out
}

func trendingScore(event *model.Event) float64 {
	rsvps := float64(len(event.Attendees))
	if event.Capacity > 0 {
		return rsvps + rsvps/float64(event.Capacity)
	}
	return rsvps
}
