// Package types contains the response shapes shared by the service and the HTTP API.
package types

import (
	"github.com/okian/campusconnect/internal/domain/matching"
	"github.com/okian/campusconnect/internal/domain/model"
)

// Entry represents a leaderboard entry.
type Entry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
}

// MentorRecommendation is a ranked mentor with the factors behind its score.
type MentorRecommendation struct {
	Mentor       model.User     `json:"mentor"`
	MatchScore   int            `json:"match_score"`
	Reason       string         `json:"reason"`
	MatchDetails map[string]int `json:"match_details"`
}

// EventRecommendation is a ranked event with the factors behind its score.
type EventRecommendation struct {
	Event        model.Event    `json:"event"`
	MatchScore   int            `json:"match_score"`
	Reason       string         `json:"reason"`
	MatchDetails map[string]int `json:"match_details"`
}

// SkillMentor is a mentor found by skill search.
type SkillMentor struct {
	Mentor         model.User `json:"mentor"`
	MatchingSkills []string   `json:"matching_skills"`
}

// NewMentorRecommendations converts engine results, keeping their order.
func NewMentorRecommendations(matches []matching.MentorMatch) []MentorRecommendation {
	out := make([]MentorRecommendation, 0, len(matches))
	for _, m := range matches {
		out = append(out, MentorRecommendation{
			Mentor:       publicProfile(m.Target),
			MatchScore:   m.Score,
			Reason:       m.Reason,
			MatchDetails: m.Details,
		})
	}
	return out
}

// NewEventRecommendations converts engine results, keeping their order.
func NewEventRecommendations(matches []matching.EventMatch) []EventRecommendation {
	out := make([]EventRecommendation, 0, len(matches))
	for _, m := range matches {
		out = append(out, EventRecommendation{
			Event:        m.Target,
			MatchScore:   m.Score,
			Reason:       m.Reason,
			MatchDetails: m.Details,
		})
	}
	return out
}

// NewSkillMentors converts skill search results, keeping their order.
func NewSkillMentors(matches []matching.SkillMatch) []SkillMentor {
	out := make([]SkillMentor, 0, len(matches))
	for _, m := range matches {
		out = append(out, SkillMentor{Mentor: publicProfile(m.Mentor), MatchingSkills: m.MatchingSkills})
	}
	return out
}

// NewContacts converts a user's connections into public profiles.
func NewContacts(users []model.User) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, publicProfile(u))
	}
	return out
}

// publicProfile hides contact and social graph fields of a recommended mentor.
func publicProfile(u model.User) model.User {
	u.Email = ""
	u.Connections = nil
	return u
}
