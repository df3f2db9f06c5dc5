package model

import (
	"slices"
	"time"
)

// KnowledgeCategory groups knowledge posts by subject.
type KnowledgeCategory string

// Known knowledge categories.
const (
	CategoryCareerAdvice         KnowledgeCategory = "career-advice"
	CategoryInterviewTips        KnowledgeCategory = "interview-tips"
	CategoryIndustryInsights     KnowledgeCategory = "industry-insights"
	CategoryCourseGuidance       KnowledgeCategory = "course-guidance"
	CategoryResearchTips         KnowledgeCategory = "research-tips"
	CategoryNetworkingStrategies KnowledgeCategory = "networking-strategies"
	CategorySkillDevelopment     KnowledgeCategory = "skill-development"
	CategoryJobSearch            KnowledgeCategory = "job-search"
	CategoryAcademicToIndustry   KnowledgeCategory = "academic-to-industry"
	KnowledgeCategoryOther       KnowledgeCategory = "other"
)

// Valid reports whether c is a known category.
func (c KnowledgeCategory) Valid() bool {
	switch c {
	case CategoryCareerAdvice, CategoryInterviewTips, CategoryIndustryInsights, CategoryCourseGuidance,
		CategoryResearchTips, CategoryNetworkingStrategies, CategorySkillDevelopment, CategoryJobSearch,
		CategoryAcademicToIndustry, KnowledgeCategoryOther:
		return true
	}
	return false
}

// Vote is a user's vote on a knowledge post. VoteNone withdraws a previous vote.
type Vote string

// Vote kinds.
const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
	VoteNone Vote = "none"
)

// Valid reports whether v is a known vote.
func (v Vote) Valid() bool {
	return v == VoteUp || v == VoteDown || v == VoteNone
}

// KnowledgePost is a piece of advice shared by alumni or faculty.
type KnowledgePost struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	AuthorID      string            `json:"author_id"`
	Category      KnowledgeCategory `json:"category"`
	Tags          []string          `json:"tags,omitempty"`
	Company       string            `json:"company,omitempty"`
	Industry      string            `json:"industry,omitempty"`
	RelatedSkills []string          `json:"related_skills,omitempty"`
	CourseCodes   []string          `json:"course_codes,omitempty"`
	Evergreen     bool              `json:"evergreen"`
	Verified      bool              `json:"verified"`
	VerifiedBy    string            `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time        `json:"verified_at,omitempty"`
	Upvotes       []string          `json:"upvotes,omitempty"`
	Downvotes     []string          `json:"downvotes,omitempty"`
	VoteScore     int               `json:"vote_score"`
	Views         int               `json:"views"`
	HelpfulBy     []string          `json:"helpful_by,omitempty"`
	HelpfulCount  int               `json:"helpful_count"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ApplyVote replaces userID's vote with v and recomputes the score.
func (p *KnowledgePost) ApplyVote(userID string, v Vote) {
	p.Upvotes = slices.DeleteFunc(p.Upvotes, func(id string) bool { return id == userID })
	p.Downvotes = slices.DeleteFunc(p.Downvotes, func(id string) bool { return id == userID })
	switch v {
	case VoteUp:
		p.Upvotes = append(p.Upvotes, userID)
	case VoteDown:
		p.Downvotes = append(p.Downvotes, userID)
	}
	p.VoteScore = len(p.Upvotes) - len(p.Downvotes)
}

// MarkHelpful records userID as finding the post helpful. It reports false
// when the user had already done so.
func (p *KnowledgePost) MarkHelpful(userID string) bool {
	if slices.Contains(p.HelpfulBy, userID) {
		return false
	}
	p.HelpfulBy = append(p.HelpfulBy, userID)
	p.HelpfulCount = len(p.HelpfulBy)
	return true
}
