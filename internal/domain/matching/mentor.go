package matching

import (
	"fmt"
	"strings"

	"github.com/okian/campusconnect/internal/domain/model"
)

// Mentor factor names as reported in Match.Details.
const (
	FactorSkillMatch      = "skill_match"
	FactorExperienceMatch = "experience_match"
	FactorGoalAlignment   = "goal_alignment"
	FactorAvailability    = "availability"
)

// Mentor factor weights. They sum to 1.
const (
	weightSkills       = 0.40
	weightExperience   = 0.30
	weightGoals        = 0.20
	weightAvailability = 0.10
)

const (
	experienceHitPoints  = 30
	goalHitPoints        = 25
	mentorReasonMinScore = 70
	maxCitedSkills       = 3
	defaultMaxMentees    = 5

	mentorFallbackReason = "Compatible background and interests"
)

// MentorMatch is a scored mentor candidate.
type MentorMatch = Match[model.User]

// mentorSignals are the normalized inputs of the mentor scorers.
type mentorSignals struct {
	skills       []term
	goals        []term
	interests    []term
	expertise    []term
	achievements []term
	experience   []experienceSignal
}

type experienceSignal struct {
	title   string
	company string
}

func extractMentorSignals(student, mentor *model.User) mentorSignals {
	s := mentorSignals{
		skills:       terms(student.Profile.Skills),
		goals:        terms(student.CareerGoals),
		interests:    terms(student.Profile.Interests),
		expertise:    terms(mentor.MentorProfile.ExpertiseAreas),
		achievements: terms(mentor.MentorProfile.Achievements),
		experience:   make([]experienceSignal, 0, len(mentor.Experience)),
	}
	for _, exp := range mentor.Experience {
		s.experience = append(s.experience, experienceSignal{
			title:   norm(exp.Title),
			company: norm(exp.Company),
		})
	}
	return s
}

// skillMatch is the percentage of the student's skills that overlap any mentor
// expertise area. Zero when either side is empty.
func skillMatch(s *mentorSignals) float64 {
	if len(s.skills) == 0 || len(s.expertise) == 0 {
		return 0
	}
	return percent(len(commonSkills(s)), len(s.skills))
}

// commonSkills returns the student's skills that overlap mentor expertise, in
// the student's order.
func commonSkills(s *mentorSignals) []string {
	var out []string
	for _, skill := range s.skills {
		if overlapsAny(skill.norm, s.expertise) {
			out = append(out, skill.raw)
		}
	}
	return out
}

// experienceMatch adds points for every (goal, experience) pair whose title or
// company overlaps the goal. Neutral when either list is empty.
func experienceMatch(s *mentorSignals) float64 {
	if len(s.goals) == 0 || len(s.experience) == 0 {
		return neutralScore
	}
	score := 0.0
	for _, goal := range s.goals {
		for _, exp := range s.experience {
			// a blank title or company would contain every goal
			titleHit := exp.title != "" && overlaps(exp.title, goal.norm)
			companyHit := exp.company != "" && overlaps(exp.company, goal.norm)
			if titleHit || companyHit {
				score += experienceHitPoints
			}
		}
	}
	return clamp(score)
}

// goalAlignment compares goals and interests against expertise and
// achievements. Neutral when the student states neither goals nor interests.
func goalAlignment(s *mentorSignals) float64 {
	if len(s.goals) == 0 && len(s.interests) == 0 {
		return neutralScore
	}
	wants := append(append([]term{}, s.goals...), s.interests...)
	offers := append(append([]term{}, s.expertise...), s.achievements...)

	score := 0.0
	for _, w := range wants {
		for _, o := range offers {
			if overlaps(o.norm, w.norm) {
				score += goalHitPoints
			}
		}
	}
	return clamp(score)
}

func availability(mentor *model.User) float64 {
	if mentor.MentorProfile.IsAvailable {
		return maxScore
	}
	return minScore
}

// MatchMentor scores a single mentor for a student without eligibility checks.
func (e *Engine) MatchMentor(student, mentor model.User) MentorMatch {
	s := extractMentorSignals(&student, &mentor)

	factors := []factor{
		{name: FactorSkillMatch, score: skillMatch(&s), weight: weightSkills},
		{name: FactorExperienceMatch, score: experienceMatch(&s), weight: weightExperience},
		{name: FactorGoalAlignment, score: goalAlignment(&s), weight: weightGoals},
		{name: FactorAvailability, score: availability(&mentor), weight: weightAvailability},
	}
	score, details := aggregate(factors)

	return MentorMatch{
		Target:  mentor,
		Score:   score,
		Reason:  mentorReason(&s, &mentor, factors),
		Details: details,
	}
}

// mentorReason cites skills, experience, goal and availability in that order.
func mentorReason(s *mentorSignals, mentor *model.User, factors []factor) string {
	var reasons []string

	if factors[0].score > mentorReasonMinScore {
		if common := commonSkills(s); len(common) > 0 {
			if len(common) > maxCitedSkills {
				common = common[:maxCitedSkills]
			}
			reasons = append(reasons, "Strong expertise in "+strings.Join(common, ", "))
		}
	}

	if factors[1].score > mentorReasonMinScore && len(mentor.Experience) > 0 {
		exp := mentor.Experience[0]
		company := strings.TrimSpace(exp.Company)
		if company == "" {
			company = "top companies"
		}
		reasons = append(reasons, fmt.Sprintf("%s experience at %s", strings.TrimSpace(exp.Title), company))
	}

	if factors[2].score > mentorReasonMinScore && len(s.goals) > 0 {
		reasons = append(reasons, "Aligned with your goal: "+s.goals[0].raw)
	}

	if mentor.MentorProfile.IsAvailable {
		maxMentees := mentor.MentorProfile.MaxMentees
		if maxMentees <= 0 {
			maxMentees = defaultMaxMentees
		}
		reasons = append(reasons, fmt.Sprintf("Available for mentorship (accepts up to %d mentees)", maxMentees))
	}

	return joinReasons(reasons, mentorFallbackReason)
}

// mentorEligible reports whether mentor may be recommended to student: someone
// else, currently available, and an alumnus or faculty member.
func mentorEligible(student, mentor *model.User) bool {
	return mentor.ID != student.ID &&
		mentor.MentorProfile.IsAvailable &&
		mentor.Role.CanMentor()
}

// RecommendMentors filters the pool for eligible mentors, scores them, and
// returns the best limit matches by descending score. Equal scores keep the
// pool's order.
func (e *Engine) RecommendMentors(student model.User, pool []model.User, limit int) []MentorMatch {
	if limit <= 0 {
		return []MentorMatch{}
	}
	matches := make([]MentorMatch, 0, len(pool))
	for i := range pool {
		if !mentorEligible(&student, &pool[i]) {
			continue
		}
		matches = append(matches, e.MatchMentor(student, pool[i]))
	}
	return rank(matches, limit)
}

// SkillMatch is a mentor together with the requested skills they cover.
type SkillMatch struct {
	Mentor         model.User
	MatchingSkills []string
}

// MentorsForSkills finds available mentors covering at least one of skills,
// ordered by how many skills they cover. Equal counts keep the pool's order.
func (e *Engine) MentorsForSkills(skills []string, pool []model.User, limit int) []SkillMatch {
	out := []SkillMatch{}
	if limit <= 0 {
		return out
	}
	wanted := terms(skills)
	for i := range pool {
		mentor := &pool[i]
		if !mentor.MentorProfile.IsAvailable {
			continue
		}
		expertise := terms(mentor.MentorProfile.ExpertiseAreas)
		var covered []string
		for _, w := range wanted {
			if overlapsAny(w.norm, expertise) {
				covered = append(covered, w.raw)
			}
		}
		if len(covered) == 0 {
			continue
		}
		out = append(out, SkillMatch{Mentor: *mentor, MatchingSkills: covered})
	}
	sortStableDesc(out, func(m SkillMatch) int { return len(m.MatchingSkills) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
