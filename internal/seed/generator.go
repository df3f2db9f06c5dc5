package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/pkg/logger"
)

// Vocabulary the generator draws from. Overlap between lists is what gives
// the matching engine something to score.
var (
	majors = []string{
		"Computer Science", "Electrical Engineering", "Mechanical Engineering",
		"Business Administration", "Economics", "Graphic Design", "Biology", "Data Science",
	}
	skills = []string{
		"Go", "Python", "JavaScript", "SQL", "Kubernetes", "Machine Learning", "React",
		"Figma", "Public Speaking", "Finance", "Product Management", "Statistics",
	}
	interests = []string{
		"Machine Learning", "Startups", "Robotics", "Design", "Cloud Computing",
		"Entrepreneurship", "Open Source", "Sustainability", "Research",
	}
	goals = []string{
		"Software Engineer", "Data Scientist", "Product Manager", "Designer",
		"Founder", "Research Scientist", "Consultant",
	}
	companies = []string{"Stripe", "Google", "Shopify", "Spotify", "Airbus", "Deloitte", ""}
	titles    = []string{"Senior", "Staff", "Lead", "Principal", ""}
	tags      = []string{"python", "design", "career", "networking", "ai", "cloud", "hardware", "finance"}
	venues    = []string{"Main Hall", "Library Auditorium", "Engineering Building", "Student Center"}
	eventKind = []string{"Workshop", "Meetup", "Talk", "Fair", "Hackathon", "Panel"}

	categories = []model.Category{
		model.CategoryCareer, model.CategoryAcademic, model.CategoryCultural,
		model.CategoryNetworking, model.CategoryWorkshop, model.CategoryOther,
	}
	activityKinds = []model.ActivityKind{
		model.ActivityPostCreated, model.ActivityConnectionAdded,
		model.ActivityKnowledgePostCreated, model.ActivityKnowledgePostHelpful,
		model.ActivityKnowledgePostVerified, model.ActivityMentorshipSession,
	}
)

// Probabilities and ranges used by the generator.
const (
	mentorAvailableRatio = 0.8
	publishedRatio       = 0.9
	unlimitedRatio       = 0.3
	duplicateRatio       = 0.05
	maxRSVPsPerStudent   = 3
	maxSkills            = 4
	maxExperience        = 3
	maxMenteesCap        = 5
	minCapacity          = 5
	capacitySpread       = 40
	eventHorizonHours    = 30 * 24
)

// Generate builds a campus deterministically from cfg.Seed. Event dates are
// placed after now.
func Generate(ctx context.Context, cfg *Config, now time.Time) Campus {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	g := generator{rng: rng, now: now.UTC().Truncate(time.Second)}

	campus := Campus{
		Users:  make([]model.User, 0, cfg.Students+cfg.Mentors),
		Events: make([]model.Event, 0, cfg.Events),
	}
	for i := range cfg.Students {
		campus.Users = append(campus.Users, g.student(i))
	}
	for i := range cfg.Mentors {
		campus.Users = append(campus.Users, g.mentor(i))
	}
	for i := range cfg.Events {
		campus.Events = append(campus.Events, g.event(i))
	}
	campus.RSVPs = g.rsvps(campus.Users, campus.Events)
	campus.Activities = g.activities(cfg.Activities, campus.Users)

	logger.Get().Info(ctx, "generated campus",
		logger.Int("users", len(campus.Users)),
		logger.Int("events", len(campus.Events)),
		logger.Int("rsvps", len(campus.RSVPs)),
		logger.Int("activities", len(campus.Activities)),
	)
	return campus
}

type generator struct {
	rng *rand.Rand
	now time.Time
}

func (g *generator) pick(from []string) string {
	return from[g.rng.IntN(len(from))]
}

// some returns between 1 and max distinct values from from.
func (g *generator) some(from []string, max int) []string {
	n := 1 + g.rng.IntN(max)
	perm := g.rng.Perm(len(from))
	out := make([]string, 0, n)
	for _, i := range perm[:min(n, len(from))] {
		out = append(out, from[i])
	}
	return out
}

func (g *generator) student(i int) model.User {
	return model.User{
		ID:    fmt.Sprintf("student-%04d", i),
		Email: fmt.Sprintf("student%04d@campus.example.edu", i),
		Role:  model.RoleStudent,
		Profile: model.Profile{
			Name:      fmt.Sprintf("Student %d", i),
			Major:     g.pick(majors),
			Skills:    g.some(skills, maxSkills),
			Interests: g.some(interests, maxSkills),
		},
		CareerGoals: model.Goals(g.some(goals, 2)),
	}
}

func (g *generator) mentor(i int) model.User {
	role := model.RoleAlumni
	if i%3 == 0 {
		role = model.RoleFaculty
	}
	goal := g.pick(goals)
	experience := make([]model.Experience, 0, maxExperience)
	for range 1 + g.rng.IntN(maxExperience) {
		title := g.pick(titles) + " " + goal
		if title[0] == ' ' {
			title = title[1:]
		}
		experience = append(experience, model.Experience{Title: title, Company: g.pick(companies)})
	}
	return model.User{
		ID:    fmt.Sprintf("mentor-%04d", i),
		Email: fmt.Sprintf("mentor%04d@campus.example.edu", i),
		Role:  role,
		Profile: model.Profile{
			Name:       fmt.Sprintf("Mentor %d", i),
			Department: g.pick(majors),
		},
		Experience: experience,
		MentorProfile: model.MentorProfile{
			IsAvailable:    g.rng.Float64() < mentorAvailableRatio,
			ExpertiseAreas: g.some(skills, maxSkills),
			Achievements:   []string{goal + " of the Year"},
			MaxMentees:     1 + g.rng.IntN(maxMenteesCap),
		},
	}
}

func (g *generator) event(i int) model.Event {
	start := g.now.Add(time.Duration(1+g.rng.IntN(eventHorizonHours)) * time.Hour)
	topic := g.pick(interests)
	capacity := 0
	if g.rng.Float64() >= unlimitedRatio {
		capacity = minCapacity + g.rng.IntN(capacitySpread)
	}
	published := g.rng.Float64() < publishedRatio
	return model.Event{
		ID:          fmt.Sprintf("event-%04d", i),
		Title:       topic + " " + g.pick(eventKind) + " for " + g.pick(majors),
		Description: "A campus event about " + topic,
		Category:    categories[g.rng.IntN(len(categories))],
		StartDate:   start,
		EndDate:     start.Add(2 * time.Hour),
		Location:    g.pick(venues),
		Tags:        g.some(tags, 3),
		Capacity:    capacity,
		Published:   &published,
	}
}

func (g *generator) rsvps(users []model.User, events []model.Event) []RSVP {
	if len(events) == 0 {
		return nil
	}
	var out []RSVP
	for _, u := range users {
		if u.Role != model.RoleStudent {
			continue
		}
		perm := g.rng.Perm(len(events))
		for _, i := range perm[:min(g.rng.IntN(maxRSVPsPerStudent+1), len(events))] {
			out = append(out, RSVP{EventID: events[i].ID, UserID: u.ID})
		}
	}
	return out
}

// activities returns n activities. A few repeat an earlier id so the
// service's dedupe path is exercised.
func (g *generator) activities(n int, users []model.User) []model.Activity {
	if len(users) == 0 {
		return nil
	}
	out := make([]model.Activity, 0, n)
	for i := range n {
		if i > 0 && g.rng.Float64() < duplicateRatio {
			out = append(out, out[g.rng.IntN(len(out))])
			continue
		}
		out = append(out, model.Activity{
			ID:         fmt.Sprintf("activity-%06d", i),
			UserID:     users[g.rng.IntN(len(users))].ID,
			Kind:       activityKinds[g.rng.IntN(len(activityKinds))],
			OccurredAt: g.now.Add(-time.Duration(g.rng.IntN(eventHorizonHours)) * time.Minute),
		})
	}
	return out
}
