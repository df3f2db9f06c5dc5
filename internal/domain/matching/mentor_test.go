package matching_test

import (
	"testing"

	"github.com/okian/campusconnect/internal/domain/matching"
	"github.com/okian/campusconnect/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func mentor(id string, role model.Role, available bool, expertise ...string) model.User {
	return model.User{
		ID:   id,
		Role: role,
		MentorProfile: model.MentorProfile{
			IsAvailable:    available,
			ExpertiseAreas: expertise,
		},
	}
}

func mentorIDs(matches []matching.MentorMatch) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Target.ID)
	}
	return ids
}

func TestEngine_MatchMentor(t *testing.T) {
	Convey("Given a matching engine", t, func() {
		engine := matching.NewEngine()

		Convey("When a student's skills half overlap a mentor's expertise", func() {
			student := model.User{ID: "s1", Profile: model.Profile{Skills: []string{"Python", "React"}}}
			m := mentor("m1", model.RoleAlumni, true, "python", "system design")

			result := engine.MatchMentor(student, m)

			Convey("Then skill match is 50", func() {
				So(result.Details[matching.FactorSkillMatch], ShouldEqual, 50)
			})

			Convey("And missing goals fall back to neutral scores", func() {
				So(result.Details[matching.FactorExperienceMatch], ShouldEqual, 50)
				So(result.Details[matching.FactorGoalAlignment], ShouldEqual, 50)
				So(result.Details[matching.FactorAvailability], ShouldEqual, 100)
			})

			Convey("And the weighted score is 55", func() {
				So(result.Score, ShouldEqual, 55)
			})

			Convey("And the reason only cites availability with the default capacity", func() {
				So(result.Reason, ShouldEqual, "Available for mentorship (accepts up to 5 mentees)")
			})
		})

		Convey("When the student has no skills, goals or interests", func() {
			student := model.User{ID: "s1"}
			m := mentor("m1", model.RoleFaculty, false, "databases")

			result := engine.MatchMentor(student, m)

			Convey("Then each factor applies its own default", func() {
				So(result.Details[matching.FactorSkillMatch], ShouldEqual, 0)
				So(result.Details[matching.FactorExperienceMatch], ShouldEqual, 50)
				So(result.Details[matching.FactorGoalAlignment], ShouldEqual, 50)
				So(result.Details[matching.FactorAvailability], ShouldEqual, 0)
				So(result.Score, ShouldEqual, 25)
			})

			Convey("And the fallback reason is used", func() {
				So(result.Reason, ShouldEqual, "Compatible background and interests")
			})
		})

		Convey("When the student strongly matches a mentor on every factor", func() {
			student := model.User{
				ID: "s1",
				Profile: model.Profile{
					Skills:    []string{"Go", "Kubernetes"},
					Interests: []string{"distributed systems"},
				},
				CareerGoals: model.Goals{"Backend Engineer"},
			}
			m := mentor("m1", model.RoleAlumni, true, "golang", "kubernetes", "distributed systems")
			m.MentorProfile.Achievements = []string{"Backend Engineer of the Year", "Distributed Systems Speaker"}
			m.MentorProfile.MaxMentees = 3
			m.Experience = []model.Experience{
				{Title: "Senior Backend Engineer", Company: "Stripe"},
				{Title: "Backend Engineer", Company: "Google"},
				{Title: "Staff Backend Engineer", Company: "Uber"},
				{Title: "Backend Engineer", Company: "Shopify"},
			}

			result := engine.MatchMentor(student, m)

			Convey("Then the factor scores are clamped to 100", func() {
				So(result.Details[matching.FactorSkillMatch], ShouldEqual, 100)
				So(result.Details[matching.FactorExperienceMatch], ShouldEqual, 100)
				So(result.Details[matching.FactorGoalAlignment], ShouldEqual, 75)
				So(result.Score, ShouldEqual, 95)
			})

			Convey("And every reason clause fires in order", func() {
				So(result.Reason, ShouldEqual,
					"Strong expertise in Go, Kubernetes • "+
						"Senior Backend Engineer experience at Stripe • "+
						"Aligned with your goal: Backend Engineer • "+
						"Available for mentorship (accepts up to 3 mentees)")
			})
		})

		Convey("When the mentor's matching experience has no company", func() {
			student := model.User{ID: "s1", CareerGoals: model.Goals{"Data Scientist"}}
			m := mentor("m1", model.RoleAlumni, false)
			m.Experience = []model.Experience{
				{Title: "Data Scientist"},
				{Title: "Lead Data Scientist"},
				{Title: "Data Scientist II"},
			}

			result := engine.MatchMentor(student, m)

			Convey("Then experience scores 30 per hit", func() {
				So(result.Details[matching.FactorExperienceMatch], ShouldEqual, 90)
			})

			Convey("And the reason falls back to a generic company", func() {
				So(result.Reason, ShouldEqual, "Data Scientist experience at top companies")
			})
		})

		Convey("When an experience entry has blank title and company", func() {
			student := model.User{ID: "s1", CareerGoals: model.Goals{"Product Manager"}}
			m := mentor("m1", model.RoleAlumni, true)
			m.Experience = []model.Experience{{}}

			result := engine.MatchMentor(student, m)

			Convey("Then it does not count as a hit", func() {
				So(result.Details[matching.FactorExperienceMatch], ShouldEqual, 0)
			})
		})

		Convey("When a skill is a substring of a different expertise", func() {
			student := model.User{ID: "s1", Profile: model.Profile{Skills: []string{"Java"}}}
			m := mentor("m1", model.RoleAlumni, true, "JavaScript")

			result := engine.MatchMentor(student, m)

			Convey("Then substring matching still counts it", func() {
				So(result.Details[matching.FactorSkillMatch], ShouldEqual, 100)
			})
		})

		Convey("When more than three skills match", func() {
			student := model.User{ID: "s1", Profile: model.Profile{Skills: []string{"SQL", "Go", "Docker", "AWS"}}}
			m := mentor("m1", model.RoleAlumni, false, "sql", "go", "docker", "aws")

			result := engine.MatchMentor(student, m)

			Convey("Then only the first three are cited", func() {
				So(result.Reason, ShouldEqual, "Strong expertise in SQL, Go, Docker")
			})
		})
	})
}

func TestEngine_RecommendMentors(t *testing.T) {
	Convey("Given a student and a mixed pool of mentors", t, func() {
		engine := matching.NewEngine()
		student := model.User{
			ID:      "s1",
			Role:    model.RoleStudent,
			Profile: model.Profile{Skills: []string{"Go", "SQL"}},
		}
		pool := []model.User{
			mentor("s1", model.RoleAlumni, true, "go"),             // the student
			mentor("busy", model.RoleAlumni, false, "go", "sql"),   // unavailable
			mentor("peer", model.RoleStudent, true, "go", "sql"),   // wrong role
			mentor("faculty", model.RoleFaculty, true, "sql"),      // half match
			mentor("alumni", model.RoleAlumni, true, "go", "sql"),  // full match
			mentor("novice", model.RoleAlumni, true, "painting"),   // no match
			mentor("alumni-2", model.RoleAlumni, true, "go", "sql"), // ties alumni
		}

		Convey("When recommending with the default limit", func() {
			results := engine.RecommendMentors(student, pool, matching.DefaultLimit)

			Convey("Then ineligible mentors are excluded", func() {
				So(mentorIDs(results), ShouldNotContain, "s1")
				So(mentorIDs(results), ShouldNotContain, "busy")
				So(mentorIDs(results), ShouldNotContain, "peer")
			})

			Convey("And results are ordered by score with ties in pool order", func() {
				So(mentorIDs(results), ShouldResemble, []string{"alumni", "alumni-2", "faculty", "novice"})
				for i := 1; i < len(results); i++ {
					So(results[i-1].Score, ShouldBeGreaterThanOrEqualTo, results[i].Score)
				}
			})
		})

		Convey("When the tied mentors appear in the opposite order", func() {
			reordered := []model.User{pool[6], pool[4]}
			results := engine.RecommendMentors(student, reordered, matching.DefaultLimit)

			Convey("Then the input order decides the tie", func() {
				So(mentorIDs(results), ShouldResemble, []string{"alumni-2", "alumni"})
			})
		})

		Convey("When the limit is smaller than the eligible pool", func() {
			results := engine.RecommendMentors(student, pool, 2)

			Convey("Then only the top matches are returned", func() {
				So(mentorIDs(results), ShouldResemble, []string{"alumni", "alumni-2"})
			})
		})

		Convey("When the limit is zero or negative", func() {
			Convey("Then the result is empty", func() {
				So(engine.RecommendMentors(student, pool, 0), ShouldBeEmpty)
				So(engine.RecommendMentors(student, pool, -3), ShouldBeEmpty)
			})
		})

		Convey("When an unavailable mentor would otherwise score highest", func() {
			results := engine.RecommendMentors(student, []model.User{pool[1]}, matching.DefaultLimit)

			Convey("Then it is still excluded", func() {
				So(results, ShouldBeEmpty)
				So(results, ShouldNotBeNil)
			})
		})

		Convey("When recommending twice with the same inputs", func() {
			first := engine.RecommendMentors(student, pool, matching.DefaultLimit)
			second := engine.RecommendMentors(student, pool, matching.DefaultLimit)

			Convey("Then the output is identical", func() {
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestEngine_MentorsForSkills(t *testing.T) {
	Convey("Given mentors with different expertise", t, func() {
		engine := matching.NewEngine()
		pool := []model.User{
			mentor("m1", model.RoleAlumni, true, "go", "python"),
			mentor("m2", model.RoleAlumni, false, "go", "rust"),
			mentor("m3", model.RoleFaculty, true, "python", "Go", "Rust"),
			mentor("m4", model.RoleAlumni, true, "design"),
		}

		Convey("When searching for Go and Rust", func() {
			results := engine.MentorsForSkills([]string{"Go", "Rust", " "}, pool, matching.DefaultSkillsLimit)

			Convey("Then available mentors are ordered by covered skills", func() {
				So(results, ShouldHaveLength, 2)
				So(results[0].Mentor.ID, ShouldEqual, "m3")
				So(results[0].MatchingSkills, ShouldResemble, []string{"Go", "Rust"})
				So(results[1].Mentor.ID, ShouldEqual, "m1")
				So(results[1].MatchingSkills, ShouldResemble, []string{"Go"})
			})
		})

		Convey("When the limit is one", func() {
			results := engine.MentorsForSkills([]string{"python"}, pool, 1)

			Convey("Then the first covering mentor in pool order wins the tie", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].Mentor.ID, ShouldEqual, "m1")
			})
		})

		Convey("When no skills are requested", func() {
			So(engine.MentorsForSkills(nil, pool, 5), ShouldBeEmpty)
		})
	})
}
