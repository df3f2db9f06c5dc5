package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/campusconnect/internal/domain/knowledge"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

// KnowledgeInput is what an author submits to publish a knowledge post.
type KnowledgeInput struct {
	AuthorID      string
	Title         string
	Body          string
	Category      model.KnowledgeCategory
	Tags          []string
	Company       string
	Industry      string
	RelatedSkills []string
	CourseCodes   []string
	Evergreen     bool
}

// CreateKnowledgePost publishes a post. Only alumni and faculty may author
// posts; the author earns knowledge post points.
func (s *Service) CreateKnowledgePost(ctx context.Context, in KnowledgeInput) (model.KnowledgePost, error) {
	if err := s.running(); err != nil {
		return model.KnowledgePost{}, err
	}
	in.Title, in.Body = strings.TrimSpace(in.Title), strings.TrimSpace(in.Body)
	switch {
	case in.Title == "" || in.Body == "":
		return model.KnowledgePost{}, fmt.Errorf("%w: title and body are required", ErrInvalidInput)
	case !in.Category.Valid():
		return model.KnowledgePost{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	author, err := s.store.GetUser(ctx, in.AuthorID)
	if err != nil {
		return model.KnowledgePost{}, storeErr(err, "author")
	}
	if !author.Role.CanMentor() {
		return model.KnowledgePost{}, fmt.Errorf("%w: only alumni and faculty can share knowledge", ErrForbidden)
	}

	now := s.now().UTC()
	p := model.KnowledgePost{
		ID:            s.newID(),
		Title:         in.Title,
		Body:          in.Body,
		AuthorID:      in.AuthorID,
		Category:      in.Category,
		Tags:          in.Tags,
		Company:       strings.TrimSpace(in.Company),
		Industry:      strings.TrimSpace(in.Industry),
		RelatedSkills: in.RelatedSkills,
		CourseCodes:   in.CourseCodes,
		Evergreen:     in.Evergreen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.PutKnowledgePost(ctx, p); err != nil {
		return model.KnowledgePost{}, storeErr(err, "knowledge post")
	}

	metrics.RecordKnowledgeAction("create")
	s.logger.Info(ctx, "knowledge post created",
		logger.String("postID", p.ID),
		logger.String("authorID", p.AuthorID),
		logger.String("category", string(p.Category)),
	)
	s.recordActivity(ctx, model.Activity{
		ID:         "knowledge:created:" + p.ID,
		UserID:     p.AuthorID,
		Kind:       model.ActivityKnowledgePostCreated,
		OccurredAt: now,
	})
	return p, nil
}

// GetKnowledgePost loads a post and counts the view.
func (s *Service) GetKnowledgePost(ctx context.Context, id string) (model.KnowledgePost, error) {
	if err := s.running(); err != nil {
		return model.KnowledgePost{}, err
	}
	p, err := s.store.UpdateKnowledgePost(ctx, id, func(p *model.KnowledgePost) error {
		p.Views++
		return nil
	})
	return p, storeErr(err, "knowledge post")
}

// SearchKnowledge runs a keyword search over every post.
func (s *Service) SearchKnowledge(ctx context.Context, q knowledge.Query) (knowledge.Result, error) {
	if err := s.running(); err != nil {
		return knowledge.Result{}, err
	}
	if !q.SortBy.Valid() {
		return knowledge.Result{}, fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, q.SortBy)
	}
	if q.Category != "" && !q.Category.Valid() {
		return knowledge.Result{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, q.Category)
	}
	q.Limit = clampLimit(q.Limit, knowledge.DefaultLimit, s.maxLimit)

	posts, err := s.store.ListKnowledgePosts(ctx)
	if err != nil {
		return knowledge.Result{}, storeErr(err, "knowledge posts")
	}
	return knowledge.Search(posts, q), nil
}

// TrendingKnowledge returns the most viewed posts of the past week.
func (s *Service) TrendingKnowledge(ctx context.Context, limit int) ([]model.KnowledgePost, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	posts, err := s.store.ListKnowledgePosts(ctx)
	if err != nil {
		return nil, storeErr(err, "knowledge posts")
	}
	return knowledge.Trending(posts, s.now(), clampLimit(limit, knowledge.TrendingLimit, s.maxLimit)), nil
}

// VoteKnowledgePost records a user's vote, replacing any earlier one.
func (s *Service) VoteKnowledgePost(ctx context.Context, id, userID string, v model.Vote) (model.KnowledgePost, error) {
	if err := s.running(); err != nil {
		return model.KnowledgePost{}, err
	}
	if !v.Valid() {
		return model.KnowledgePost{}, fmt.Errorf("%w: unknown vote %q", ErrInvalidInput, v)
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return model.KnowledgePost{}, storeErr(err, "user")
	}
	p, err := s.store.UpdateKnowledgePost(ctx, id, func(p *model.KnowledgePost) error {
		p.ApplyVote(userID, v)
		return nil
	})
	if err != nil {
		return model.KnowledgePost{}, storeErr(err, "knowledge post")
	}
	metrics.RecordKnowledgeAction("vote")
	return p, nil
}

// MarkKnowledgeHelpful records that a reader found a post helpful. Each reader
// counts once and the author earns points for every reader. Authors cannot
// mark their own posts.
func (s *Service) MarkKnowledgeHelpful(ctx context.Context, id, userID string) (model.KnowledgePost, error) {
	if err := s.running(); err != nil {
		return model.KnowledgePost{}, err
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return model.KnowledgePost{}, storeErr(err, "user")
	}
	var added bool
	p, err := s.store.UpdateKnowledgePost(ctx, id, func(p *model.KnowledgePost) error {
		if p.AuthorID == userID {
			return fmt.Errorf("%w: authors cannot mark their own posts helpful", ErrForbidden)
		}
		added = p.MarkHelpful(userID)
		return nil
	})
	if err != nil {
		return model.KnowledgePost{}, storeErr(err, "knowledge post")
	}
	if added {
		metrics.RecordKnowledgeAction("helpful")
		s.recordActivity(ctx, model.Activity{
			ID:         "knowledge:helpful:" + p.ID + ":" + userID,
			UserID:     p.AuthorID,
			Kind:       model.ActivityKnowledgePostHelpful,
			OccurredAt: s.now().UTC(),
		})
	}
	return p, nil
}

// VerifyKnowledgePost marks a post as verified by an alumni or faculty member.
// Verifying twice keeps the first verifier and awards the author once.
func (s *Service) VerifyKnowledgePost(ctx context.Context, id, actorID string) (model.KnowledgePost, error) {
	if err := s.running(); err != nil {
		return model.KnowledgePost{}, err
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return model.KnowledgePost{}, storeErr(err, "user")
	}
	if !actor.Role.CanMentor() {
		return model.KnowledgePost{}, fmt.Errorf("%w: only alumni and faculty can verify posts", ErrForbidden)
	}

	now := s.now().UTC()
	var verified bool
	p, err := s.store.UpdateKnowledgePost(ctx, id, func(p *model.KnowledgePost) error {
		if p.Verified {
			return nil
		}
		p.Verified, p.VerifiedBy, p.VerifiedAt = true, actorID, &now
		p.UpdatedAt = now
		verified = true
		return nil
	})
	if err != nil {
		return model.KnowledgePost{}, storeErr(err, "knowledge post")
	}
	if verified {
		metrics.RecordKnowledgeAction("verify")
		s.recordActivity(ctx, model.Activity{
			ID:         "knowledge:verified:" + p.ID,
			UserID:     p.AuthorID,
			Kind:       model.ActivityKnowledgePostVerified,
			OccurredAt: now,
		})
	}
	return p, nil
}
