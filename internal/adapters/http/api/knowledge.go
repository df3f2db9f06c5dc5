package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/campusconnect/internal/app"
	"github.com/okian/campusconnect/internal/domain/knowledge"
	"github.com/okian/campusconnect/internal/domain/model"
)

// KnowledgeDependencies defines the knowledge hub operations.
type KnowledgeDependencies interface {
	CreateKnowledgePost(ctx context.Context, in service.KnowledgeInput) (model.KnowledgePost, error)
	GetKnowledgePost(ctx context.Context, id string) (model.KnowledgePost, error)
	SearchKnowledge(ctx context.Context, q knowledge.Query) (knowledge.Result, error)
	TrendingKnowledge(ctx context.Context, limit int) ([]model.KnowledgePost, error)
	VoteKnowledgePost(ctx context.Context, id, userID string, v model.Vote) (model.KnowledgePost, error)
	MarkKnowledgeHelpful(ctx context.Context, id, userID string) (model.KnowledgePost, error)
	VerifyKnowledgePost(ctx context.Context, id, actorID string) (model.KnowledgePost, error)
}

// KnowledgeHandler handles the knowledge hub.
type KnowledgeHandler struct {
	deps KnowledgeDependencies
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(deps KnowledgeDependencies) *KnowledgeHandler {
	return &KnowledgeHandler{deps: deps}
}

type knowledgeRequest struct {
	AuthorID      string                  `json:"author_id" validate:"required"`
	Title         string                  `json:"title" validate:"required,max=200"`
	Body          string                  `json:"body" validate:"required"`
	Category      model.KnowledgeCategory `json:"category" validate:"required"`
	Tags          []string                `json:"tags"`
	Company       string                  `json:"company"`
	Industry      string                  `json:"industry"`
	RelatedSkills []string                `json:"related_skills"`
	CourseCodes   []string                `json:"course_codes"`
	Evergreen     bool                    `json:"evergreen"`
}

type voteRequest struct {
	UserID string     `json:"user_id" validate:"required"`
	Vote   model.Vote `json:"vote" validate:"required,oneof=up down none"`
}

type actorRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// HandleCreate handles POST /knowledge.
func (h *KnowledgeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_knowledge_post"
	var req knowledgeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	p, err := h.deps.CreateKnowledgePost(r.Context(), service.KnowledgeInput{
		AuthorID:      strings.TrimSpace(req.AuthorID),
		Title:         req.Title,
		Body:          req.Body,
		Category:      req.Category,
		Tags:          req.Tags,
		Company:       req.Company,
		Industry:      req.Industry,
		RelatedSkills: req.RelatedSkills,
		CourseCodes:   req.CourseCodes,
		Evergreen:     req.Evergreen,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /knowledge/{id}.
func (h *KnowledgeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_knowledge_post"
	p, err := h.deps.GetKnowledgePost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleSearch handles GET /knowledge/search with q, category, company,
// industry, skill, course_code, verified, evergreen, sort_by, page and limit.
func (h *KnowledgeHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_knowledge"
	q, err := searchQuery(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	res, err := h.deps.SearchKnowledge(r.Context(), q)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if res.Posts == nil {
		res.Posts = []model.KnowledgePost{}
	}
	writeJSON(w, http.StatusOK, res)
}

func searchQuery(r *http.Request) (knowledge.Query, error) {
	v := r.URL.Query()
	q := knowledge.Query{
		Text:       strings.TrimSpace(v.Get("q")),
		Category:   model.KnowledgeCategory(strings.TrimSpace(v.Get("category"))),
		Company:    strings.TrimSpace(v.Get("company")),
		Industry:   strings.TrimSpace(v.Get("industry")),
		Skill:      strings.TrimSpace(v.Get("skill")),
		CourseCode: strings.TrimSpace(v.Get("course_code")),
		SortBy:     knowledge.SortBy(strings.TrimSpace(v.Get("sort_by"))),
	}
	var err error
	if q.VerifiedOnly, err = queryBool(r, "verified"); err != nil {
		return q, err
	}
	if q.EvergreenOnly, err = queryBool(r, "evergreen"); err != nil {
		return q, err
	}
	if q.Page, err = queryPositive(r, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = queryLimit(r); err != nil {
		return q, err
	}
	return q, nil
}

// HandleTrending handles GET /knowledge/trending?limit=.
func (h *KnowledgeHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	const op = "api.trending_knowledge"
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	posts, err := h.deps.TrendingKnowledge(r.Context(), limit)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if posts == nil {
		posts = []model.KnowledgePost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleVote handles POST /knowledge/{id}/vote.
func (h *KnowledgeHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.vote_knowledge_post"
	var req voteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	p, err := h.deps.VoteKnowledgePost(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.UserID), req.Vote)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleHelpful handles POST /knowledge/{id}/helpful.
func (h *KnowledgeHandler) HandleHelpful(w http.ResponseWriter, r *http.Request) {
	h.handleUserAction(w, r, "api.mark_knowledge_helpful", h.deps.MarkKnowledgeHelpful)
}

// HandleVerify handles POST /knowledge/{id}/verify.
func (h *KnowledgeHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	h.handleUserAction(w, r, "api.verify_knowledge_post", h.deps.VerifyKnowledgePost)
}

func (h *KnowledgeHandler) handleUserAction(w http.ResponseWriter, r *http.Request, op string,
	act func(ctx context.Context, id, userID string) (model.KnowledgePost, error),
) {
	var req actorRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	p, err := act(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.UserID))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
