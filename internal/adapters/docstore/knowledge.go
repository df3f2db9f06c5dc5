package docstore

import (
	"context"
	"time"

	"github.com/okian/campusconnect/internal/domain/model"
)

// GetKnowledgePost loads a knowledge post by id.
func (s *Store) GetKnowledgePost(ctx context.Context, id string) (p model.KnowledgePost, err error) {
	defer func(start time.Time) { observe("get_knowledge_post", start, err) }(time.Now())
	if id == "" {
		return model.KnowledgePost{}, ErrInvalidID
	}
	return get[model.KnowledgePost](ctx, s.db, knowledgeKeyPrefix+id)
}

// PutKnowledgePost inserts or replaces a knowledge post.
func (s *Store) PutKnowledgePost(ctx context.Context, p model.KnowledgePost) (err error) {
	defer func(start time.Time) { observe("put_knowledge_post", start, err) }(time.Now())
	if p.ID == "" {
		return ErrInvalidID
	}
	return put(ctx, s.db, knowledgeKeyPrefix+p.ID, p)
}

// UpdateKnowledgePost applies fn to the stored post atomically.
func (s *Store) UpdateKnowledgePost(ctx context.Context, id string, fn func(*model.KnowledgePost) error) (p model.KnowledgePost, err error) {
	defer func(start time.Time) { observe("update_knowledge_post", start, err) }(time.Now())
	if id == "" {
		return model.KnowledgePost{}, ErrInvalidID
	}
	return update(ctx, s.db, knowledgeKeyPrefix+id, fn)
}

// ListKnowledgePosts returns every stored post in key order.
func (s *Store) ListKnowledgePosts(ctx context.Context) (out []model.KnowledgePost, err error) {
	defer func(start time.Time) { observe("list_knowledge_posts", start, err) }(time.Now())
	return scan[model.KnowledgePost](ctx, s.db, knowledgeKeyPrefix, nil)
}
