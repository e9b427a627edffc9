package repository

import (
	"context"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/client"
	"github.com/jokehub/punchline/internal/usecase"
)

// CommentRepository reads and writes comment records. Uncached, for
// the same reason as jokes.
type CommentRepository struct {
	store *client.Client
}

func NewCommentRepository(store *client.Client) *CommentRepository {
	return &CommentRepository{store: store}
}

func (r *CommentRepository) All(ctx context.Context) ([]punchline.Comment, error) {
	records, err := r.store.List(ctx, punchline.CollectionComments)
	if err != nil {
		return nil, err
	}
	return decodeKeyed(records, func(cm *punchline.Comment, key string) { cm.Key = key })
}

func (r *CommentRepository) QueryByJoke(ctx context.Context, jokeKey string) ([]punchline.Comment, error) {
	records, err := r.store.QueryByField(ctx, punchline.CollectionComments, "jokeKey", jokeKey)
	if err != nil {
		return nil, err
	}
	return decodeKeyed(records, func(cm *punchline.Comment, key string) { cm.Key = key })
}

func (r *CommentRepository) QueryByUID(ctx context.Context, uid string) ([]punchline.Comment, error) {
	records, err := r.store.QueryByField(ctx, punchline.CollectionComments, "uid", uid)
	if err != nil {
		return nil, err
	}
	return decodeKeyed(records, func(cm *punchline.Comment, key string) { cm.Key = key })
}

func (r *CommentRepository) Get(ctx context.Context, key string) (punchline.Comment, error) {
	var cm punchline.Comment
	if err := r.store.Get(ctx, punchline.CollectionComments, key, &cm); err != nil {
		return punchline.Comment{}, err
	}
	cm.Key = key
	return cm, nil
}

func (r *CommentRepository) Create(ctx context.Context, cm punchline.Comment) (string, error) {
	return r.store.Create(ctx, punchline.CollectionComments, cm)
}

func (r *CommentRepository) Update(ctx context.Context, cm punchline.Comment) error {
	fields := map[string]any{
		"content": cm.Content,
	}
	return r.store.Patch(ctx, punchline.CollectionComments, cm.Key, fields, nil)
}

func (r *CommentRepository) Delete(ctx context.Context, key string) error {
	return r.store.Delete(ctx, punchline.CollectionComments, key)
}

func (r *CommentRepository) VoteState(ctx context.Context, key string) (usecase.VoteState, error) {
	cm, err := r.Get(ctx, key)
	if err != nil {
		return usecase.VoteState{}, err
	}
	return usecase.VoteState{Count: cm.VoteCount, VotedBy: cm.VotedBy}, nil
}

func (r *CommentRepository) PatchVoteState(ctx context.Context, key string, state usecase.VoteState) error {
	fields := map[string]any{
		"voteCount": state.Count,
		"votedBy":   state.VotedBy,
	}
	return r.store.Patch(ctx, punchline.CollectionComments, key, fields, nil)
}
