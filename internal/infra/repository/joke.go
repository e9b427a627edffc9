package repository

import (
	"context"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/client"
	"github.com/jokehub/punchline/internal/usecase"
)

// JokeRepository reads and writes joke records. Nothing here is
// cached: the vote protocol depends on reading the freshest state
// immediately before writing.
type JokeRepository struct {
	store *client.Client
}

func NewJokeRepository(store *client.Client) *JokeRepository {
	return &JokeRepository{store: store}
}

func (r *JokeRepository) All(ctx context.Context) ([]punchline.Joke, error) {
	records, err := r.store.List(ctx, punchline.CollectionJokes)
	if err != nil {
		return nil, err
	}
	return decodeKeyed(records, func(j *punchline.Joke, key string) { j.Key = key })
}

func (r *JokeRepository) QueryByUID(ctx context.Context, uid string) ([]punchline.Joke, error) {
	records, err := r.store.QueryByField(ctx, punchline.CollectionJokes, "uid", uid)
	if err != nil {
		return nil, err
	}
	return decodeKeyed(records, func(j *punchline.Joke, key string) { j.Key = key })
}

func (r *JokeRepository) Get(ctx context.Context, key string) (punchline.Joke, error) {
	var j punchline.Joke
	if err := r.store.Get(ctx, punchline.CollectionJokes, key, &j); err != nil {
		return punchline.Joke{}, err
	}
	j.Key = key
	return j, nil
}

func (r *JokeRepository) Create(ctx context.Context, j punchline.Joke) (string, error) {
	return r.store.Create(ctx, punchline.CollectionJokes, j)
}

// Update patches only the owner-editable fields; the vote pair is
// written exclusively through PatchVoteState.
func (r *JokeRepository) Update(ctx context.Context, j punchline.Joke) error {
	fields := map[string]any{
		"content": j.Content,
		"tags":    j.Tags,
	}
	return r.store.Patch(ctx, punchline.CollectionJokes, j.Key, fields, nil)
}

func (r *JokeRepository) Delete(ctx context.Context, key string) error {
	return r.store.Delete(ctx, punchline.CollectionJokes, key)
}

func (r *JokeRepository) VoteState(ctx context.Context, key string) (usecase.VoteState, error) {
	j, err := r.Get(ctx, key)
	if err != nil {
		return usecase.VoteState{}, err
	}
	return usecase.VoteState{Count: j.VoteCount, VotedBy: j.VotedBy}, nil
}

func (r *JokeRepository) PatchVoteState(ctx context.Context, key string, state usecase.VoteState) error {
	fields := map[string]any{
		"voteCount": state.Count,
		"votedBy":   state.VotedBy,
	}
	return r.store.Patch(ctx, punchline.CollectionJokes, key, fields, nil)
}
