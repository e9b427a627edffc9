package usecase

import (
	"context"

	punchline "github.com/jokehub/punchline"
)

// VoteState is the pair of derived vote fields on a content record.
// Count is always computed from VotedBy, never incremented on its own.
type VoteState struct {
	Count   int
	VotedBy []string
}

// VoteStore reads and writes only the vote fields of a content record.
// VoteState must hit the store directly (no caching): the ledger's
// protocol is read-freshest-then-write.
type VoteStore interface {
	VoteState(ctx context.Context, key string) (VoteState, error)
	PatchVoteState(ctx context.Context, key string, state VoteState) error
}

// ProfileRepository defines persistence/lookup for profiles. QueryByUID
// uses the store's server-side equality filter and may fail on stores
// that do not index the field; All is the full-collection fallback.
// Both return records in store-enumeration order.
type ProfileRepository interface {
	QueryByUID(ctx context.Context, uid string) ([]punchline.Profile, error)
	All(ctx context.Context) ([]punchline.Profile, error)
	Get(ctx context.Context, key string) (punchline.Profile, error)
	Create(ctx context.Context, p punchline.Profile) (string, error)
	Update(ctx context.Context, p punchline.Profile) (punchline.Profile, error)
}

// JokeRepository defines persistence/lookup for jokes. Update replaces
// only the owner-editable fields; vote fields go through the VoteStore.
type JokeRepository interface {
	VoteStore
	All(ctx context.Context) ([]punchline.Joke, error)
	QueryByUID(ctx context.Context, uid string) ([]punchline.Joke, error)
	Get(ctx context.Context, key string) (punchline.Joke, error)
	Create(ctx context.Context, j punchline.Joke) (string, error)
	Update(ctx context.Context, j punchline.Joke) error
	Delete(ctx context.Context, key string) error
}

// CommentRepository defines persistence/lookup for comments.
type CommentRepository interface {
	VoteStore
	All(ctx context.Context) ([]punchline.Comment, error)
	QueryByJoke(ctx context.Context, jokeKey string) ([]punchline.Comment, error)
	QueryByUID(ctx context.Context, uid string) ([]punchline.Comment, error)
	Get(ctx context.Context, key string) (punchline.Comment, error)
	Create(ctx context.Context, cm punchline.Comment) (string, error)
	Update(ctx context.Context, cm punchline.Comment) error
	Delete(ctx context.Context, key string) error
}

// TagRepository defines the shared label registry. The store enforces
// no uniqueness on labels; the reconciler is the only writer.
type TagRepository interface {
	All(ctx context.Context) ([]punchline.Tag, error)
	Create(ctx context.Context, label string) (string, error)
}

// AuthorResolver yields the display name to denormalize onto newly
// created content records.
type AuthorResolver interface {
	AuthorName(ctx context.Context, ident punchline.Identity) string
}
