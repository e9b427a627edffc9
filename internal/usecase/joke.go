package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/internal/domain"
)

// JokeUsecase orchestrates joke reads and writes. Writes resolve their
// auxiliary records first (canonical tags, denormalized author name)
// and only then issue the primary write.
type JokeUsecase struct {
	jokes  JokeRepository
	author AuthorResolver
	tags   *TagReconciler
	ledger *VoteLedger
	now    func() time.Time
}

func NewJokeUsecase(jokes JokeRepository, author AuthorResolver, tags *TagReconciler) *JokeUsecase {
	return &JokeUsecase{
		jokes:  jokes,
		author: author,
		tags:   tags,
		ledger: NewVoteLedger(jokes, "joke"),
		now:    time.Now,
	}
}

func (uc *JokeUsecase) List(ctx context.Context) ([]punchline.Joke, error) {
	jokes, err := uc.jokes.All(ctx)
	if err != nil {
		return nil, err
	}
	sortJokes(jokes)
	return jokes, nil
}

// ListByOwner uses the same lookup strategy as identity resolution:
// indexed query first, full scan when the filter fails. Only when both
// tiers fail does the transport failure surface.
func (uc *JokeUsecase) ListByOwner(ctx context.Context, uid string) ([]punchline.Joke, error) {
	if uid == "" {
		return nil, domain.ValidationError{Field: "uid", Reason: "required"}
	}
	jokes, ok := jokesByOwner(ctx, uc.jokes, uid)
	if !ok {
		return nil, domain.TransportError{Op: "list jokes by owner"}
	}
	sortJokes(jokes)
	return jokes, nil
}

func (uc *JokeUsecase) Get(ctx context.Context, key string) (punchline.Joke, error) {
	return uc.jokes.Get(ctx, key)
}

// Search filters the full collection client-side: the store cannot do
// substring matching, so the UI's search runs here, over content and
// tag labels, case-insensitively.
func (uc *JokeUsecase) Search(ctx context.Context, query string) ([]punchline.Joke, error) {
	jokes, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return jokes, nil
	}

	matched := make([]punchline.Joke, 0, len(jokes))
	for _, j := range jokes {
		if strings.Contains(strings.ToLower(j.Content), term) || tagsMatch(j.Tags, term) {
			matched = append(matched, j)
		}
	}
	return matched, nil
}

func tagsMatch(tags punchline.TagList, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func (uc *JokeUsecase) Create(ctx context.Context, ident punchline.Identity, draft punchline.Joke) (punchline.Joke, error) {
	ctx, span := tracer.Start(ctx, "Joke.Create")
	defer span.End()

	if ident.UID == "" {
		return punchline.Joke{}, domain.ValidationError{Field: "uid", Reason: "required"}
	}
	if strings.TrimSpace(draft.Content) == "" {
		return punchline.Joke{}, domain.ValidationError{Field: "content", Reason: "required"}
	}

	joke := punchline.Joke{
		UID:        ident.UID,
		AuthorName: uc.author.AuthorName(ctx, ident),
		Content:    draft.Content,
		Tags:       uc.tags.Ensure(ctx, draft.Tags),
		CreatedAt:  uc.now().UTC(),
	}

	key, err := uc.jokes.Create(ctx, joke)
	if err != nil {
		return punchline.Joke{}, err
	}
	joke.Key = key
	return joke, nil
}

// Update replaces the owner-editable fields (content, tags). Vote
// fields are never touched here; they belong to the ledger.
func (uc *JokeUsecase) Update(ctx context.Context, ident punchline.Identity, joke punchline.Joke) (punchline.Joke, error) {
	ctx, span := tracer.Start(ctx, "Joke.Update")
	defer span.End()

	if strings.TrimSpace(joke.Content) == "" {
		return punchline.Joke{}, domain.ValidationError{Field: "content", Reason: "required"}
	}

	current, err := uc.jokes.Get(ctx, joke.Key)
	if err != nil {
		return punchline.Joke{}, err
	}
	if current.UID != ident.UID {
		return punchline.Joke{}, domain.PermissionError{UID: ident.UID}
	}

	current.Content = joke.Content
	current.Tags = uc.tags.Ensure(ctx, joke.Tags)
	if err := uc.jokes.Update(ctx, current); err != nil {
		return punchline.Joke{}, err
	}
	return current, nil
}

func (uc *JokeUsecase) Delete(ctx context.Context, ident punchline.Identity, key string) error {
	ctx, span := tracer.Start(ctx, "Joke.Delete")
	defer span.End()

	current, err := uc.jokes.Get(ctx, key)
	if err != nil {
		return err
	}
	if current.UID != ident.UID {
		return domain.PermissionError{UID: ident.UID}
	}
	return uc.jokes.Delete(ctx, key)
}

// Vote applies a one-time increment by uid; a repeat vote returns
// ErrAlreadyVoted without writing.
func (uc *JokeUsecase) Vote(ctx context.Context, key, uid string) (VoteState, error) {
	return uc.ledger.Apply(ctx, key, uid)
}

func sortJokes(jokes []punchline.Joke) {
	sort.SliceStable(jokes, func(i, j int) bool {
		return jokes[i].CreatedAt.After(jokes[j].CreatedAt)
	})
}
