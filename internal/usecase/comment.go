package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/internal/domain"
)

// CommentUsecase orchestrates comment reads and writes, mirroring the
// joke flow: resolve auxiliary data first, then the primary write.
type CommentUsecase struct {
	comments CommentRepository
	jokes    JokeRepository
	author   AuthorResolver
	ledger   *VoteLedger
	now      func() time.Time
}

func NewCommentUsecase(comments CommentRepository, jokes JokeRepository, author AuthorResolver) *CommentUsecase {
	return &CommentUsecase{
		comments: comments,
		jokes:    jokes,
		author:   author,
		ledger:   NewVoteLedger(comments, "comment"),
		now:      time.Now,
	}
}

// ListByJoke lists a joke's comments, indexed query first with a scan
// fallback, oldest first.
func (uc *CommentUsecase) ListByJoke(ctx context.Context, jokeKey string) ([]punchline.Comment, error) {
	if jokeKey == "" {
		return nil, domain.ValidationError{Field: "jokeKey", Reason: "required"}
	}

	comments, ok := firstOf(ctx,
		func(ctx context.Context) ([]punchline.Comment, bool) {
			matches, err := uc.comments.QueryByJoke(ctx, jokeKey)
			if err != nil {
				slog.DebugContext(ctx, "indexed comment lookup failed, falling back to scan",
					slog.String("jokeKey", jokeKey),
					slog.String("error", err.Error()),
					slog.String("module", "comments"),
				)
				return nil, false
			}
			return filterComments(matches, "", jokeKey), true
		},
		func(ctx context.Context) ([]punchline.Comment, bool) {
			all, err := uc.comments.All(ctx)
			if err != nil {
				return nil, false
			}
			return filterComments(all, "", jokeKey), true
		},
	)
	if !ok {
		return nil, domain.TransportError{Op: "list comments by joke"}
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (uc *CommentUsecase) ListByOwner(ctx context.Context, uid string) ([]punchline.Comment, error) {
	if uid == "" {
		return nil, domain.ValidationError{Field: "uid", Reason: "required"}
	}
	comments, ok := commentsByOwner(ctx, uc.comments, uid)
	if !ok {
		return nil, domain.TransportError{Op: "list comments by owner"}
	}
	return comments, nil
}

func (uc *CommentUsecase) Create(ctx context.Context, ident punchline.Identity, draft punchline.Comment) (punchline.Comment, error) {
	ctx, span := tracer.Start(ctx, "Comment.Create")
	defer span.End()

	if ident.UID == "" {
		return punchline.Comment{}, domain.ValidationError{Field: "uid", Reason: "required"}
	}
	if strings.TrimSpace(draft.Content) == "" {
		return punchline.Comment{}, domain.ValidationError{Field: "content", Reason: "required"}
	}
	if draft.JokeKey == "" {
		return punchline.Comment{}, domain.ValidationError{Field: "jokeKey", Reason: "required"}
	}

	// the parent must exist; a comment on a deleted joke is NotFound
	if _, err := uc.jokes.Get(ctx, draft.JokeKey); err != nil {
		return punchline.Comment{}, err
	}

	comment := punchline.Comment{
		UID:        ident.UID,
		AuthorName: uc.author.AuthorName(ctx, ident),
		JokeKey:    draft.JokeKey,
		Content:    draft.Content,
		CreatedAt:  uc.now().UTC(),
	}

	key, err := uc.comments.Create(ctx, comment)
	if err != nil {
		return punchline.Comment{}, err
	}
	comment.Key = key
	return comment, nil
}

func (uc *CommentUsecase) Update(ctx context.Context, ident punchline.Identity, comment punchline.Comment) (punchline.Comment, error) {
	ctx, span := tracer.Start(ctx, "Comment.Update")
	defer span.End()

	if strings.TrimSpace(comment.Content) == "" {
		return punchline.Comment{}, domain.ValidationError{Field: "content", Reason: "required"}
	}

	current, err := uc.comments.Get(ctx, comment.Key)
	if err != nil {
		return punchline.Comment{}, err
	}
	if current.UID != ident.UID {
		return punchline.Comment{}, domain.PermissionError{UID: ident.UID}
	}

	current.Content = comment.Content
	if err := uc.comments.Update(ctx, current); err != nil {
		return punchline.Comment{}, err
	}
	return current, nil
}

func (uc *CommentUsecase) Delete(ctx context.Context, ident punchline.Identity, key string) error {
	ctx, span := tracer.Start(ctx, "Comment.Delete")
	defer span.End()

	current, err := uc.comments.Get(ctx, key)
	if err != nil {
		return err
	}
	if current.UID != ident.UID {
		return domain.PermissionError{UID: ident.UID}
	}
	return uc.comments.Delete(ctx, key)
}

func (uc *CommentUsecase) Vote(ctx context.Context, key, uid string) (VoteState, error) {
	return uc.ledger.Apply(ctx, key, uid)
}
