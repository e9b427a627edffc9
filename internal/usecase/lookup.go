package usecase

import (
	"context"
	"log/slog"

	punchline "github.com/jokehub/punchline"
)

// Owner lookups share the resolver's strategy: indexed query first,
// full scan when the filter fails. Both helpers swallow tier failures
// and report only whether any tier produced a result.

func jokesByOwner(ctx context.Context, repo JokeRepository, uid string) ([]punchline.Joke, bool) {
	return firstOf(ctx,
		func(ctx context.Context) ([]punchline.Joke, bool) {
			matches, err := repo.QueryByUID(ctx, uid)
			if err != nil {
				slog.DebugContext(ctx, "indexed joke lookup failed, falling back to scan",
					slog.String("uid", uid),
					slog.String("error", err.Error()),
					slog.String("module", "jokes"),
				)
				return nil, false
			}
			return filterJokes(matches, uid), true
		},
		func(ctx context.Context) ([]punchline.Joke, bool) {
			all, err := repo.All(ctx)
			if err != nil {
				slog.DebugContext(ctx, "joke scan failed",
					slog.String("error", err.Error()),
					slog.String("module", "jokes"),
				)
				return nil, false
			}
			return filterJokes(all, uid), true
		},
	)
}

func commentsByOwner(ctx context.Context, repo CommentRepository, uid string) ([]punchline.Comment, bool) {
	return firstOf(ctx,
		func(ctx context.Context) ([]punchline.Comment, bool) {
			matches, err := repo.QueryByUID(ctx, uid)
			if err != nil {
				slog.DebugContext(ctx, "indexed comment lookup failed, falling back to scan",
					slog.String("uid", uid),
					slog.String("error", err.Error()),
					slog.String("module", "comments"),
				)
				return nil, false
			}
			return filterComments(matches, uid, ""), true
		},
		func(ctx context.Context) ([]punchline.Comment, bool) {
			all, err := repo.All(ctx)
			if err != nil {
				slog.DebugContext(ctx, "comment scan failed",
					slog.String("error", err.Error()),
					slog.String("module", "comments"),
				)
				return nil, false
			}
			return filterComments(all, uid, ""), true
		},
	)
}

// filterJokes re-checks the owner field even on query results: the
// store's filter is best-effort and legacy records may carry the field
// in unexpected shapes.
func filterJokes(jokes []punchline.Joke, uid string) []punchline.Joke {
	out := make([]punchline.Joke, 0, len(jokes))
	for _, j := range jokes {
		if j.UID == uid {
			out = append(out, j)
		}
	}
	return out
}

func filterComments(comments []punchline.Comment, uid, jokeKey string) []punchline.Comment {
	out := make([]punchline.Comment, 0, len(comments))
	for _, cm := range comments {
		if uid != "" && cm.UID != uid {
			continue
		}
		if jokeKey != "" && cm.JokeKey != jokeKey {
			continue
		}
		out = append(out, cm)
	}
	return out
}
