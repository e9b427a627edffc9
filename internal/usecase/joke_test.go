package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/internal/domain"
)

func newJokeUsecase(jokes *fakeJokeRepo, tags *fakeTagRepo, author AuthorResolver) *JokeUsecase {
	if tags == nil {
		tags = newFakeTagRepo()
	}
	if author == nil {
		author = staticAuthor{}
	}
	uc := NewJokeUsecase(jokes, author, NewTagReconciler(tags, "fold"))
	uc.now = func() time.Time { return time.Unix(1000, 0) }
	return uc
}

func TestJokeCreateSnapshotsAuthorAndReconcilesTags(t *testing.T) {
	jokes := newFakeJokeRepo()
	tags := newFakeTagRepo()
	tags.add("-T1", "pun")
	uc := newJokeUsecase(jokes, tags, staticAuthor{name: "Ada"})

	ident := punchline.Identity{UID: "u1", Name: "fallback"}
	created, err := uc.Create(context.Background(), ident, punchline.Joke{
		Content: "why did the gopher cross the road",
		Tags:    punchline.TagList{"PUN", "dad"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Key == "" || created.UID != "u1" {
		t.Fatalf("unexpected joke: %+v", created)
	}
	if created.AuthorName != "Ada" {
		t.Fatalf("expected resolved profile name snapshot, got %q", created.AuthorName)
	}
	if !reflect.DeepEqual([]string(created.Tags), []string{"pun", "dad"}) {
		t.Fatalf("unexpected tags: %v", created.Tags)
	}
	if !reflect.DeepEqual(tags.created, []string{"dad"}) {
		t.Fatalf("expected only the new tag to be registered, got %v", tags.created)
	}
	if created.VoteCount != 0 || created.VotedBy != nil {
		t.Fatalf("new joke must start unvoted: %+v", created)
	}
}

func TestJokeCreateFallsBackToProviderName(t *testing.T) {
	uc := newJokeUsecase(newFakeJokeRepo(), nil, staticAuthor{})

	created, err := uc.Create(context.Background(), punchline.Identity{UID: "u1", Name: "Provider Name"}, punchline.Joke{Content: "ha"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.AuthorName != "Provider Name" {
		t.Fatalf("unexpected author name %q", created.AuthorName)
	}
}

func TestJokeCreateValidation(t *testing.T) {
	uc := newJokeUsecase(newFakeJokeRepo(), nil, nil)

	_, err := uc.Create(context.Background(), punchline.Identity{}, punchline.Joke{Content: "ha"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ValidationError for missing identity, got %v", err)
	}

	_, err = uc.Create(context.Background(), punchline.Identity{UID: "u1"}, punchline.Joke{Content: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ValidationError for empty content, got %v", err)
	}
}

func TestJokeListByOwnerFallsBackToScan(t *testing.T) {
	jokes := newFakeJokeRepo()
	jokes.add("-J1", punchline.Joke{UID: "u1", Content: "a", CreatedAt: time.Unix(1, 0)})
	jokes.add("-J2", punchline.Joke{UID: "u2", Content: "b", CreatedAt: time.Unix(2, 0)})
	jokes.add("-J3", punchline.Joke{UID: "u1", Content: "c", CreatedAt: time.Unix(3, 0)})
	jokes.queryFail = true
	uc := newJokeUsecase(jokes, nil, nil)

	out, err := uc.ListByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list by owner failed: %v", err)
	}
	if len(out) != 2 || out[0].Key != "-J3" || out[1].Key != "-J1" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestJokeListByOwnerBothTiersFail(t *testing.T) {
	jokes := newFakeJokeRepo()
	jokes.queryFail = true
	jokes.scanFail = true
	uc := newJokeUsecase(jokes, nil, nil)

	_, err := uc.ListByOwner(context.Background(), "u1")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestJokeUpdateOwnerOnlyAndPreservesVotes(t *testing.T) {
	jokes := newFakeJokeRepo()
	jokes.add("-J1", punchline.Joke{UID: "u1", Content: "old", VoteCount: 2, VotedBy: []string{"a", "b"}})
	uc := newJokeUsecase(jokes, nil, nil)

	_, err := uc.Update(context.Background(), punchline.Identity{UID: "intruder"}, punchline.Joke{Key: "-J1", Content: "hijacked"})
	if !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected PermissionError, got %v", err)
	}

	updated, err := uc.Update(context.Background(), punchline.Identity{UID: "u1"}, punchline.Joke{Key: "-J1", Content: "new"})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Content != "new" {
		t.Fatalf("content not updated: %+v", updated)
	}
	if updated.VoteCount != 2 || len(updated.VotedBy) != 2 {
		t.Fatalf("vote fields must survive an update: %+v", updated)
	}
}

func TestJokeDeleteOwnerOnly(t *testing.T) {
	jokes := newFakeJokeRepo()
	jokes.add("-J1", punchline.Joke{UID: "u1", Content: "ha"})
	uc := newJokeUsecase(jokes, nil, nil)

	if err := uc.Delete(context.Background(), punchline.Identity{UID: "intruder"}, "-J1"); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if err := uc.Delete(context.Background(), punchline.Identity{UID: "u1"}, "-J1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := uc.Get(context.Background(), "-J1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("joke should be gone, got %v", err)
	}
}

func TestJokeSearchMatchesContentAndTags(t *testing.T) {
	jokes := newFakeJokeRepo()
	jokes.add("-J1", punchline.Joke{UID: "u1", Content: "Why did the chicken", Tags: punchline.TagList{"classic"}})
	jokes.add("-J2", punchline.Joke{UID: "u1", Content: "Knock knock", Tags: punchline.TagList{"Dad Jokes"}})
	jokes.add("-J3", punchline.Joke{UID: "u1", Content: "A horse walks into a bar"})
	uc := newJokeUsecase(jokes, nil, nil)

	byContent, err := uc.Search(context.Background(), "CHICKEN")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(byContent) != 1 || byContent[0].Key != "-J1" {
		t.Fatalf("unexpected content match: %+v", byContent)
	}

	byTag, err := uc.Search(context.Background(), "dad")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(byTag) != 1 || byTag[0].Key != "-J2" {
		t.Fatalf("unexpected tag match: %+v", byTag)
	}

	all, err := uc.Search(context.Background(), "  ")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("blank query should return everything, got %d", len(all))
	}
}
