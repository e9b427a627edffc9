package usecase

import (
	"context"
	"fmt"
	"sort"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/internal/domain"
)

// --- in-memory fakes over the repository ports ---
//
// Each fake keeps records keyed by store key and can be told to fail
// its indexed query (simulating an unsupported filter) or its full
// scan (simulating the store being down).

var errDown = domain.TransportError{Op: "fake store"}

type fakeProfileRepo struct {
	records   map[string]punchline.Profile
	queryFail bool
	scanFail  bool
	nextKey   int
	created   []punchline.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{records: map[string]punchline.Profile{}}
}

func (f *fakeProfileRepo) add(key string, p punchline.Profile) {
	p.Key = key
	f.records[key] = p
}

func (f *fakeProfileRepo) ordered() []punchline.Profile {
	keys := make([]string, 0, len(f.records))
	for k := range f.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]punchline.Profile, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.records[k])
	}
	return out
}

func (f *fakeProfileRepo) QueryByUID(ctx context.Context, uid string) ([]punchline.Profile, error) {
	if f.queryFail {
		return nil, errDown
	}
	var out []punchline.Profile
	for _, p := range f.ordered() {
		if p.UID == uid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) All(ctx context.Context) ([]punchline.Profile, error) {
	if f.scanFail {
		return nil, errDown
	}
	return f.ordered(), nil
}

func (f *fakeProfileRepo) Get(ctx context.Context, key string) (punchline.Profile, error) {
	p, ok := f.records[key]
	if !ok {
		return punchline.Profile{}, domain.NotFoundError{Resource: "profile"}
	}
	return p, nil
}

func (f *fakeProfileRepo) Create(ctx context.Context, p punchline.Profile) (string, error) {
	f.nextKey++
	key := fmt.Sprintf("-P%d", f.nextKey)
	f.add(key, p)
	f.created = append(f.created, p)
	return key, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, p punchline.Profile) (punchline.Profile, error) {
	if _, ok := f.records[p.Key]; !ok {
		return punchline.Profile{}, domain.NotFoundError{Resource: "profile"}
	}
	f.records[p.Key] = p
	return p, nil
}

type fakeJokeRepo struct {
	records   map[string]punchline.Joke
	queryFail bool
	scanFail  bool
	patchFail bool
	nextKey   int
	patches   int
}

func newFakeJokeRepo() *fakeJokeRepo {
	return &fakeJokeRepo{records: map[string]punchline.Joke{}}
}

func (f *fakeJokeRepo) add(key string, j punchline.Joke) {
	j.Key = key
	f.records[key] = j
}

func (f *fakeJokeRepo) ordered() []punchline.Joke {
	keys := make([]string, 0, len(f.records))
	for k := range f.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]punchline.Joke, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.records[k])
	}
	return out
}

func (f *fakeJokeRepo) All(ctx context.Context) ([]punchline.Joke, error) {
	if f.scanFail {
		return nil, errDown
	}
	return f.ordered(), nil
}

func (f *fakeJokeRepo) QueryByUID(ctx context.Context, uid string) ([]punchline.Joke, error) {
	if f.queryFail {
		return nil, errDown
	}
	var out []punchline.Joke
	for _, j := range f.ordered() {
		if j.UID == uid {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJokeRepo) Get(ctx context.Context, key string) (punchline.Joke, error) {
	j, ok := f.records[key]
	if !ok {
		return punchline.Joke{}, domain.NotFoundError{Resource: "joke"}
	}
	return j, nil
}

func (f *fakeJokeRepo) Create(ctx context.Context, j punchline.Joke) (string, error) {
	f.nextKey++
	key := fmt.Sprintf("-J%d", f.nextKey)
	f.add(key, j)
	return key, nil
}

func (f *fakeJokeRepo) Update(ctx context.Context, j punchline.Joke) error {
	current, ok := f.records[j.Key]
	if !ok {
		return domain.NotFoundError{Resource: "joke"}
	}
	current.Content = j.Content
	current.Tags = j.Tags
	f.records[j.Key] = current
	return nil
}

func (f *fakeJokeRepo) Delete(ctx context.Context, key string) error {
	delete(f.records, key)
	return nil
}

func (f *fakeJokeRepo) VoteState(ctx context.Context, key string) (VoteState, error) {
	j, ok := f.records[key]
	if !ok {
		return VoteState{}, domain.NotFoundError{Resource: "joke"}
	}
	return VoteState{Count: j.VoteCount, VotedBy: j.VotedBy}, nil
}

func (f *fakeJokeRepo) PatchVoteState(ctx context.Context, key string, state VoteState) error {
	if f.patchFail {
		return errDown
	}
	j, ok := f.records[key]
	if !ok {
		return domain.NotFoundError{Resource: "joke"}
	}
	j.VoteCount = state.Count
	j.VotedBy = state.VotedBy
	f.records[key] = j
	f.patches++
	return nil
}

type fakeCommentRepo struct {
	records   map[string]punchline.Comment
	queryFail bool
	scanFail  bool
	nextKey   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{records: map[string]punchline.Comment{}}
}

func (f *fakeCommentRepo) add(key string, cm punchline.Comment) {
	cm.Key = key
	f.records[key] = cm
}

func (f *fakeCommentRepo) ordered() []punchline.Comment {
	keys := make([]string, 0, len(f.records))
	for k := range f.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]punchline.Comment, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.records[k])
	}
	return out
}

func (f *fakeCommentRepo) All(ctx context.Context) ([]punchline.Comment, error) {
	if f.scanFail {
		return nil, errDown
	}
	return f.ordered(), nil
}

func (f *fakeCommentRepo) QueryByJoke(ctx context.Context, jokeKey string) ([]punchline.Comment, error) {
	if f.queryFail {
		return nil, errDown
	}
	var out []punchline.Comment
	for _, cm := range f.ordered() {
		if cm.JokeKey == jokeKey {
			out = append(out, cm)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) QueryByUID(ctx context.Context, uid string) ([]punchline.Comment, error) {
	if f.queryFail {
		return nil, errDown
	}
	var out []punchline.Comment
	for _, cm := range f.ordered() {
		if cm.UID == uid {
			out = append(out, cm)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) Get(ctx context.Context, key string) (punchline.Comment, error) {
	cm, ok := f.records[key]
	if !ok {
		return punchline.Comment{}, domain.NotFoundError{Resource: "comment"}
	}
	return cm, nil
}

func (f *fakeCommentRepo) Create(ctx context.Context, cm punchline.Comment) (string, error) {
	f.nextKey++
	key := fmt.Sprintf("-C%d", f.nextKey)
	f.add(key, cm)
	return key, nil
}

func (f *fakeCommentRepo) Update(ctx context.Context, cm punchline.Comment) error {
	current, ok := f.records[cm.Key]
	if !ok {
		return domain.NotFoundError{Resource: "comment"}
	}
	current.Content = cm.Content
	f.records[cm.Key] = current
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, key string) error {
	delete(f.records, key)
	return nil
}

func (f *fakeCommentRepo) VoteState(ctx context.Context, key string) (VoteState, error) {
	cm, ok := f.records[key]
	if !ok {
		return VoteState{}, domain.NotFoundError{Resource: "comment"}
	}
	return VoteState{Count: cm.VoteCount, VotedBy: cm.VotedBy}, nil
}

func (f *fakeCommentRepo) PatchVoteState(ctx context.Context, key string, state VoteState) error {
	cm, ok := f.records[key]
	if !ok {
		return domain.NotFoundError{Resource: "comment"}
	}
	cm.VoteCount = state.Count
	cm.VotedBy = state.VotedBy
	f.records[key] = cm
	return nil
}

type fakeTagRepo struct {
	records    map[string]punchline.Tag
	allFail    bool
	createFail bool
	nextKey    int
	created    []string
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{records: map[string]punchline.Tag{}}
}

func (f *fakeTagRepo) add(key, label string) {
	f.records[key] = punchline.Tag{Key: key, Label: label}
}

func (f *fakeTagRepo) All(ctx context.Context) ([]punchline.Tag, error) {
	if f.allFail {
		return nil, errDown
	}
	keys := make([]string, 0, len(f.records))
	for k := range f.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]punchline.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.records[k])
	}
	return out, nil
}

func (f *fakeTagRepo) Create(ctx context.Context, label string) (string, error) {
	if f.createFail {
		return "", errDown
	}
	f.nextKey++
	key := fmt.Sprintf("-T%d", f.nextKey)
	f.add(key, label)
	f.created = append(f.created, label)
	return key, nil
}

// staticAuthor is an AuthorResolver that always answers with a fixed
// name, or falls back to the provider attributes when empty.
type staticAuthor struct {
	name string
}

func (s staticAuthor) AuthorName(ctx context.Context, ident punchline.Identity) string {
	if s.name != "" {
		return s.name
	}
	return ident.Name
}
