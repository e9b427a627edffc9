package punchline

import (
	"encoding/json"
	"time"
)

// Collection names in the remote store.
const (
	CollectionJokes    = "jokes"
	CollectionComments = "comments"
	CollectionTags     = "tags"
	CollectionUsers    = "users"
)

// Identity is the signed-in account as handed over by the external
// identity provider. UID is opaque and stable; Name/Email are whatever
// display attributes the provider supplied at sign-in.
type Identity struct {
	UID   string `json:"uid"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Joke is a content record. Key is the store-assigned identifier and is
// never part of the stored body; it is attached after fetch.
type Joke struct {
	Key        string    `json:"-"`
	UID        string    `json:"uid"`
	AuthorName string    `json:"authorName,omitempty"`
	Content    string    `json:"content"`
	Tags       TagList   `json:"tags,omitempty"`
	VoteCount  int       `json:"voteCount"`
	VotedBy    []string  `json:"votedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Comment is a content record attached to a joke.
type Comment struct {
	Key        string    `json:"-"`
	UID        string    `json:"uid"`
	AuthorName string    `json:"authorName,omitempty"`
	JokeKey    string    `json:"jokeKey"`
	Content    string    `json:"content"`
	VoteCount  int       `json:"voteCount"`
	VotedBy    []string  `json:"votedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile is the per-account record created on first sign-in. The store
// does not enforce UID uniqueness; resolution tolerates duplicates.
type Profile struct {
	Key   string `json:"-"`
	UID   string `json:"uid"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

// Tag is a shared reference record for a free-text label.
type Tag struct {
	Key   string `json:"-"`
	Label string `json:"label"`
}

// TagList is the canonical tag representation: bare strings. Older
// revisions of the store hold `{"label": "..."}` objects instead; those
// are accepted on decode only, as an import concern.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = plain
		return nil
	}

	var legacy []struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	out := make([]string, 0, len(legacy))
	for _, l := range legacy {
		if l.Label != "" {
			out = append(out, l.Label)
		}
	}
	*t = out
	return nil
}

// Event is published on content mutations and streamed to realtime
// subscribers.
type Event struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	JokeKey   string    `json:"jokeKey,omitempty"`
	UID       string    `json:"uid,omitempty"`
	VoteCount int       `json:"voteCount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventJokeCreated    = "joke.created"
	EventJokeDeleted    = "joke.deleted"
	EventJokeVoted      = "joke.voted"
	EventCommentCreated = "comment.created"
	EventCommentDeleted = "comment.deleted"
	EventCommentVoted   = "comment.voted"
)
