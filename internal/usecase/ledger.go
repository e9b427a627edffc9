package usecase

import (
	"context"

	pkgerrors "github.com/pkg/errors"

	"github.com/jokehub/punchline/internal/domain"
)

// VoteLedger applies one-time increments to a content record's vote
// fields. The store offers no transactions, so the protocol is
// read-check-write: load the freshest state, reject duplicates
// client-side, write back only the two vote fields. Two concurrent
// applications by different voters can still race and lose one
// increment (last write wins on the pair); that is the store's
// documented consistency, not something this type papers over.
type VoteLedger struct {
	store VoteStore
	kind  string
}

func NewVoteLedger(store VoteStore, kind string) *VoteLedger {
	return &VoteLedger{store: store, kind: kind}
}

// Apply records one vote by uid on the record at key. A second call
// with the same pair returns ErrAlreadyVoted and performs no write.
func (l *VoteLedger) Apply(ctx context.Context, key, uid string) (VoteState, error) {
	ctx, span := tracer.Start(ctx, "VoteLedger.Apply")
	defer span.End()

	if uid == "" {
		return VoteState{}, domain.ValidationError{Field: "uid", Reason: "required"}
	}
	if key == "" {
		return VoteState{}, domain.ValidationError{Field: "key", Reason: "required"}
	}

	state, err := l.store.VoteState(ctx, key)
	if err != nil {
		return VoteState{}, err
	}

	// nil VotedBy covers legacy records written before the field existed
	for _, voter := range state.VotedBy {
		if voter == uid {
			return VoteState{}, domain.AlreadyVotedError{Key: key, UID: uid}
		}
	}

	next := VoteState{
		VotedBy: append(append([]string(nil), state.VotedBy...), uid),
	}
	next.Count = len(next.VotedBy) // count is derived, never incremented

	if err := l.store.PatchVoteState(ctx, key, next); err != nil {
		span.RecordError(pkgerrors.Wrapf(err, "vote write failed for %s %s", l.kind, key))
		return VoteState{}, err
	}
	return next, nil
}
