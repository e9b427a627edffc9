package usecase

import (
	"context"
	"log/slog"
	"strings"
)

// TagReconciler turns free-text labels into the canonical set to store
// on a content record, registering labels the shared registry has not
// seen before. The registry has no uniqueness constraint; concurrent
// reconciliation of the same new label can produce duplicate records,
// a tolerated anomaly cleaned up (if ever) by maintenance, not here.
type TagReconciler struct {
	repo  TagRepository
	exact bool
}

// NewTagReconciler builds a reconciler with the configured match mode:
// "exact" compares labels byte-for-byte, anything else folds case.
func NewTagReconciler(repo TagRepository, match string) *TagReconciler {
	return &TagReconciler{
		repo:  repo,
		exact: match == "exact",
	}
}

func (r *TagReconciler) canon(label string) string {
	label = strings.TrimSpace(label)
	if r.exact {
		return label
	}
	return strings.ToLower(label)
}

// Ensure returns the canonical labels for candidates, order-preserving
// by first occurrence and collapsed under the configured match mode.
// Matched labels come back with the registry's canonical text; new
// labels keep their first-seen casing and are registered best-effort.
// Ensure never fails: a label whose registration fails is still
// returned by its literal text and will be offered for creation again
// the next time any content uses it.
func (r *TagReconciler) Ensure(ctx context.Context, candidates []string) []string {
	ctx, span := tracer.Start(ctx, "TagReconciler.Ensure")
	defer span.End()

	registry := map[string]string{}
	existing, err := r.repo.All(ctx)
	if err != nil {
		slog.WarnContext(ctx, "tag registry unavailable, treating as empty",
			slog.String("error", err.Error()),
			slog.String("module", "tags"),
		)
	} else {
		for _, tag := range existing {
			key := r.canon(tag.Label)
			if key == "" {
				continue
			}
			// first record in enumeration order wins among duplicates
			if _, ok := registry[key]; !ok {
				registry[key] = tag.Label
			}
		}
	}

	seen := map[string]bool{}
	out := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		label := strings.TrimSpace(candidate)
		if label == "" {
			continue
		}
		key := r.canon(label)
		if seen[key] {
			continue
		}
		seen[key] = true

		if canonical, ok := registry[key]; ok {
			out = append(out, canonical)
			continue
		}

		out = append(out, label)
		if _, err := r.repo.Create(ctx, label); err != nil {
			slog.WarnContext(ctx, "tag registration failed, keeping literal label",
				slog.String("label", label),
				slog.String("error", err.Error()),
				slog.String("module", "tags"),
			)
		}
	}
	return out
}
