package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/internal/domain"
)

var tracer = otel.Tracer("usecase")

// ProfileUsecase resolves opaque identity tokens into profile records.
// The store cannot join and may hold zero, one, or many profiles per
// UID, so resolution is a fallback chain: indexed query, then full
// scan, and for display purposes a name recovered from the identity's
// own content records.
type ProfileUsecase struct {
	profiles ProfileRepository
	jokes    JokeRepository
	comments CommentRepository
}

func NewProfileUsecase(profiles ProfileRepository, jokes JokeRepository, comments CommentRepository) *ProfileUsecase {
	return &ProfileUsecase{
		profiles: profiles,
		jokes:    jokes,
		comments: comments,
	}
}

// ResolveByUID returns the canonical profile for an identity token, or
// ErrNotFound. Transport failures in either tier are swallowed: partial
// identity data beats a hard failure on a read path, so the next tier
// is simply tried instead.
func (uc *ProfileUsecase) ResolveByUID(ctx context.Context, uid string) (punchline.Profile, error) {
	ctx, span := tracer.Start(ctx, "Profile.ResolveByUID")
	defer span.End()

	if uid == "" {
		return punchline.Profile{}, domain.ValidationError{Field: "uid", Reason: "required"}
	}

	profile, ok := firstOf(ctx,
		uc.queryTier(uid),
		uc.scanTier(uid),
	)
	if !ok {
		return punchline.Profile{}, domain.NotFoundError{Resource: "profile"}
	}
	return profile, nil
}

// queryTier asks the store for an indexed equality match. A failing or
// unsupported filter is not fatal; the scan tier takes over.
func (uc *ProfileUsecase) queryTier(uid string) strategy[punchline.Profile] {
	return func(ctx context.Context) (punchline.Profile, bool) {
		matches, err := uc.profiles.QueryByUID(ctx, uid)
		if err != nil {
			slog.DebugContext(ctx, "indexed profile lookup failed, falling back to scan",
				slog.String("uid", uid),
				slog.String("error", err.Error()),
				slog.String("module", "profiles"),
			)
			return punchline.Profile{}, false
		}
		for _, p := range matches {
			if p.UID == uid {
				return p, true
			}
		}
		return punchline.Profile{}, false
	}
}

// scanTier fetches the whole collection and takes the first match in
// store-enumeration order. Duplicate profiles for one UID are a
// tolerated anomaly, not an error.
func (uc *ProfileUsecase) scanTier(uid string) strategy[punchline.Profile] {
	return func(ctx context.Context) (punchline.Profile, bool) {
		all, err := uc.profiles.All(ctx)
		if err != nil {
			slog.DebugContext(ctx, "profile scan failed",
				slog.String("error", err.Error()),
				slog.String("module", "profiles"),
			)
			return punchline.Profile{}, false
		}
		for _, p := range all {
			if p.UID == uid {
				return p, true
			}
		}
		return punchline.Profile{}, false
	}
}

// DisplayName resolves a UID to something the UI can show. When no
// profile record exists but the identity demonstrably authored
// content, the denormalized author name from its most recent record is
// used instead of a broken "unknown user".
func (uc *ProfileUsecase) DisplayName(ctx context.Context, uid string) (string, error) {
	ctx, span := tracer.Start(ctx, "Profile.DisplayName")
	defer span.End()

	if uid == "" {
		return "", domain.ValidationError{Field: "uid", Reason: "required"}
	}

	name, ok := firstOf(ctx,
		uc.profileNameTier(uid),
		uc.jokeNameTier(uid),
		uc.commentNameTier(uid),
	)
	if !ok {
		return "", domain.NotFoundError{Resource: "display name"}
	}
	return name, nil
}

func (uc *ProfileUsecase) profileNameTier(uid string) strategy[string] {
	return func(ctx context.Context) (string, bool) {
		p, err := uc.ResolveByUID(ctx, uid)
		if err != nil || p.Name == "" {
			return "", false
		}
		return p.Name, true
	}
}

func (uc *ProfileUsecase) jokeNameTier(uid string) strategy[string] {
	return func(ctx context.Context) (string, bool) {
		jokes, ok := jokesByOwner(ctx, uc.jokes, uid)
		if !ok {
			return "", false
		}
		sort.Slice(jokes, func(i, j int) bool { return jokes[i].CreatedAt.After(jokes[j].CreatedAt) })
		for _, j := range jokes {
			if j.AuthorName != "" {
				return j.AuthorName, true
			}
		}
		return "", false
	}
}

func (uc *ProfileUsecase) commentNameTier(uid string) strategy[string] {
	return func(ctx context.Context) (string, bool) {
		comments, ok := commentsByOwner(ctx, uc.comments, uid)
		if !ok {
			return "", false
		}
		sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
		for _, cm := range comments {
			if cm.AuthorName != "" {
				return cm.AuthorName, true
			}
		}
		return "", false
	}
}

// Ensure resolves the signed-in identity's profile, creating one from
// the provider-supplied attributes on first sign-in. The store cannot
// enforce UID uniqueness; uniqueness holds only as far as this
// resolve-then-create path does.
func (uc *ProfileUsecase) Ensure(ctx context.Context, ident punchline.Identity) (punchline.Profile, error) {
	ctx, span := tracer.Start(ctx, "Profile.Ensure")
	defer span.End()

	if ident.UID == "" {
		return punchline.Profile{}, domain.ValidationError{Field: "uid", Reason: "required"}
	}

	existing, err := uc.ResolveByUID(ctx, ident.UID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return punchline.Profile{}, err
	}

	profile := punchline.Profile{
		UID:   ident.UID,
		Name:  ident.Name,
		Email: ident.Email,
	}
	key, err := uc.profiles.Create(ctx, profile)
	if err != nil {
		span.RecordError(pkgerrors.Wrap(err, "profile creation failed"))
		return punchline.Profile{}, err
	}
	profile.Key = key

	slog.InfoContext(ctx, "profile created",
		slog.String("uid", ident.UID),
		slog.String("key", key),
		slog.String("module", "profiles"),
	)
	return profile, nil
}

// Update replaces the owner-editable profile fields. Only the owning
// identity may update its profile.
func (uc *ProfileUsecase) Update(ctx context.Context, ident punchline.Identity, profile punchline.Profile) (punchline.Profile, error) {
	ctx, span := tracer.Start(ctx, "Profile.Update")
	defer span.End()

	if profile.Key == "" {
		return punchline.Profile{}, domain.ValidationError{Field: "key", Reason: "required"}
	}

	current, err := uc.profiles.Get(ctx, profile.Key)
	if err != nil {
		return punchline.Profile{}, err
	}
	if current.UID != ident.UID {
		return punchline.Profile{}, domain.PermissionError{UID: ident.UID}
	}

	profile.UID = current.UID // identity binding is immutable
	return uc.profiles.Update(ctx, profile)
}

// AuthorName yields the display name to denormalize onto new content:
// the resolved profile name when one exists, otherwise whatever the
// identity provider supplied.
func (uc *ProfileUsecase) AuthorName(ctx context.Context, ident punchline.Identity) string {
	if p, err := uc.ResolveByUID(ctx, ident.UID); err == nil && p.Name != "" {
		return p.Name
	}
	return ident.Name
}
