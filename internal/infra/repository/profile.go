package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/client"
)

const profileCacheTTL = 300 // seconds

// ProfileRepository reads and writes profile records. Indexed lookups
// go through a cross-process memcache layer when one is configured:
// identity resolution runs on every page load, and profiles change
// rarely. Mutations invalidate the cached entry.
type ProfileRepository struct {
	store *client.Client
	cache *memcache.Client
}

func NewProfileRepository(store *client.Client, cache *memcache.Client) *ProfileRepository {
	return &ProfileRepository{store: store, cache: cache}
}

func cacheKey(uid string) string {
	return "profile:uid:" + uid
}

// cachedProfile re-attaches the store key, which the wire form of a
// profile deliberately omits.
type cachedProfile struct {
	Key string `json:"key"`
	punchline.Profile
}

func (r *ProfileRepository) QueryByUID(ctx context.Context, uid string) ([]punchline.Profile, error) {
	if r.cache != nil {
		if item, err := r.cache.Get(cacheKey(uid)); err == nil {
			var cached cachedProfile
			if err := json.Unmarshal(item.Value, &cached); err == nil && cached.Key != "" {
				cached.Profile.Key = cached.Key
				return []punchline.Profile{cached.Profile}, nil
			}
		}
	}

	records, err := r.store.QueryByField(ctx, punchline.CollectionUsers, "uid", uid)
	if err != nil {
		return nil, err
	}
	profiles, err := decodeKeyed(records, func(p *punchline.Profile, key string) { p.Key = key })
	if err != nil {
		return nil, err
	}

	if r.cache != nil && len(profiles) > 0 {
		r.cacheSet(ctx, profiles[0])
	}
	return profiles, nil
}

func (r *ProfileRepository) All(ctx context.Context) ([]punchline.Profile, error) {
	records, err := r.store.List(ctx, punchline.CollectionUsers)
	if err != nil {
		return nil, err
	}
	return decodeKeyed(records, func(p *punchline.Profile, key string) { p.Key = key })
}

func (r *ProfileRepository) Get(ctx context.Context, key string) (punchline.Profile, error) {
	var p punchline.Profile
	if err := r.store.Get(ctx, punchline.CollectionUsers, key, &p); err != nil {
		return punchline.Profile{}, err
	}
	p.Key = key
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p punchline.Profile) (string, error) {
	key, err := r.store.Create(ctx, punchline.CollectionUsers, p)
	if err != nil {
		return "", err
	}
	r.cacheDrop(ctx, p.UID)
	return key, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p punchline.Profile) (punchline.Profile, error) {
	fields := map[string]any{
		"name":  p.Name,
		"email": p.Email,
		"bio":   p.Bio,
	}
	var updated punchline.Profile
	if err := r.store.Patch(ctx, punchline.CollectionUsers, p.Key, fields, &updated); err != nil {
		return punchline.Profile{}, err
	}
	updated.Key = p.Key
	if updated.UID == "" {
		updated.UID = p.UID
	}
	r.cacheDrop(ctx, updated.UID)
	return updated, nil
}

func (r *ProfileRepository) cacheSet(ctx context.Context, p punchline.Profile) {
	encoded, err := json.Marshal(cachedProfile{Key: p.Key, Profile: p})
	if err != nil {
		return
	}
	err = r.cache.Set(&memcache.Item{
		Key:        cacheKey(p.UID),
		Value:      encoded,
		Expiration: profileCacheTTL,
	})
	if err != nil {
		slog.DebugContext(ctx, "profile cache write failed",
			slog.String("uid", p.UID),
			slog.String("error", err.Error()),
			slog.String("module", "profiles"),
		)
	}
}

func (r *ProfileRepository) cacheDrop(ctx context.Context, uid string) {
	if r.cache == nil || uid == "" {
		return
	}
	if err := r.cache.Delete(cacheKey(uid)); err != nil && err != memcache.ErrCacheMiss {
		slog.DebugContext(ctx, "profile cache invalidation failed",
			slog.String("uid", uid),
			slog.String("error", err.Error()),
			slog.String("module", "profiles"),
		)
	}
}
