package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/client"
)

const tagRegistryCacheKey = "tags:all"

// TagRepository reads and writes the shared label registry. The full
// registry is fetched on every reconciliation, so it sits behind a
// short-lived in-process cache; Create drops the cached copy. A stale
// registry only risks the reconciler re-creating a label that another
// process just registered, which the store tolerates anyway.
type TagRepository struct {
	store *client.Client
	cache *cache.Cache
}

func NewTagRepository(store *client.Client) *TagRepository {
	return &TagRepository{
		store: store,
		cache: cache.New(30*time.Second, time.Minute),
	}
}

func (r *TagRepository) All(ctx context.Context) ([]punchline.Tag, error) {
	if cached, found := r.cache.Get(tagRegistryCacheKey); found {
		return cached.([]punchline.Tag), nil
	}

	records, err := r.store.List(ctx, punchline.CollectionTags)
	if err != nil {
		return nil, err
	}
	tags, err := decodeKeyed(records, func(tag *punchline.Tag, key string) { tag.Key = key })
	if err != nil {
		return nil, err
	}

	r.cache.Set(tagRegistryCacheKey, tags, cache.DefaultExpiration)
	return tags, nil
}

func (r *TagRepository) Create(ctx context.Context, label string) (string, error) {
	key, err := r.store.Create(ctx, punchline.CollectionTags, punchline.Tag{Label: label})
	if err != nil {
		return "", err
	}
	r.cache.Delete(tagRegistryCacheKey)
	return key, nil
}
