package database

import (
	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached returns a client for the shared profile cache, or nil
// when no server is configured (callers treat nil as cache-off).
func NewMemcached(server string) *memcache.Client {
	if server == "" {
		return nil
	}
	return memcache.New(server)
}
