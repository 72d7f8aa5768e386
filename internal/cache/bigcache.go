// internal/cache/bigcache.go
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCache is a byte cache where every entry expires after the same TTL.
type BigCache struct {
	Cache *bigcache.BigCache
}

func NewBigCache(allKeysExpTime time.Duration) (*BigCache, error) {
	cfg := bigcache.DefaultConfig(allKeysExpTime)
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &BigCache{Cache: cache}, nil
}

func (s *BigCache) Set(key string, entry []byte) error {
	return s.Cache.Set(key, entry)
}

// Get reports a miss as ok=false rather than an error.
func (s *BigCache) Get(key string) ([]byte, bool, error) {
	entry, err := s.Cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

func (s *BigCache) Delete(key string) error {
	err := s.Cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (s *BigCache) Close() error {
	return s.Cache.Close()
}
