package store

import "github.com/dgraph-io/ristretto/v2"

// readCache is a small in-process cache in front of the tiers, so repeated
// reads of the registry blob do not hit the disk every time. It is strictly
// a cache: entries may be dropped at any time and a miss simply falls
// through to the tiers.
type readCache struct {
	c *ristretto.Cache[string, []byte]
}

const (
	cacheNumCounters = 1e5
	cacheMaxCost     = 64 << 20 // 64 MiB of cached values
	cacheBufferItems = 64
)

func newReadCache() (*readCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &readCache{c: c}, nil
}

func cacheKey(namespace, key string) string { return namespace + "\x00" + key }

func (r *readCache) get(namespace, key string) ([]byte, bool) {
	return r.c.Get(cacheKey(namespace, key))
}

func (r *readCache) put(namespace, key string, value []byte) {
	r.c.Set(cacheKey(namespace, key), value, int64(len(value)))
}

func (r *readCache) invalidate(namespace, key string) {
	r.c.Del(cacheKey(namespace, key))
}

func (r *readCache) close() { r.c.Close() }
