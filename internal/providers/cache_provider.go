package providers

import (
	"ratingd/internal/structures"
	"sync"
	"unsafe"

	"github.com/coocood/freecache"
	"go.uber.org/atomic"
)

// CacheProviderInterface caches serialized timeline responses. Writers
// call Clear after every change to the rating files, which also bumps the
// generation. Set stores a value only while the generation the caller
// captured before computing it is still current.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Generation() uint64
	Set(key string, value []byte, generation uint64) bool
	Clear()
}

type CacheProvider struct {
	mu         sync.Mutex
	cache      *freecache.Cache
	ttl        int
	generation atomic.Uint64
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	ttl := max(int(conf.Cache.TTL.Seconds()), 1)

	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%ds", conf.Cache.Size, ttl)

	return &CacheProvider{
		cache: freecache.NewCache(sizeBytes),
		ttl:   ttl,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is never modified.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *CacheProvider) Generation() uint64 {
	return c.generation.Load()
}

func (c *CacheProvider) Set(key string, value []byte, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation.Load() != generation {
		return false
	}
	return c.cache.Set(unsafeStringToBytes(key), value, c.ttl) == nil
}

func (c *CacheProvider) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation.Inc()
	c.cache.Clear()
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)           { return nil, false }
func (n *noopCache) Generation() uint64                    { return 0 }
func (n *noopCache) Set(_ string, _ []byte, _ uint64) bool { return false }
func (n *noopCache) Clear()                                {}
