package graph

import (
	"sync"
	"time"
)

var (
	chartCache    = map[string]chartCacheEntry{}
	chartCacheMu  sync.Mutex
	chartCacheTTL = 60 * time.Second
)

// SetCacheTTL changes how long rendered charts are reused. Zero disables
// the cache.
func SetCacheTTL(ttl time.Duration) {
	chartCacheMu.Lock()
	chartCacheTTL = ttl
	chartCacheMu.Unlock()
}

func cacheGet(key string) ([]byte, bool) {
	chartCacheMu.Lock()
	defer chartCacheMu.Unlock()
	if entry, ok := chartCache[key]; ok {
		if time.Now().Before(entry.createdAt.Add(chartCacheTTL)) {
			img := make([]byte, len(entry.image))
			copy(img, entry.image)
			return img, true
		}
		delete(chartCache, key)
	}
	return nil, false
}

func cacheSet(key string, img []byte) {
	chartCacheMu.Lock()
	defer chartCacheMu.Unlock()
	if chartCacheTTL <= 0 {
		return
	}
	stored := make([]byte, len(img))
	copy(stored, img)
	chartCache[key] = chartCacheEntry{createdAt: time.Now(), image: stored}
}
