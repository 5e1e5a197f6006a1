// Package cache provides the short-lived page cache used by the index view.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// PageCache stores rendered page bodies for a fixed TTL.
type PageCache struct {
	c *gocache.Cache
}

func New(ttl time.Duration) *PageCache {
	return &PageCache{c: gocache.New(ttl, 2*ttl)}
}

func (p *PageCache) Get(key string) ([]byte, bool) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

func (p *PageCache) Set(key string, body []byte) {
	p.c.SetDefault(key, body)
}

// Flush drops all cached pages. Used by tests.
func (p *PageCache) Flush() {
	p.c.Flush()
}
