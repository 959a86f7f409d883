package middleware

import "github.com/gin-gonic/gin"

const (
	cacheHitKey    = "cache_hit"
	cacheHeaderKey = "X-Cache"
)

// SetCacheHit records whether the response was served from cache and
// advertises it through the X-Cache header.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(cacheHitKey, hit)
	if hit {
		c.Header(cacheHeaderKey, "HIT")
		return
	}
	c.Header(cacheHeaderKey, "MISS")
}

// CacheHit reports the value stored by SetCacheHit; ok is false when unset.
func CacheHit(c *gin.Context) (hit bool, ok bool) {
	value, exists := c.Get(cacheHitKey)
	if !exists {
		return false, false
	}
	hit, ok = value.(bool)
	return hit, ok
}
