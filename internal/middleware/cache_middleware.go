package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dezmoond/chita-afisha/internal/cache"
)

func CacheMiddleware(store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("cache", store)
		c.Next()
	}
}

func GetCache(c *gin.Context) cache.Cache {
	store, exists := c.Get("cache")
	if !exists {
		return nil
	}
	return store.(cache.Cache)
}
