package api

import (
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// NewCachingHTTPClient creates an HTTP client with disk-based caching.
// Used for read-mostly listing endpoints that serve Cache-Control headers
// (charge points, session reports); auth endpoints are never cacheable.
func NewCachingHTTPClient(cacheDir string) *http.Client {
	if cacheDir == "" {
		// Use in-memory cache if no cache directory specified
		return &http.Client{
			Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
		}
	}

	return &http.Client{
		Transport: httpcache.NewTransport(diskcache.New(cacheDir)),
	}
}
