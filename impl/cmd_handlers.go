package impl

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// GET /cmd/stop
func (r *ArtCache) CmdStop(ctx echo.Context) error {
	select {
	case r.shutdownCh <- true:
	default:
		log.Warn("stop already requested")
	}
	return ctx.NoContent(http.StatusOK)
}

// GET /cmd/cache lists the cached keys, one per line: key, age, and whether the entry
// has expired.
func (r *ArtCache) CmdCacheList(ctx echo.Context) error {
	keys := r.cache.Keys()
	if len(keys) == 0 {
		return ctx.String(http.StatusOK, "cache is empty\n")
	}
	sb := strings.Builder{}
	for _, k := range keys {
		state := "fresh"
		if k.Expired {
			state = "expired"
		}
		fmt.Fprintf(&sb, "%s %s %s\n", k.Key, k.Age.Truncate(time.Millisecond), state)
	}
	return ctx.String(http.StatusOK, sb.String())
}

// DELETE /cmd/cache clears the fetch cache and the memoized manifest
func (r *ArtCache) CmdCacheClear(ctx echo.Context) error {
	stats := r.cache.Stats()
	r.cache.Clear()
	r.resolver.Manifests().Reset()
	log.Infof("cache cleared: %d entries, %d stale", stats.Entries, stats.Stale)
	return ctx.String(http.StatusOK, fmt.Sprintf("cleared %d entries\n", stats.Entries+stats.Stale))
}

// POST /cmd/preload warms the artwork metadata. A failure is logged by the cache and
// is not an error here.
func (r *ArtCache) CmdPreload(ctx echo.Context) error {
	r.cache.Preload(ctx.Request().Context())
	return ctx.NoContent(http.StatusOK)
}
