package impl

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aceeric/artcache/api/models"
	"github.com/aceeric/artcache/impl/artwork"
	"github.com/aceeric/artcache/impl/fetchcache"
	"github.com/aceeric/artcache/impl/metrics"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// GET /data/{file}. The document comes from the cache unless it is missing, expired, or
// the caller forces a refresh. If the upstream fails the last known good copy is served
// and only if there is none is the request failed.
func (r *ArtCache) handleGetData(ctx echo.Context, key string, refresh bool) error {
	metrics.IncApiEndpointHits()
	doc, err := r.cache.Get(ctx.Request().Context(), key, fetchcache.Options{ForceRefresh: refresh})
	if err != nil {
		return upstreamFailed(ctx, key, err)
	}
	return ctx.JSONBlob(http.StatusOK, doc)
}

// GET /artworks
func (r *ArtCache) handleGetArtworks(ctx echo.Context) error {
	metrics.IncApiEndpointHits()
	doc, err := r.cache.GetArtworks(ctx.Request().Context())
	if err != nil {
		return upstreamFailed(ctx, "artworks", err)
	}
	return ctx.JSONBlob(http.StatusOK, doc)
}

// GET /images/{id}. The image comes from the primary network or, failing that, the IPFS
// gateway. The source is reported in the X-Artwork-Source header.
func (r *ArtCache) handleGetImage(ctx echo.Context, id string, format string) error {
	metrics.IncApiEndpointHits()
	img, err := r.resolver.Load(ctx.Request().Context(), id, format)
	switch {
	case errors.Is(err, artwork.ErrNoFallbackEntry):
		log.Infof("artwork %q is not on the primary network and has no IPFS fallback", id)
		metrics.IncApiErrorResults()
		return ctx.String(http.StatusNotFound, fmt.Sprintf("artwork not found: %s\n", id))
	case err != nil:
		log.Errorf("error loading artwork %q: %s", id, err)
		metrics.IncApiErrorResults()
		return ctx.String(http.StatusBadGateway, fmt.Sprintf("unable to load artwork: %s\n", id))
	}
	etag := `"` + img.Digest.String() + `"`
	ctx.Response().Header().Set("X-Artwork-Source", string(img.Source))
	ctx.Response().Header().Set("Etag", etag)
	ctx.Response().Header().Set("Cache-Control", "public, max-age=3600")
	if ctx.Request().Header.Get("If-None-Match") == etag {
		return ctx.NoContent(http.StatusNotModified)
	}
	return ctx.Blob(http.StatusOK, img.ContentType, img.Data)
}

// GET /images/{id}/url. The URL is not verified.
func (r *ArtCache) handleGetImageUrl(ctx echo.Context, id string, format string) error {
	metrics.IncApiEndpointHits()
	return ctx.JSON(http.StatusOK, models.ImageUrl{Url: r.resolver.Url(id, format)})
}

// GET /manifest/{id}. An entry without a gateway URL is still returned.
func (r *ArtCache) handleGetManifestEntry(ctx echo.Context, id string) error {
	metrics.IncApiEndpointHits()
	manifest, err := r.resolver.Manifests().Get(ctx.Request().Context())
	if err != nil {
		return upstreamFailed(ctx, "manifest", err)
	}
	entry, exists := manifest.Artworks[id]
	if !exists {
		metrics.IncApiErrorResults()
		return ctx.String(http.StatusNotFound, fmt.Sprintf("no manifest entry: %s\n", id))
	}
	return ctx.JSON(http.StatusOK, entry)
}

// upstreamFailed is the response when a document could not be fetched and nothing was
// cached to fall back on
func upstreamFailed(ctx echo.Context, what string, err error) error {
	log.Errorf("error getting %s: %s", what, err)
	metrics.IncApiErrorResults()
	var statusErr *fetchcache.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return ctx.String(http.StatusNotFound, fmt.Sprintf("not found: %s\n", what))
	}
	return ctx.String(http.StatusBadGateway, fmt.Sprintf("unable to get %s\n", what))
}
