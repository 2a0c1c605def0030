// Package impl implements the artcache REST API. The methods in this file satisfy the
// api.ServerInterface interface and each simply calls a handler in 'handlers.go' or
// 'cmd_handlers.go'.
package impl

import (
	"github.com/aceeric/artcache/api/models"
	"github.com/aceeric/artcache/impl/artwork"
	"github.com/aceeric/artcache/impl/fetchcache"

	"github.com/labstack/echo/v4"
)

type ArtCache struct {
	cache      *fetchcache.Cache
	resolver   *artwork.Resolver
	format     string
	shutdownCh chan bool
}

// NewArtCache creates and returns an ArtCache struct which implements the api.ServerInterface
// interface generated from the api/openapi.yaml document. The passed format is used for image
// requests that don't specify one. A send on the passed channel stops the server.
func NewArtCache(cache *fetchcache.Cache, resolver *artwork.Resolver, format string, shutdownCh chan bool) *ArtCache {
	if format == "" {
		format = artwork.DefaultFormat
	}
	return &ArtCache{
		cache:      cache,
		resolver:   resolver,
		format:     format,
		shutdownCh: shutdownCh,
	}
}

// GET /data/{file}
func (r *ArtCache) GetData(ctx echo.Context, file string, params models.GetDataParams) error {
	return r.handleGetData(ctx, "data/"+file, params.Refresh != nil && *params.Refresh)
}

// GET /artworks
func (r *ArtCache) GetArtworks(ctx echo.Context) error {
	return r.handleGetArtworks(ctx)
}

// GET /images/{id}
func (r *ArtCache) GetImage(ctx echo.Context, id string, params models.GetImageParams) error {
	return r.handleGetImage(ctx, id, r.formatOf(params.Format))
}

// GET /images/{id}/url
func (r *ArtCache) GetImageUrl(ctx echo.Context, id string, params models.GetImageUrlParams) error {
	return r.handleGetImageUrl(ctx, id, r.formatOf(params.Format))
}

// GET /manifest/{id}
func (r *ArtCache) GetManifestEntry(ctx echo.Context, id string) error {
	return r.handleGetManifestEntry(ctx, id)
}

func (r *ArtCache) formatOf(format *string) string {
	if format != nil && *format != "" {
		return *format
	}
	return r.format
}
