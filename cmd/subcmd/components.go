package subcmd

import (
	"fmt"
	"net/http"

	"github.com/aceeric/artcache/impl/artwork"
	"github.com/aceeric/artcache/impl/config"
	"github.com/aceeric/artcache/impl/fetchcache"

	log "github.com/sirupsen/logrus"
)

// components are the fetch cache and the image resolver, built from the configuration
// and shared by the sub-commands
type components struct {
	cache    *fetchcache.Cache
	resolver *artwork.Resolver
}

func newComponents() (*components, error) {
	client := &http.Client{}
	fetcher, err := fetchcache.NewHTTPFetcher(config.GetSiteUrl(), client)
	if err != nil {
		return nil, fmt.Errorf("invalid site url %q: %w", config.GetSiteUrl(), err)
	}
	loader, err := artwork.NewHTTPImageLoader(config.GetSiteUrl(), client)
	if err != nil {
		return nil, fmt.Errorf("invalid site url %q: %w", config.GetSiteUrl(), err)
	}
	cache := fetchcache.New(fetcher,
		fetchcache.WithTTL(config.GetTtl()),
		fetchcache.WithTimeout(config.GetFetchTimeout()),
		fetchcache.WithArtworksPath(config.GetMetadataPath()),
		fetchcache.WithLogger(log.WithField("component", "fetchcache")),
	)
	resolver := artwork.NewResolver(loader, artwork.NewManifests(cache, config.GetManifestPath()),
		artwork.WithImageBase(config.GetImageBase()),
		artwork.WithImageTimeout(config.GetImageTimeout()),
		artwork.WithResolverLogger(log.WithField("component", "resolver")),
	)
	return &components{cache: cache, resolver: resolver}, nil
}
