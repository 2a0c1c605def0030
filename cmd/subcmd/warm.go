package subcmd

import (
	"context"
	"fmt"

	"github.com/aceeric/artcache/impl/config"
	"github.com/aceeric/artcache/impl/preload"
)

// Warm loads the artwork metadata and each artwork in the configured artwork file through
// the fallback chain, then prints a summary. It fails if any artwork could not be loaded
// from either source, which makes it usable as a check of the site and its IPFS pins.
func Warm() error {
	c, err := newComponents()
	if err != nil {
		return err
	}
	warmCfg := config.GetWarmConfig()
	ids := []string{}
	if warmCfg.ArtworkFile != "" {
		if ids, err = preload.LoadIds(warmCfg.ArtworkFile); err != nil {
			return fmt.Errorf("error reading the artwork file: %s", err)
		}
	}
	ctx := context.Background()
	result := preload.Warm(ctx, c.cache, c.resolver, ids, config.GetFormat(), int(warmCfg.Concurrency))
	if _, err := c.cache.GetArtworks(ctx); err != nil {
		return fmt.Errorf("unable to get the artwork metadata: %s", err)
	}
	fmt.Printf("warmed %d artworks: %d primary, %d gateway, %d failed\n", result.Total, result.Primary, result.Gateway, result.Failed)
	if result.Failed != 0 {
		return fmt.Errorf("%d of %d artworks could not be loaded", result.Failed, result.Total)
	}
	return nil
}
