// Package preload warms the cache: the artwork metadata, the IPFS manifest, and the
// images for a list of artwork ids.
package preload

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aceeric/artcache/impl/artwork"
	"github.com/aceeric/artcache/impl/fetchcache"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of images loaded at once if not specified
const DefaultConcurrency = 4

var validId = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Result tallies a warm-up
type Result struct {
	Total   int64
	Primary int64
	Gateway int64
	Failed  int64
}

// Load reads artwork ids from the passed file and warms the cache with them. The only
// errors returned are from reading the file. See Warm.
func Load(ctx context.Context, artworkFile string, cache *fetchcache.Cache, resolver *artwork.Resolver, format string, concurrency int) (Result, error) {
	ids, err := LoadIds(artworkFile)
	if err != nil {
		return Result{}, err
	}
	log.Infof("warming %d artworks from file: %s", len(ids), artworkFile)
	return Warm(ctx, cache, resolver, ids, format, concurrency), nil
}

// LoadIds reads a file with one artwork id per line. Blank lines and lines starting
// with '#' are skipped.
func LoadIds(artworkFile string) ([]string, error) {
	f, err := os.Open(artworkFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ids := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		if !validId.MatchString(line) {
			return nil, fmt.Errorf("unable to parse artwork id: %q", line)
		}
		ids = append(ids, line)
	}
	return ids, scanner.Err()
}

// Warm preloads the artwork metadata and then loads each image for the passed ids
// through the resolver, 'concurrency' at a time. Warming is best effort: failures
// are logged and counted in the result, never returned.
func Warm(ctx context.Context, cache *fetchcache.Cache, resolver *artwork.Resolver, ids []string, format string, concurrency int) Result {
	start := time.Now()
	cache.Preload(ctx)
	if len(ids) == 0 {
		return Result{}
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	var primary, gateway, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		g.Go(func() error {
			source, err := warmOne(gctx, resolver, id, format)
			switch {
			case err != nil:
				failed.Add(1)
			case source == artwork.SourcePrimary:
				primary.Add(1)
			default:
				gateway.Add(1)
			}
			return nil
		})
	}
	g.Wait()
	result := Result{
		Total:   int64(len(ids)),
		Primary: primary.Load(),
		Gateway: gateway.Load(),
		Failed:  failed.Load(),
	}
	log.Infof("warmed %d artworks in %s: %d primary, %d gateway, %d failed", result.Total,
		time.Since(start), result.Primary, result.Gateway, result.Failed)
	return result
}

// warmOne loads one artwork image and discards the bytes. The point is to exercise the
// fallback chain so that the manifest is cached and broken artworks show up in the log.
func warmOne(ctx context.Context, resolver *artwork.Resolver, id string, format string) (artwork.Source, error) {
	img, err := resolver.Load(ctx, id, format)
	if err != nil {
		log.Errorf("unable to warm artwork %q: %s", id, err)
		return "", err
	}
	log.Debugf("warmed artwork %q from %s (%d bytes, %s)", id, img.Source, len(img.Data), img.Digest)
	return img.Source, nil
}
