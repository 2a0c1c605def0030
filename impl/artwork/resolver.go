package artwork

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aceeric/artcache/impl/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultFormat is the image encoding used when none is requested
	DefaultFormat = "webp"
	// DefaultImageBase is where the primary delivery network serves gallery images
	DefaultImageBase = "images/gallery"
)

// ErrBothSourcesFailed is matched by the error returned when the primary and the gateway
// load both fail
var ErrBothSourcesFailed = errors.New("both primary and IPFS gateway failed")

// LoadError is the total failure of a Load: both tiers were tried and both failed
type LoadError struct {
	ArtworkId string
	Primary   error
	Gateway   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("both primary and IPFS gateway failed for %s: primary: %s, gateway: %s", e.ArtworkId, e.Primary, e.Gateway)
}

func (e *LoadError) Is(target error) bool {
	return target == ErrBothSourcesFailed
}

func (e *LoadError) Unwrap() []error {
	return []error{e.Primary, e.Gateway}
}

// Resolver loads artwork images from the primary delivery network, falling back to the
// IPFS gateway URL in the manifest.
type Resolver struct {
	loader    ImageLoader
	manifests *Manifests
	imageBase string
	timeout   time.Duration
	log       log.FieldLogger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithImageBase sets the primary image base path or URL (DefaultImageBase if not set)
func WithImageBase(base string) ResolverOption {
	return func(r *Resolver) {
		if base != "" {
			r.imageBase = strings.TrimSuffix(base, "/")
		}
	}
}

// WithImageTimeout bounds each load attempt. Zero means no bound other than the caller's context.
func WithImageTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.timeout = timeout
	}
}

// WithResolverLogger sets the logger. The default is the logrus standard logger.
func WithResolverLogger(l log.FieldLogger) ResolverOption {
	return func(r *Resolver) {
		r.log = l
	}
}

// NewResolver returns a Resolver that loads images with 'loader' and looks up gateway
// URLs with 'manifests'
func NewResolver(loader ImageLoader, manifests *Manifests, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		loader:    loader,
		manifests: manifests,
		imageBase: DefaultImageBase,
		log:       log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Url returns the primary delivery URL for the artwork. The URL is optimistic: nothing
// verifies the image is actually there. Use Load to get the gateway fallback.
func (r *Resolver) Url(artworkId string, format string) string {
	if format == "" {
		format = DefaultFormat
	}
	return fmt.Sprintf("%s/%s.%s", r.imageBase, artworkId, format)
}

// Load loads the artwork image. Exactly one attempt is made against the primary URL. If
// that fails, the manifest is consulted and exactly one attempt is made against the
// gateway URL. An artwork missing from the manifest fails with ErrNoFallbackEntry without
// a second image request. If both attempts fail the error is a *LoadError.
func (r *Resolver) Load(ctx context.Context, artworkId string, format string) (*Image, error) {
	fields := log.Fields{"artwork": artworkId}
	primaryUrl := r.Url(artworkId, format)
	img, primaryErr := r.attempt(ctx, primaryUrl)
	if primaryErr == nil {
		return r.loaded(img, artworkId, SourcePrimary), nil
	}
	r.log.WithFields(fields).Warnf("primary delivery failed, trying IPFS fallback: %s", primaryErr)

	entry, err := r.manifests.Entry(ctx, artworkId)
	if err != nil {
		metrics.IncImageLoadFailures()
		r.log.WithFields(fields).Errorf("IPFS fallback failed: %s", err)
		return nil, err
	}
	if c, err := entry.ContentId(); err != nil {
		r.log.WithFields(fields).Warnf("manifest entry has an invalid cid %q: %s", entry.Cid, err)
	} else {
		fields["cid"] = c.String()
	}
	r.log.WithFields(fields).Info("serving from IPFS gateway")
	img, gatewayErr := r.attempt(ctx, entry.Gateway)
	if gatewayErr != nil {
		metrics.IncImageLoadFailures()
		return nil, &LoadError{ArtworkId: artworkId, Primary: primaryErr, Gateway: gatewayErr}
	}
	return r.loaded(img, artworkId, SourceGateway), nil
}

// attempt makes one load attempt bounded by the image timeout
func (r *Resolver) attempt(ctx context.Context, url string) (*Image, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.loader.LoadImage(ctx, url)
}

func (r *Resolver) loaded(img *Image, artworkId string, source Source) *Image {
	metrics.IncImageLoadsBySource(string(source))
	img.ArtworkId = artworkId
	img.Source = source
	return img
}

// Manifests returns the resolver's manifest accessor
func (r *Resolver) Manifests() *Manifests {
	return r.manifests
}
