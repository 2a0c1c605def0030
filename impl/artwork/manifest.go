package artwork

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aceeric/artcache/impl/fetchcache"

	"github.com/ipfs/go-cid"
	"golang.org/x/sync/singleflight"
)

// DefaultManifestPath is where the site publishes the IPFS manifest
const DefaultManifestPath = "data/ipfs-manifest.json"

// ErrNoFallbackEntry means the manifest has no usable gateway URL for an artwork
var ErrNoFallbackEntry = errors.New("no IPFS entry")

// Entry is one artwork in the IPFS manifest, e.g.:
//
//	"espejos-del-alma": {
//	  "cid": "bafybei...",
//	  "gateway": "https://gateway.pinata.cloud/ipfs/bafybei...",
//	  "size": 183422,
//	  "format": "webp",
//	  "timestamp": "2026-01-12T10:31:07.114Z"
//	}
type Entry struct {
	Cid       string `json:"cid"`
	Gateway   string `json:"gateway"`
	Size      int64  `json:"size"`
	Format    string `json:"format"`
	Timestamp string `json:"timestamp"`
}

// ContentId parses the entry's content address
func (e Entry) ContentId() (cid.Cid, error) {
	return cid.Decode(e.Cid)
}

// Pinned parses the entry's timestamp
func (e Entry) Pinned() (time.Time, error) {
	return time.Parse(time.RFC3339, e.Timestamp)
}

// Manifest maps artwork id to its IPFS entry. A fetched manifest is never modified.
type Manifest struct {
	Artworks map[string]Entry `json:"artworks"`
}

// Lookup returns the entry for the passed id if it exists and has a gateway URL,
// otherwise an error wrapping ErrNoFallbackEntry.
func (m *Manifest) Lookup(id string) (Entry, error) {
	if m == nil {
		return Entry{}, fmt.Errorf("%w for %s", ErrNoFallbackEntry, id)
	}
	e, exists := m.Artworks[id]
	if !exists || e.Gateway == "" {
		return Entry{}, fmt.Errorf("%w for %s", ErrNoFallbackEntry, id)
	}
	return e, nil
}

// Ids returns the artwork ids in the manifest, sorted
func (m *Manifest) Ids() []string {
	ids := make([]string, 0, len(m.Artworks))
	for id := range m.Artworks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Manifests is the memoized manifest accessor. The first successful fetch is kept for
// the life of the accessor (or until Reset), concurrent first calls share one fetch, and
// a failed fetch is not memoized so the next call tries again.
type Manifests struct {
	cache    *fetchcache.Cache
	path     string
	group    singleflight.Group
	mu       sync.Mutex
	manifest *Manifest
	// gen counts resets. A fetch started before a reset is not memoized.
	gen uint64
}

// NewManifests returns an accessor for the manifest at 'path' (DefaultManifestPath if empty)
func NewManifests(cache *fetchcache.Cache, path string) *Manifests {
	if path == "" {
		path = DefaultManifestPath
	}
	return &Manifests{
		cache: cache,
		path:  path,
	}
}

// Get returns the manifest, fetching it on first use. A caller stops waiting when its
// own context ends. The shared fetch is bounded only by the cache's fetch timeout.
func (m *Manifests) Get(ctx context.Context) (*Manifest, error) {
	m.mu.Lock()
	mf, gen := m.manifest, m.gen
	m.mu.Unlock()
	if mf != nil {
		return mf, nil
	}
	fetchCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(fmt.Sprintf("%s#%d", m.path, gen), func() (interface{}, error) {
		fetched, err := fetchcache.GetJSON[Manifest](fetchCtx, m.cache, m.path, fetchcache.Options{})
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		if m.gen == gen {
			m.manifest = &fetched
		}
		m.mu.Unlock()
		return &fetched, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Manifest), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Entry gets the manifest and looks up the passed id in it
func (m *Manifests) Entry(ctx context.Context, id string) (Entry, error) {
	mf, err := m.Get(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("unable to get the IPFS manifest: %w", err)
	}
	return mf.Lookup(id)
}

// Reset forgets the memoized manifest so the next Get fetches again
func (m *Manifests) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manifest = nil
	m.gen++
}

// Path is the manifest path the accessor fetches
func (m *Manifests) Path() string {
	return m.path
}
