package preload

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aceeric/artcache/impl/artwork"
	"github.com/aceeric/artcache/impl/fetchcache"
	"github.com/aceeric/artcache/mock"

	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetOutput(io.Discard)
}

var idFile = `
# artworks to warm
rocks-1
amor-2

lost-4
nogw-5
`

func writeIds(t *testing.T, content string) string {
	td, err := os.MkdirTemp("", "")
	if err != nil {
		t.FailNow()
	}
	t.Cleanup(func() { os.RemoveAll(td) })
	f := filepath.Join(td, "ids")
	if os.WriteFile(f, []byte(content), 0644) != nil {
		t.FailNow()
	}
	return f
}

// Test reading the id file
func TestLoadIds(t *testing.T) {
	ids, err := LoadIds(writeIds(t, idFile))
	if err != nil || len(ids) != 4 || ids[0] != "rocks-1" || ids[3] != "nogw-5" {
		t.Fail()
	}
	if _, err := LoadIds(writeIds(t, "rocks-1\nnot/an/id\n")); err == nil {
		t.Fail()
	}
	if _, err := LoadIds("/this/does/not/exist"); err == nil {
		t.Fail()
	}
}

// Warms from the mock site and checks the tallies and that the metadata and the
// manifest were each fetched once.
func TestLoad(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}
	callback := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		hits[path]++
	}
	server, url := mock.ServerWithCallback(mock.MockParams{}, &callback)
	defer server.Close()

	fetcher, _ := fetchcache.NewHTTPFetcher(url, nil)
	loader, _ := artwork.NewHTTPImageLoader(url, nil)
	cache := fetchcache.New(fetcher)
	resolver := artwork.NewResolver(loader, artwork.NewManifests(cache, artwork.DefaultManifestPath))

	result, err := Load(context.Background(), writeIds(t, idFile), cache, resolver, "webp", 2)
	if err != nil {
		t.FailNow()
	}
	if result != (Result{Total: 4, Primary: 1, Gateway: 1, Failed: 2}) {
		t.Errorf("unexpected result: %+v", result)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits["/data/artworks-metadata.json"] != 1 || hits["/data/ipfs-manifest.json"] != 1 {
		t.Fail()
	}
	if cache.Stats().Entries != 2 {
		t.Fail()
	}
}

// Test that warming with no ids still preloads the metadata
func TestWarmNoIds(t *testing.T) {
	server, url := mock.Server(mock.MockParams{})
	defer server.Close()
	fetcher, _ := fetchcache.NewHTTPFetcher(url, nil)
	cache := fetchcache.New(fetcher)
	if result := Warm(context.Background(), cache, nil, nil, "", 0); result != (Result{}) {
		t.Fail()
	}
	if cache.Stats().Entries != 1 {
		t.Fail()
	}
}
