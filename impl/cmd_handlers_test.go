package impl

import (
	"net/http"
	"strings"
	"testing"
)

// Test listing and clearing the cache
func TestCmdCache(t *testing.T) {
	ts := newTestServer(t)
	defer ts.close()
	rec := ts.do(http.MethodGet, "/cmd/cache")
	if rec.Code != http.StatusOK || rec.Body.String() != "cache is empty\n" {
		t.FailNow()
	}
	ts.do(http.MethodGet, "/artworks")
	ts.do(http.MethodGet, "/images/amor-2")
	rec = ts.do(http.MethodGet, "/cmd/cache")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.FailNow()
	}
	if !strings.HasPrefix(lines[0], "data/artworks-metadata.json ") || !strings.HasSuffix(lines[0], " fresh") {
		t.Fail()
	}
	if !strings.HasPrefix(lines[1], "data/ipfs-manifest.json ") {
		t.Fail()
	}
	rec = ts.do(http.MethodDelete, "/cmd/cache")
	if rec.Code != http.StatusOK || rec.Body.String() != "cleared 2 entries\n" {
		t.Fail()
	}
	// both the cache and the memoized manifest go upstream again
	ts.do(http.MethodGet, "/artworks")
	ts.do(http.MethodGet, "/images/amor-2")
	if ts.hitsFor("/data/artworks-metadata.json") != 2 || ts.hitsFor("/data/ipfs-manifest.json") != 2 {
		t.Fail()
	}
}

// Test that preload warms the cache so the next get does not go upstream
func TestCmdPreload(t *testing.T) {
	ts := newTestServer(t)
	defer ts.close()
	if rec := ts.do(http.MethodPost, "/cmd/preload"); rec.Code != http.StatusOK {
		t.FailNow()
	}
	ts.do(http.MethodGet, "/artworks")
	if ts.hitsFor("/data/artworks-metadata.json") != 1 {
		t.Fail()
	}
}

// Test that a failed preload is not an error
func TestCmdPreloadOutage(t *testing.T) {
	ts := newTestServer(t)
	defer ts.close()
	ts.down.Store(true)
	if rec := ts.do(http.MethodPost, "/cmd/preload"); rec.Code != http.StatusOK {
		t.Fail()
	}
}

// Test that stop signals the shutdown channel, and a second stop does not block
func TestCmdStop(t *testing.T) {
	ts := newTestServer(t)
	defer ts.close()
	ts.do(http.MethodGet, "/cmd/stop")
	ts.do(http.MethodGet, "/cmd/stop")
	select {
	case <-ts.shutdownCh:
	default:
		t.Fail()
	}
}
