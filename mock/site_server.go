package mock

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"
)

const (
	RocksCid = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
	AmorCid  = "QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o"
	LostCid  = "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy"
)

// Webp is a minimal image that content sniffing recognizes as image/webp
var Webp = []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00\x30\x01\x00\x9d\x01\x2a\x01\x00\x01\x00\x02\x00")

// Metadata is the artwork metadata served at /data/artworks-metadata.json
const Metadata = `{"artworks":[{"id":"rocks-1","title":"Rocks"},{"id":"amor-2","title":"Amor"},{"id":"solo-3","title":"Solo"}]}`

// the manifest gateway URLs are filled in with the server address at request time
const manifestTemplate = `{"artworks":{` +
	`"rocks-1":{"cid":"` + RocksCid + `","gateway":"%[1]s/ipfs/` + RocksCid + `","size":26,"format":"webp","timestamp":"2026-01-12T10:31:07.114Z"},` +
	`"amor-2":{"cid":"` + AmorCid + `","gateway":"%[1]s/ipfs/` + AmorCid + `","size":26,"format":"webp","timestamp":"2026-01-12T10:31:07.114Z"},` +
	`"lost-4":{"cid":"` + LostCid + `","gateway":"%[1]s/ipfs/` + LostCid + `","size":26,"format":"webp","timestamp":"2026-01-12T10:31:07.114Z"},` +
	`"nogw-5":{"cid":"` + RocksCid + `","size":26,"format":"webp"}}}`

// MockParams supports different configurations for the mock site
type MockParams struct {
	// DelayMs supports simulating slow links
	DelayMs int
	// Down, if non-nil, is called with each request path. If it returns true the
	// site answers 503 for that path.
	Down func(path string) bool
}

// primary has the artworks on the primary network
var primary = map[string]bool{
	"rocks-1": true,
	"solo-3":  true,
}

// gateway has the content on the gateway
var gateway = map[string]bool{
	RocksCid: true,
	AmorCid:  true,
}

// Server simply calls ServerWithCallback with no callback function
func Server(params MockParams) (*httptest.Server, string) {
	return ServerWithCallback(params, nil)
}

// ServerWithCallback runs the mock site. It returns a ref to the server, and the server
// url (with the scheme). If a callback function is passed, it is called with the path of
// each request.
func ServerWithCallback(params MockParams, callback *func(string)) (*httptest.Server, string) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callback != nil {
			(*callback)(r.URL.Path)
		}
		if params.DelayMs != 0 {
			time.Sleep(time.Duration(params.DelayMs) * time.Millisecond)
		}
		if params.Down != nil && params.Down(r.URL.Path) {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		p := r.URL.Path
		switch {
		case p == "/data/artworks-metadata.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(Metadata))
		case p == "/data/ipfs-manifest.json":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, manifestTemplate, "http://"+r.Host)
		case p == "/data/broken.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"artworks":`))
		case strings.HasPrefix(p, "/images/gallery/"):
			name := strings.TrimPrefix(p, "/images/gallery/")
			id, _, _ := strings.Cut(name, ".")
			serveImage(w, primary[id])
		case strings.HasPrefix(p, "/ipfs/"):
			serveImage(w, gateway[strings.TrimPrefix(p, "/ipfs/")])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return server, server.URL
}

func serveImage(w http.ResponseWriter, found bool) {
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	w.Write(Webp)
}
