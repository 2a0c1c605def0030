package helpers

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	_ "crypto/sha256"

	"github.com/opencontainers/go-digest"
)

// long IPFS CIDv1 (base32) and CIDv0 (base58) content addresses
var cidRe = regexp.MustCompile(`(bafy[a-z2-7]{50,}|Qm[1-9A-HJ-NP-Za-km-z]{44})`)

// ResolveURL resolves the passed 'ref' against the passed 'base' URL. If 'ref' is already
// absolute it is returned unchanged. A relative 'ref' like 'data/ipfs-manifest.json' resolves
// to e.g. 'https://naroa.online/data/ipfs-manifest.json' given a base of 'https://naroa.online/'.
// A nil base returns 'ref' unchanged so tests can pass absolute URLs everywhere.
func ResolveURL(base *url.URL, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("unable to parse url %q: %w", ref, err)
	}
	if u.IsAbs() || base == nil {
		return u.String(), nil
	}
	return base.ResolveReference(u).String(), nil
}

// ParseBase parses a site base URL and ensures it ends with a slash so that relative
// references resolve beneath it rather than replacing its last path segment.
func ParseBase(siteUrl string) (*url.URL, error) {
	if siteUrl == "" {
		return nil, nil
	}
	if !strings.HasSuffix(siteUrl, "/") {
		siteUrl += "/"
	}
	u, err := url.Parse(siteUrl)
	if err != nil {
		return nil, fmt.Errorf("unable to parse site url %q: %w", siteUrl, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("site url must be absolute: %q", siteUrl)
	}
	return u, nil
}

// DigestOf computes the sha256 digest of the passed bytes, e.g. "sha256:ab12..."
func DigestOf(data []byte) digest.Digest {
	return digest.FromBytes(data)
}

// ShortenCids shortens any IPFS content addresses in the passed string to their first
// ten characters. CIDs clutter the logs.
func ShortenCids(s string) string {
	return cidRe.ReplaceAllStringFunc(s, func(cid string) string {
		return cid[:10]
	})
}
