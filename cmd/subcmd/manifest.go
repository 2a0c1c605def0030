package subcmd

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aceeric/artcache/impl/config"
)

// ListManifest lists the IPFS manifest to the console, one artwork per line. If the list
// configuration has an expression, only artworks with an id matching one of its comma-separated
// regular expressions are listed.
func ListManifest() error {
	c, err := newComponents()
	if err != nil {
		return err
	}
	listCfg := config.GetListConfig()
	srchs, err := compile(listCfg.Expr)
	if err != nil {
		return err
	}
	manifest, err := c.resolver.Manifests().Get(context.Background())
	if err != nil {
		return fmt.Errorf("error listing the manifest: %s", err)
	}
	if listCfg.Header {
		fmt.Println("ID CID GATEWAY SIZE FORMAT PINNED")
	}
	for _, id := range manifest.Ids() {
		if !matches(srchs, id) {
			continue
		}
		entry := manifest.Artworks[id]
		gateway := entry.Gateway
		if gateway == "" {
			gateway = "-"
		}
		fmt.Printf("%s %s %s %d %s %s\n", id, entry.Cid, gateway, entry.Size, entry.Format, entry.Timestamp)
	}
	return nil
}

// compile compiles the comma-separated regular expressions in 'expr'
func compile(expr string) ([]*regexp.Regexp, error) {
	srchs := []*regexp.Regexp{}
	if expr == "" {
		return srchs, nil
	}
	for _, ref := range strings.Split(expr, ",") {
		if exp, err := regexp.Compile(ref); err == nil {
			srchs = append(srchs, exp)
		} else {
			return nil, fmt.Errorf("regex did not compile: %q", ref)
		}
	}
	return srchs, nil
}

// matches returns true if there are no expressions or if any expression matches
func matches(srchs []*regexp.Regexp, id string) bool {
	if len(srchs) == 0 {
		return true
	}
	for _, srch := range srchs {
		if srch.MatchString(id) {
			return true
		}
	}
	return false
}
