package subcmd

import (
	"testing"

	"github.com/aceeric/artcache/impl/config"
	"github.com/aceeric/artcache/mock"
)

// Test listing the manifest with and without patterns
func TestListManifest(t *testing.T) {
	server, url := mock.Server(mock.MockParams{})
	defer server.Close()
	testCases := []struct {
		expr   string
		expErr bool
	}{
		{expr: "", expErr: false},
		{expr: "rocks,amor", expErr: false},
		{expr: "[", expErr: true},
	}
	for _, tc := range testCases {
		config.Set(config.Configuration{
			SiteUrl:    url,
			ListConfig: config.ListConfig{Header: true, Expr: tc.expr},
		})
		if err := ListManifest(); (err != nil) != tc.expErr {
			t.Errorf("expr %q: expected error %t, got %v", tc.expr, tc.expErr, err)
		}
	}
}

// Test the pattern matching
func TestMatches(t *testing.T) {
	srchs, err := compile("^rocks,amor")
	if err != nil {
		t.FailNow()
	}
	if !matches(srchs, "rocks-1") || !matches(srchs, "amor-2") || matches(srchs, "solo-rocks") {
		t.Fail()
	}
	if !matches(nil, "anything") {
		t.Fail()
	}
}

// Test that an unreachable site is an error
func TestListManifestSiteDown(t *testing.T) {
	server, url := mock.Server(mock.MockParams{Down: func(string) bool { return true }})
	defer server.Close()
	config.Set(config.Configuration{SiteUrl: url})
	if ListManifest() == nil {
		t.Fail()
	}
}
