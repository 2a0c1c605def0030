package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aceeric/artcache/mock"
)

// Test the top-level artcache commands that function as CLIs (they perform
// an action and then immediately exit to the console.)
func TestTopLvlCLIs(t *testing.T) {
	server, url := mock.Server(mock.MockParams{})
	defer server.Close()
	td, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fail()
	}
	defer os.RemoveAll(td)
	artFile := filepath.Join(td, "artworks")
	os.WriteFile(artFile, []byte("rocks-1\namor-2\n"), 0777)
	artFileBad := filepath.Join(td, "artworks-bad")
	os.WriteFile(artFileBad, []byte("nogw-5\n"), 0777)

	testCases := []struct {
		name      string
		args      []string
		expResult int
	}{
		{name: "No command", args: []string{"bin/artcache"}, expResult: 0},
		{name: "Version", args: []string{"bin/artcache", "version"}, expResult: 0},
		{name: "Warm", args: []string{"bin/artcache", "warm", "--site-url", url, "--artworks", artFile}, expResult: 0},
		{name: "Manifest", args: []string{"bin/artcache", "manifest", "--site-url", url, "--header"}, expResult: 0},
		{name: "Warm - artwork with no fallback", args: []string{"bin/artcache", "warm", "--site-url", url, "--artworks", artFileBad}, expResult: 1},
		{name: "Manifest - regex does not compile", args: []string{"bin/artcache", "manifest", "--site-url", url, "--pattern", "["}, expResult: 1},
		{name: "Invalid log level", args: []string{"bin/artcache", "--log-level", "loud", "version"}, expResult: 1},
	}
	for _, testCase := range testCases {
		setup()
		os.Args = testCase.args
		result := realMain()
		if result != testCase.expResult {
			t.Errorf("artcache top-level test case %s failed", testCase.name)
		}
	}
}
