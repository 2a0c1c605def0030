package cmdline

import (
	"os"
	"path/filepath"
	"testing"
)

// Test that the parser detects when defaults are overridden on the command line for the serve command
func TestParseServe(t *testing.T) {
	ClearParse()
	td, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fail()
	}
	defer os.RemoveAll(td)
	afile := filepath.Join(td, "foo")
	os.WriteFile(afile, []byte("foo"), 0755)

	os.Args = []string{"bin/artcache", "--log-level", "info", "--config-file", afile, "serve", "--port", "22",
		"--site-url", "https://naroa.example.com", "--ttl", "1000", "--fetch-timeout", "200", "--image-timeout", "300",
		"--preload-artworks", afile, "--watch-config"}
	fromCmdline, cfg, err := Parse()
	if err != nil {
		t.FailNow()
	}
	if fromCmdline.Command != "serve" {
		t.Fail()
	}
	switch {
	case !fromCmdline.LogLevel:
		t.Fail()
	case !fromCmdline.ConfigFile:
		t.Fail()
	case !fromCmdline.Port:
		t.Fail()
	case !fromCmdline.SiteUrl:
		t.Fail()
	case !fromCmdline.Ttl:
		t.Fail()
	case !fromCmdline.FetchTimeout:
		t.Fail()
	case !fromCmdline.ImageTimeout:
		t.Fail()
	case !fromCmdline.PreloadArt:
		t.Fail()
	case !fromCmdline.WatchConfig:
		t.Fail()
	case fromCmdline.ImageBase || fromCmdline.Format:
		t.Fail()
	}
	if cfg.Port != 22 || cfg.Ttl != 1000 || cfg.SiteUrl != "https://naroa.example.com" || cfg.PreloadArt != afile {
		t.Fail()
	}
	// defaults are populated even though not given
	if cfg.ImageBase != "images/gallery" || cfg.Format != "webp" || cfg.MetadataPath != "data/artworks-metadata.json" {
		t.Fail()
	}
}

// Test the warm command
func TestParseWarm(t *testing.T) {
	ClearParse()
	td, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fail()
	}
	defer os.RemoveAll(td)
	afile := filepath.Join(td, "ids")
	os.WriteFile(afile, []byte("rocks-1\n"), 0755)

	os.Args = []string{"bin/artcache", "warm", "--artworks", afile, "--concurrency", "8", "--format", "jpg"}
	fromCmdline, cfg, err := Parse()
	if err != nil || fromCmdline.Command != "warm" || !fromCmdline.WarmConfig || !fromCmdline.Format {
		t.FailNow()
	}
	if cfg.WarmConfig.ArtworkFile != afile || cfg.WarmConfig.Concurrency != 8 || cfg.Format != "jpg" {
		t.Fail()
	}
}

// Test that a missing artwork file is rejected by the validator
func TestParseWarmNoFile(t *testing.T) {
	ClearParse()
	os.Args = []string{"bin/artcache", "warm", "--artworks", "/this/does/not/exist"}
	if _, _, err := Parse(); err == nil {
		t.Fail()
	}
}

// Test the manifest command
func TestParseManifest(t *testing.T) {
	ClearParse()
	os.Args = []string{"bin/artcache", "manifest", "--header", "--pattern", "rocks,amor"}
	fromCmdline, cfg, err := Parse()
	if err != nil || fromCmdline.Command != "manifest" || !fromCmdline.ListConfig {
		t.FailNow()
	}
	if !cfg.ListConfig.Header || cfg.ListConfig.Expr != "rocks,amor" {
		t.Fail()
	}
}
