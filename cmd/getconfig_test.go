package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aceeric/artcache/impl/cmdline"
	"github.com/aceeric/artcache/impl/config"
)

var cfgYaml = `
---
logLevel: error
siteUrl: https://from.file
port: 8080
ttl: 60000
imageTimeout: 2000
warmConfig:
  concurrency: 16
listConfig:
  header: true
`

// setup supports unit testing by clearing the state left over from a previous parse
func setup() {
	cmdline.ClearParse()
	config.Set(config.Configuration{})
}

// Test that the command line configuration is correctly merged into config from
// a file.
func TestCmdlineOverridesConfig(t *testing.T) {
	setup()
	td, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fail()
	}
	defer os.RemoveAll(td)
	dummyFile := filepath.Join(td, "foo")
	os.WriteFile(dummyFile, []byte("rocks-1\n"), 0755)
	cfgFile := filepath.Join(td, "testcfg.yaml")
	os.WriteFile(cfgFile, []byte(cfgYaml), 0700)
	os.Args = []string{"bin/artcache", "--log-level", "info", "--config-file", cfgFile, "serve", "--port", "22",
		"--site-url", "https://from.cmdline", "--preload-artworks", dummyFile, "--fetch-timeout", "123"}

	command, err := getCfg()
	if err != nil {
		t.FailNow()
	}
	switch {
	case command != "serve":
		t.Fail()
	case config.GetLogLevel() != "info":
		t.Fail()
	case config.GetConfigFile() != cfgFile:
		t.Fail()
	case config.GetSiteUrl() != "https://from.cmdline":
		t.Fail()
	case config.GetPreloadArt() != dummyFile:
		t.Fail()
	case config.GetPort() != 22:
		t.Fail()
	case config.GetFetchTimeout() != 123*time.Millisecond:
		t.Fail()
	// from the file
	case config.GetTtl() != time.Minute:
		t.Fail()
	case config.GetImageTimeout() != 2*time.Second:
		t.Fail()
	case config.GetWarmConfig().Concurrency != 16:
		t.Fail()
	case !config.GetListConfig().Header:
		t.Fail()
	// defaulted
	case config.GetImageBase() != "images/gallery":
		t.Fail()
	}
}

// Test that without a config file the parsed command line is the configuration
func TestCmdlineOnly(t *testing.T) {
	setup()
	os.Args = []string{"bin/artcache", "manifest", "--site-url", "https://naroa.example.com", "--pattern", "rocks"}
	command, err := getCfg()
	if err != nil || command != "manifest" {
		t.FailNow()
	}
	if config.GetSiteUrl() != "https://naroa.example.com" || config.GetListConfig().Expr != "rocks" {
		t.Fail()
	}
}
