package main

import (
	"fmt"
	"os"

	"github.com/aceeric/artcache/cmd/subcmd"
	"github.com/aceeric/artcache/impl/config"
	"github.com/aceeric/artcache/impl/globals"
)

// set by the build
var (
	buildVer = "dev"
	buildDtm = "unknown"
)

func main() {
	os.Exit(realMain())
}

// realMain runs the command on the command line and returns the process exit code
func realMain() int {
	command, err := getCfg()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	globals.ConfigureLogging(config.GetLogLevel(), config.GetLogFile())
	switch command {
	case "serve":
		err = subcmd.Serve(buildVer, buildDtm)
	case "warm":
		err = subcmd.Warm()
	case "manifest":
		err = subcmd.ListManifest()
	case "version":
		fmt.Printf("artcache version: %s build date: %s\n", buildVer, buildDtm)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
