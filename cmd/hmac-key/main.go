// Package main prints a fresh battle journal signing key.
package main

import (
	"flag"
	"os"

	"github.com/louisbranch/skirmish/internal/platform/config"
	"github.com/louisbranch/skirmish/internal/tools/hmackey"
)

func main() {
	cfg, err := hmackey.ParseConfig(flag.CommandLine, os.Args[1:])
	if err == nil {
		err = hmackey.Run(cfg, os.Stdout, nil)
	}
	if err != nil {
		config.Exitf("hmac-key: %v", err)
	}
}
