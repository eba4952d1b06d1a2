// Package main runs scripted battles and replays stored ones.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	skirmishcmd "github.com/louisbranch/skirmish/internal/cmd/skirmish"
	"github.com/louisbranch/skirmish/internal/platform/config"
)

func main() {
	log.SetPrefix("[SKIRMISH] ")
	cfg, err := skirmishcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := skirmishcmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("skirmish: %v", err)
	}
}
