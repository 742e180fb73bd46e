// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/view_motion/internal/app"
	"github.com/relabs-tech/view_motion/internal/config"
)

func main() {
	configPath := flag.String("config", "view_motion_config.txt", "Path to configuration file")
	flag.Parse()

	log.Println("starting view-motion rotation producer")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunProducer(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
