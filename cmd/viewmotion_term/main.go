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
	logPath := flag.String("log", "viewmotion_term.log", "Log file; the terminal is used by the scene")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	log.Println("starting view-motion terminal host")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunTerm(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
