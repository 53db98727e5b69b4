package main

import (
	"context"
	"flag"
	"log"

	"greenballot/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start HTTP server.
func main() {
	configPath := flag.String("config", "", "optional path to a config file")
	flag.Parse()

	log.Println("greenballot api starting")
	app, err := bootstrap.BuildAPI(*configPath)
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("greenballot api stopped with error: %v", err)
	}
}
