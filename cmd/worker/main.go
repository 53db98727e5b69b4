package main

import (
	"context"
	"flag"
	"log"

	"greenballot/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Run the audit relay loop until the context is cancelled.
func main() {
	configPath := flag.String("config", "", "optional path to a config file")
	flag.Parse()

	log.Println("greenballot worker starting")
	app, err := bootstrap.BuildWorker(*configPath)
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("greenballot worker stopped with error: %v", err)
	}
}
