package config_test

import (
	"context"
	"fmt"
	"log"

	"github.com/frankcohen/cloudcity/config"
)

func ExampleLoad() {
	// Load with defaults only (no config file)
	cfg, err := config.Load(nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Addr: %s, Mode: %s\n", cfg.Server.Addr(), cfg.Server.Mode)
	// Output: Addr: 0.0.0.0:8088, Mode: browse
}

func ExampleWithContext() {
	cfg, _ := config.Load(nil, nil)

	// Store config in context
	ctx := config.WithContext(context.Background(), cfg)

	// Retrieve later (e.g., in a subcommand)
	retrieved, err := config.FromContext(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Files dir: %s\n", retrieved.Storage.FilesDir)
	// Output: Files dir: files
}
