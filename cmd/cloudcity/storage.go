package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/frankcohen/cloudcity"
	"github.com/frankcohen/cloudcity/config"
	"github.com/frankcohen/cloudcity/filesystem"
)

// storageSet bundles the opened root with the store and service built on it.
type storageSet struct {
	rootPath string
	root     *os.Root
	store    *filesystem.Store
	service  *cloudcity.FileService
}

// openStorage opens the configured root and makes sure the files directory exists.
func openStorage(ctx context.Context, cfg *config.Config) (*storageSet, error) {
	rootPath, err := filepath.Abs(cfg.Storage.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root directory: %w", err)
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root directory %s is not a directory", rootPath)
	}

	root, err := os.OpenRoot(rootPath)
	if err != nil {
		return nil, fmt.Errorf("open root directory: %w", err)
	}

	store := filesystem.NewFileStorage(root)

	service, err := cloudcity.NewFileService(store, cloudcity.ServiceConfig{FilesDir: cfg.Storage.FilesDir})
	if err != nil {
		_ = root.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}

	if err := store.MkdirAll(ctx, service.FilesDir()); err != nil {
		_ = root.Close()
		return nil, fmt.Errorf("create files directory: %w", err)
	}

	return &storageSet{
		rootPath: rootPath,
		root:     root,
		store:    store,
		service:  service,
	}, nil
}

func (s *storageSet) Close() {
	if err := s.root.Close(); err != nil {
		slog.Warn("failed to close root directory", "err", err)
	}
}
