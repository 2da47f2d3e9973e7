package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity/config"
	cchttp "github.com/frankcohen/cloudcity/http"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve [root]",
	Short: "Start the HTTP server",
	Long: `Start the Cloud City HTTP server.

The root directory is taken from the positional argument, --root, the
CLOUDCITY_STORAGE_ROOT environment variable or the config file, in that order.

Modes:
  browse  GET / lists the root directory (default port 8088)
  device  GET / serves the upload form (default port 80)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "bind address (default: 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "HTTP server port (default: 8088 in browse mode, 80 in device mode)")
	serveCmd.Flags().String("mode", "", "server mode: browse, device (default: browse)")
	serveCmd.Flags().Int64("max-upload-size", 0, "maximum upload body in bytes, 0 for no limit")
	serveCmd.Flags().Bool("qr", false, "print the server URL as a QR code")
	serveCmd.Flags().Bool("metrics", false, "expose Prometheus metrics on /metrics")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		cfg.Storage.Root = args[0]
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mode, err := cfg.Server.ServerMode()
	if err != nil {
		return fmt.Errorf("parse server mode: %w", err)
	}

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	handlerConfig := cchttp.HandlerConfig{
		Mode:          mode,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		CORS:          cfg.CORS,
	}
	if cfg.Metrics.Enabled {
		handlerConfig.Metrics = cchttp.NewMetrics(cfg.Metrics.Namespace)
	}

	handler := cchttp.NewHandler(&handlerConfig, storage.service)

	addr := cfg.Server.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", listener.Addr().String(),
		"mode", mode,
		"root", storage.rootPath,
		"files_dir", storage.service.FilesDir(),
		"metrics", cfg.Metrics.Enabled,
	)

	if cfg.Server.QR {
		printQR(cmd.OutOrStdout(), cfg.Server.Host, listener.Addr())
	}

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
