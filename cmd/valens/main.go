package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ranveer112/valens/internal/config"
	"github.com/Ranveer112/valens/internal/guide"
	"github.com/Ranveer112/valens/internal/ingest"
	"github.com/Ranveer112/valens/internal/instruments"
	"github.com/Ranveer112/valens/internal/mcp"
	"github.com/Ranveer112/valens/internal/server"
	"github.com/Ranveer112/valens/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Valens starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN
	if err := storage.RunMigrations(dsn); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Create guide engine and instrument panel
	player := instruments.NewClockPlayer(log)
	settings := guide.Settings{
		BeepVolume:         cfg.Guide.BeepVolume,
		AutomaticMetronome: cfg.Guide.AutomaticMetronome,
	}
	engine := guide.NewEngine(db, db, guide.LogNotifier{Log: log}, player, settings, log)
	defer engine.Teardown()

	panel := guide.NewPanel(player, cfg.Guide.BeepVolume, log)
	defer panel.Teardown()

	// Resume an interrupted guide, if one was persisted
	if rec, err := db.OngoingSession(ctx); err != nil {
		log.Warn("failed to read ongoing session", "error", err)
	} else if rec != nil {
		if resumed, err := engine.Resume(ctx, rec.SessionID); err != nil {
			log.Warn("failed to resume guided session", "session_id", rec.SessionID, "error", err)
		} else if resumed {
			log.Info("resumed guided session", "session_id", rec.SessionID, "section_index", rec.SectionIndex)
		}
	}

	// Create server
	importer := ingest.NewProvider(db, log)
	srv := server.New(db, engine, panel, importer, cfg.Auth.APIKey, log)

	// Mount MCP over streamable HTTP
	mcpSrv := mcp.New(db, Version, log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
