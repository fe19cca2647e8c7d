package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/newsdesk/app/api"
	"github.com/lysyi3m/newsdesk/app/cfg"
	"github.com/lysyi3m/newsdesk/app/database"
	"github.com/lysyi3m/newsdesk/app/feed"
	"github.com/lysyi3m/newsdesk/app/moderation"
	"github.com/lysyi3m/newsdesk/app/store"
	"github.com/lysyi3m/newsdesk/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting Newsdesk server", "version", appCfg.Version)

	// Moderation
	rules := moderation.DefaultRules()
	if appCfg.RulesFile != "" {
		rules, err = moderation.LoadRules(appCfg.RulesFile)
		if err != nil {
			fatal("Failed to load moderation rules", err)
		}
		slog.Info("Moderation rules loaded", "path", appCfg.RulesFile)
	}

	var editorOpts []moderation.EditorOption
	if appCfg.EditorialNotes {
		seed := uint64(time.Now().UnixNano())
		editorOpts = append(editorOpts, moderation.WithEditorialNotes(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	}

	pipeline := moderation.NewPipeline(
		moderation.NewClassifier(rules),
		moderation.NewEditor(rules, editorOpts...),
		appCfg.ProcessingDelay,
		appCfg.ProcessingTimeout,
	)

	// Storage
	kv, closeStorage, err := openStorage(appCfg)
	if err != nil {
		fatal("Failed to open storage", err)
	}
	defer closeStorage()

	newsStore := store.New(kv, pipeline)
	if err := newsStore.LoadNews(context.Background()); err != nil {
		slog.Warn("Starting with an empty news list", "error", err)
	} else {
		state := newsStore.State()
		slog.Info("News loaded", "stories", len(state.Stories), "bookmarks", state.BookmarkCount)
	}

	// Imports
	configCache := feed.NewConfigCache(appCfg.ImportsDir)
	if err := configCache.Run(); err != nil {
		fatal("Failed to load import sources", err)
	}
	slog.Info("Import sources loaded", "count", configCache.GetConfigCount(), "dir", appCfg.ImportsDir)

	scheduler := tasks.NewScheduler(configCache, feed.NewParser(), feed.NewFilterer(), kv, newsStore)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount)

	// HTTP
	handler := api.NewHandler(newsStore, configCache, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler and storage are closed via defer
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

// openStorage returns the KV backend selected by the configuration and a
// function releasing it.
func openStorage(appCfg *cfg.Cfg) (database.KV, func(), error) {
	if appCfg.InMemory {
		slog.Info("Using in-memory storage")
		return database.NewMemoryKV(), func() {}, nil
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("Connected to database", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}

	return database.NewKVRepository(db), closeDB, nil
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
