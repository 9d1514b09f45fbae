// Command colonysim runs the Waggle bee colony simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/waggle/internal/api"
	"github.com/talgya/waggle/internal/engine"
	"github.com/talgya/waggle/internal/persistence"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Waggle — Bee Colony Simulation")

	seed := envInt64("COLONY_SEED", 0)
	dbPath := envString("COLONY_DB", "data/colony.db")
	apiPort := int(envInt64("COLONY_PORT", 8080))
	population := int(envInt64("COLONY_POPULATION", 12))

	// ── Chronicle ─────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(dbPath), 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("chronicle opened", "path", dbPath)

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.New(engine.Config{
		Seed:              seed,
		InitialPopulation: population,
	})
	if seed != 0 {
		slog.Info("seeded run, deterministic replay enabled", "seed", seed)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("COLONY_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("COLONY_ADMIN_KEY not set — admin endpoints will be disabled")
	}

	apiServer := &api.Server{
		Eng:      eng,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Chronicle flusher ─────────────────────────────────────────────
	flushDone := make(chan struct{})
	go func() {
		flush := time.NewTicker(5 * time.Second)
		sample := time.NewTicker(30 * time.Second)
		defer flush.Stop()
		defer sample.Stop()
		for {
			select {
			case <-flush.C:
				flushChronicle(db, eng)
			case <-sample.C:
				c := eng.Snapshot()
				if err := db.AppendStats(eng.Tick(), eng.SimTime(), c.Stats); err != nil {
					slog.Error("stats sample failed", "error", err)
				}
			case <-flushDone:
				return
			}
		}
	}()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	started := time.Now()
	fmt.Printf("\nThe colony is buzzing: %d bees in the field.\n", population)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final flush on shutdown.
	close(flushDone)
	flushChronicle(db, eng)
	slog.Info("shutdown complete",
		"ticks", humanize.Comma(int64(eng.Tick())),
		"uptime", humanize.RelTime(started, time.Now(), "", ""),
		"sim_time", engine.FormatSimTime(eng.SimTime()),
	)
}

func flushChronicle(db *persistence.DB, eng *engine.Engine) {
	if err := db.AppendEvents(eng.DrainEvents()); err != nil {
		slog.Error("event flush failed", "error", err)
	}
	if err := db.AppendUnlocks(eng.DrainUnlocks()); err != nil {
		slog.Error("unlock flush failed", "error", err)
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("ignoring invalid env value", "key", key, "value", v)
	}
	return fallback
}
