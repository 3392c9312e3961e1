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

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	devMode := flag.Bool("dev", false, "run with an in-memory store and a seeded demo workout (no config file or database)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftLog starting", "version", Version)

	var cfg *config.Config
	var store session.Store

	if *devMode {
		cfg = config.Dev()
		mem := session.NewMemStore()
		seedDemoWorkout(mem, log)
		store = mem
		log.Info("dev mode: in-memory store, no auth")
	} else {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(context.Background(), dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = db
		log.Info("database connected")
	}

	core := session.NewManager(store, log)
	srv := server.New(core, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		var err error
		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		var err error
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr)
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

// seedDemoWorkout gives dev mode something to start sessions against.
func seedDemoWorkout(mem *session.MemStore, log *slog.Logger) {
	bench := uuid.New()
	squat := uuid.New()
	workout := &models.Workout{
		ID:    uuid.New(),
		Name:  "Push Day (demo)",
		Notes: "seeded by -dev",
	}

	benchSlot := models.WorkoutExercise{
		ID: uuid.New(), WorkoutID: workout.ID, ExerciseID: bench, OrderIndex: 0,
	}
	for i, plan := range []struct {
		reps   int
		weight float64
		kind   models.SetType
	}{
		{10, 40, models.SetWarmup},
		{8, 60, models.SetNormal},
		{8, 60, models.SetNormal},
		{6, 65, models.SetFailure},
	} {
		benchSlot.Sets = append(benchSlot.Sets, models.WorkoutSet{
			ID: uuid.New(), WorkoutExerciseID: benchSlot.ID,
			PlannedReps: plan.reps, PlannedWeight: plan.weight,
			SetType: plan.kind, OrderIndex: i,
		})
	}

	squatSlot := models.WorkoutExercise{
		ID: uuid.New(), WorkoutID: workout.ID, ExerciseID: squat, OrderIndex: 1,
	}
	for i, plan := range []struct {
		reps   int
		weight float64
	}{
		{5, 100}, {5, 100}, {5, 100},
	} {
		squatSlot.Sets = append(squatSlot.Sets, models.WorkoutSet{
			ID: uuid.New(), WorkoutExerciseID: squatSlot.ID,
			PlannedReps: plan.reps, PlannedWeight: plan.weight,
			SetType: models.SetNormal, OrderIndex: i,
		})
	}

	workout.Exercises = []models.WorkoutExercise{benchSlot, squatSlot}
	mem.AddWorkout(workout)
	log.Info("seeded demo workout", "workout_id", workout.ID)
}
