package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"airpredict/config"
	"airpredict/db"
	ahttp "airpredict/http"
	"airpredict/logging"
	"airpredict/ml"
	"airpredict/monitoring"
	"airpredict/predict"
)

func main() {
	// 1. Load config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.FromConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load model artifacts
	pipelines, artifacts, err := predict.Bootstrap(cfg.Models, logger)
	if err != nil {
		var artErr *ml.ArtifactError
		if errors.As(err, &artErr) {
			logger.Fatal("cannot start without model artifact",
				zap.String("artifact", artErr.Name),
				zap.String("path", artErr.Path),
				zap.Error(err))
		}
		logger.Fatal("failed to build prediction pipelines", zap.Error(err))
	}
	logger.Info("pipelines ready",
		zap.String("policy", string(pipelines.Policy)),
		zap.String("duration_policy", string(pipelines.Price.DurationPolicy())),
		zap.Int("artifacts", len(artifacts.Files)))

	// 3. Record what was loaded
	runID := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Fatal("failed to create database directory", zap.Error(err))
	}
	if err := db.InitDB(cfg.Database.Path); err != nil {
		logger.Fatal("failed to initialize database", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer db.Close()
	recordArtifacts(logger, runID, string(pipelines.Policy), artifacts.Files)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events := monitoring.NewEventHub(ahttp.OriginChecker(cfg.Http.AllowedOrigins), logger.Named("events"))
	events.Start(ctx)

	// 4. Watch artifact files
	var stale func() []string
	if cfg.Models.WatchArtifacts {
		files := make(map[string]string, len(artifacts.Files))
		for _, f := range artifacts.Files {
			files[f.Name] = f.Path
		}
		watcher, err := monitoring.NewArtifactWatcher(files, logger.Named("watch"))
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			watcher.OnChange(func(c monitoring.ArtifactChange) {
				if err := events.Publish(monitoring.EventArtifactChanged, c); err != nil {
					logger.Warn("publish artifact change", zap.Error(err))
				}
			})
			watcher.Start(ctx)
			stale = watcher.Changed
		}
	}

	// 5. Start HTTP server
	api := ahttp.NewAPI(pipelines, ahttp.APIConfig{
		RunID:          runID,
		Artifacts:      artifacts.Files,
		Stats:          monitoring.NewStats(),
		StaleArtifacts: stale,
		Events:         events,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		Logger:         logger.Named("api"),
	})
	server := ahttp.NewServer(ahttp.ServerConfigFrom(cfg), api, logger.Named("http"))
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	// 6. Handle graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func recordArtifacts(logger *zap.Logger, runID, policy string, files []ml.ArtifactFile) {
	now := time.Now()
	records := make([]db.ArtifactRecord, 0, len(files))
	for _, f := range files {
		previous, ok, err := db.PreviousDigest(f.Name, runID)
		if err != nil {
			logger.Warn("read artifact registry", zap.String("artifact", f.Name), zap.Error(err))
		} else if ok && previous != f.SHA256 {
			logger.Info("artifact differs from previous run",
				zap.String("artifact", f.Name),
				zap.String("sha256", f.SHA256),
				zap.String("previous_sha256", previous))
		}
		records = append(records, db.NewArtifactRecord(runID, policy, f, now))
	}
	if err := db.RecordArtifacts(records); err != nil {
		logger.Warn("failed to record artifacts", zap.Error(err))
	}
}
