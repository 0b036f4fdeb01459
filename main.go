package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"attrition/artifact"
	"attrition/config"
	"attrition/db"
	ahttp "attrition/http"
	"attrition/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer zlog.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		zlog.Fatal("create data dir", zap.Error(err))
	}
	if err := db.InitDB(cfg.Database.Path); err != nil {
		zlog.Fatal("initialize database", zap.Error(err))
	}
	defer db.CloseDB()
	zlog.Info("database initialized", zap.String("path", cfg.Database.Path))

	store, err := artifact.NewStore(artifact.Config{
		Dir:       cfg.Storage.ModelDir,
		CacheSize: cfg.Storage.CacheSize,
	})
	if err != nil {
		zlog.Fatal("initialize artifact store", zap.Error(err))
	}

	app := ahttp.NewApp(store, cfg.Storage.UploadDir, cfg.Training, zlog)

	stopWatch, err := config.Watch(configPath,
		app.SetTrainingDefaults,
		func(err error) { zlog.Warn("config reload failed", zap.Error(err)) },
	)
	if err != nil {
		zlog.Warn("config watcher unavailable", zap.Error(err))
	} else {
		defer stopWatch()
	}

	serverCfg := ahttp.DefaultServerConfig()
	serverCfg.Port = cfg.Http.Port
	server := ahttp.NewServer(serverCfg, app)
	go func() {
		if err := server.Start(); err != nil {
			zlog.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	if err := server.Stop(); err != nil {
		zlog.Warn("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("exiting")
}
