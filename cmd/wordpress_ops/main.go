package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/api/handlers/http"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/app"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/config"
	appContext "gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/context"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/logger"
)

var configPath = flag.String("config", "config.yaml", "service configuration file")

func main() {
	// A local .env may carry CONFIG_PATH and deployment overrides; absent
	// is fine.
	_ = godotenv.Load()

	flag.Parse()
	if v := os.Getenv("CONFIG_PATH"); len(v) > 0 {
		*configPath = v
	}
	cfg := config.MustReadConfig(*configPath)

	if err := logger.InitGlobalLogger(cfg.Logger); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}

	globalLogger := logger.GetGlobalLogger()
	appContext.SetDefaultLogger(globalLogger.CoreLogger.Logger)

	coreLogger, err := logger.NewCoreLogger(cfg.Logger)
	if err != nil {
		logger.Fatal("Failed to create core logger: %v", err)
	}

	coreLogger.Info("Starting wordpress ops service")
	coreLogger.InfoWithFields("Configuration loaded", map[string]interface{}{
		"config_path": *configPath,
		"log_level":   cfg.Logger.Level,
		"log_output":  cfg.Logger.Output,
	})

	appContainer := app.NewMustApp(cfg)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	coreLogger.Info("Starting job worker...")
	appContainer.StartWorker()

	coreLogger.Info("Starting scan scheduler...")
	appContainer.StartScheduler()

	go func() {
		sig := <-signalChan
		coreLogger.InfoWithFields("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})

		coreLogger.Info("Stopping scan scheduler...")
		appContainer.StopScheduler()

		coreLogger.Info("Stopping job worker...")
		appContainer.StopWorker()

		coreLogger.Info("Graceful shutdown completed")
		os.Exit(0)
	}()

	coreLogger.Info("Starting HTTP server")
	if err := http.Run(appContainer, cfg.Server); err != nil {
		coreLogger.Fatal("HTTP server failed: %v", err)
	}
}
