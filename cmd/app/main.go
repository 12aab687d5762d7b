package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/lerianstudio/eventledger/internal/bootstrap"
	"github.com/lerianstudio/eventledger/internal/platform/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewZapLogger(cfg.EnvName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	defer logger.Sync()

	svc, err := bootstrap.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Errorf("failed to initialize service: %v", err)
		os.Exit(1)
	}

	server := bootstrap.NewServer(svc)

	if err := server.Run(); err != nil {
		logger.Errorf("server exited with error: %v", err)
		os.Exit(1)
	}
}
