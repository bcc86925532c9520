package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/compazz/posbridge/config"
	"github.com/compazz/posbridge/internal/app"
	"github.com/compazz/posbridge/internal/bridgeapi"
)

var (
	cfile       = flag.String("c", "/etc/posbridge.yml", "config file")
	showVersion = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("posbridged", version)
		return
	}

	cfg := config.LoadConfig(*cfile)

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "posbridged init failed: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	server := bridgeapi.NewServer(
		cfg,
		application.Store(),
		application.Dispatcher(),
		application.PrintQueue(),
		application.Directory(),
		application.SyncService(),
		application.Catalog(),
		application.Bus(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		zap.L().Error("bridge api stopped", zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("posbridged shut down")
}
