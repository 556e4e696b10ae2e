package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tkrejci/dfscore/internal/logger"
	"github.com/tkrejci/dfscore/internal/ratelimiter"
	"github.com/tkrejci/dfscore/internal/rmi"
	"github.com/tkrejci/dfscore/internal/storage"
	"github.com/tkrejci/dfscore/internal/storageapi"
	"github.com/tkrejci/dfscore/pkg/config"
	"github.com/tkrejci/dfscore/pkg/metrics"
)

func main() {
	initConfig := flag.Bool("init", false, "write a default config file and exit")
	forceInit := flag.Bool("force", false, "overwrite an existing config file with -init")
	flag.Parse()

	if *initConfig {
		path, err := config.InitStorageConfig(*forceInit)
		if err != nil {
			log.Fatalf("writing default config: %v", err)
		}
		log.Printf("wrote default storage config to %s", path)
		return
	}

	configPath := os.Getenv("DFS_STORAGE_CONFIG")

	cfg, err := config.LoadStorage(configPath)
	if err != nil {
		log.Fatalf("loading storage configuration: %v", err)
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.Info("storage node starting (root=%s data=%s command=%s)", cfg.Root, cfg.Data.Address, cfg.Command.Address)

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port, ShutdownTimeout: cfg.Metrics.ShutdownTimeout})
	}

	node, err := storage.New(cfg.Root)
	if err != nil {
		log.Fatalf("opening storage root: %v", err)
	}

	dataTable, err := storageapi.NewDataMethodTable(node)
	if err != nil {
		log.Fatalf("building data method table: %v", err)
	}
	commandTable, err := storageapi.NewCommandMethodTable(node)
	if err != nil {
		log.Fatalf("building command method table: %v", err)
	}

	var limiter *ratelimiter.RateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = ratelimiter.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	dataOpts := []rmi.ListenerOption{}
	commandOpts := []rmi.ListenerOption{}
	if limiter != nil {
		dataOpts = append(dataOpts, rmi.WithRateLimiter(limiter))
	}
	if cfg.Metrics.Enabled {
		dataOpts = append(dataOpts, rmi.WithMetrics(metrics.NewRPCMetrics(storageapi.DataInterfaceName)))
		commandOpts = append(commandOpts, rmi.WithMetrics(metrics.NewRPCMetrics(storageapi.CommandInterfaceName)))
	}

	dataListener := rmi.NewListener(dataTable, dataOpts...)
	commandListener := rmi.NewListener(commandTable, commandOpts...)

	var startGroup errgroup.Group
	startGroup.Go(func() error { return dataListener.Start(cfg.Data.Address) })
	startGroup.Go(func() error { return commandListener.Start(cfg.Command.Address) })
	if err := startGroup.Wait(); err != nil {
		log.Fatalf("starting listeners: %v", err)
	}

	dataProxy := rmi.NewProxy(storageapi.DataInterfaceName, dataListener.Addr().String())
	commandProxy := rmi.NewProxy(storageapi.CommandInterfaceName, commandListener.Addr().String())

	if err := node.RegisterWithNaming(cfg.Naming.RegistrationAddress, dataProxy, commandProxy); err != nil {
		log.Fatalf("registering with naming node: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("metrics server: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("storage node ready, listening on %s (data) and %s (command)", dataListener.Addr(), commandListener.Addr())
	<-sigChan

	logger.Info("shutdown signal received")
	cancel()

	var stopGroup errgroup.Group
	stopGroup.Go(dataListener.Stop)
	stopGroup.Go(commandListener.Stop)
	if err := stopGroup.Wait(); err != nil {
		logger.Warn("stopping listeners: %v", err)
	}
	logger.Info("storage node stopped")
}
