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
	"github.com/tkrejci/dfscore/internal/naming"
	"github.com/tkrejci/dfscore/internal/namingapi"
	"github.com/tkrejci/dfscore/internal/rmi"
	"github.com/tkrejci/dfscore/pkg/config"
	"github.com/tkrejci/dfscore/pkg/metrics"
)

func main() {
	initConfig := flag.Bool("init", false, "write a default config file and exit")
	forceInit := flag.Bool("force", false, "overwrite an existing config file with -init")
	flag.Parse()

	if *initConfig {
		path, err := config.InitNamingConfig(*forceInit)
		if err != nil {
			log.Fatalf("writing default config: %v", err)
		}
		log.Printf("wrote default naming config to %s", path)
		return
	}

	configPath := os.Getenv("DFS_NAMING_CONFIG")

	cfg, err := config.LoadNaming(configPath)
	if err != nil {
		log.Fatalf("loading naming configuration: %v", err)
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.Info("naming node starting (service=%s registration=%s)", cfg.Service.Address, cfg.Registration.Address)

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port, ShutdownTimeout: cfg.Metrics.ShutdownTimeout})
	}

	node := naming.New()

	serviceTable, err := namingapi.NewServiceMethodTable(node)
	if err != nil {
		log.Fatalf("building service method table: %v", err)
	}
	registrationTable, err := namingapi.NewRegistrationMethodTable(node)
	if err != nil {
		log.Fatalf("building registration method table: %v", err)
	}

	serviceOpts := []rmi.ListenerOption{}
	registrationOpts := []rmi.ListenerOption{}
	if cfg.Metrics.Enabled {
		serviceOpts = append(serviceOpts, rmi.WithMetrics(metrics.NewRPCMetrics(namingapi.ServiceInterfaceName)))
		registrationOpts = append(registrationOpts, rmi.WithMetrics(metrics.NewRPCMetrics(namingapi.RegistrationInterfaceName)))
	}

	serviceListener := rmi.NewListener(serviceTable, serviceOpts...)
	registrationListener := rmi.NewListener(registrationTable, registrationOpts...)

	var startGroup errgroup.Group
	startGroup.Go(func() error { return serviceListener.Start(cfg.Service.Address) })
	startGroup.Go(func() error { return registrationListener.Start(cfg.Registration.Address) })
	if err := startGroup.Wait(); err != nil {
		log.Fatalf("starting listeners: %v", err)
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

	logger.Info("naming node ready, listening on %s (service) and %s (registration)", serviceListener.Addr(), registrationListener.Addr())
	<-sigChan

	logger.Info("shutdown signal received")
	cancel()

	var stopGroup errgroup.Group
	stopGroup.Go(serviceListener.Stop)
	stopGroup.Go(registrationListener.Stop)
	if err := stopGroup.Wait(); err != nil {
		logger.Warn("stopping listeners: %v", err)
	}
	logger.Info("naming node stopped")
}
