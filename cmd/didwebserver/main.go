package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/identinet/did-web-server/internal/server/apiv1"
	"github.com/identinet/did-web-server/internal/server/httpserver"
	"github.com/identinet/did-web-server/pkg/configuration"
	"github.com/identinet/did-web-server/pkg/logger"
	"github.com/identinet/did-web-server/pkg/resolver"
	"github.com/identinet/did-web-server/pkg/store"
	"github.com/identinet/did-web-server/pkg/trace"
)

type service interface {
	Close(ctx context.Context) error
}

func main() {
	var (
		wg                 = &sync.WaitGroup{}
		ctx                = context.Background()
		services           = make(map[string]service)
		serviceName string = "didwebserver"
	)

	cfg, err := configuration.New(ctx)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(serviceName, cfg.Log.FolderPath, cfg.Production)
	if err != nil {
		panic(err)
	}

	// main function log
	mainLog := log.New("main")

	tracer, err := trace.New(ctx, cfg, serviceName, log)
	if err != nil {
		panic(err)
	}

	storeService, err := store.New(cfg)
	if err != nil {
		panic(err)
	}

	resolverChain := resolver.New(cfg, log)

	apiv1Client, err := apiv1.New(ctx, cfg, storeService, resolverChain, tracer, log)
	if err != nil {
		panic(err)
	}
	services["apiv1Client"] = apiv1Client

	httpService, err := httpserver.New(ctx, cfg, apiv1Client, tracer, log)
	services["httpService"] = httpService
	if err != nil {
		panic(err)
	}

	// Handle sigterm and await termChan signal
	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan // Blocks here until interrupted

	mainLog.Info("HALTING SIGNAL!")

	for serviceName, service := range services {
		if err := service.Close(ctx); err != nil {
			mainLog.Error(err, "serviceName", serviceName)
		}
	}

	if err := tracer.Shutdown(ctx); err != nil {
		mainLog.Error(err, "Tracer shutdown")
	}

	wg.Wait() // Block here until are workers are done

	mainLog.Info("Stopped")
}
