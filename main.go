package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-detect/mode"
	"github.com/khaledhikmat/vs-detect/model"
	"github.com/khaledhikmat/vs-detect/pipeline"
	"github.com/khaledhikmat/vs-detect/service/cache"
	"github.com/khaledhikmat/vs-detect/service/config"
	"github.com/khaledhikmat/vs-detect/service/inference"
	"github.com/khaledhikmat/vs-detect/service/lgr"
)

const (
	configFile = "config.yaml"
	// WARNING: this has to be bigger that the server shutdown time
	waitOnShutdown = 8 * time.Second
)

var modeProcessors = map[string]mode.Processor{
	"server": mode.Server,
	"detect": mode.Detect,
}

func main() {
	rootCtx := context.Background()
	canxCtx, canxFn := context.WithCancel(rootCtx)

	// Hook up a signal handler to cancel the context
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		lgr.Logger.Info(
			"received kill signal",
			slog.Any("signal", sig),
		)
		canxFn()
	}()

	// Load env vars if we are in DEV mode
	if os.Getenv("RUN_TIME_ENV") == "dev" || os.Getenv("RUN_TIME_ENV") == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			lgr.Logger.Error("error loading .env file", slog.Any("error", xerrors.New(err.Error())))
			panic("error loading .env file")
		}
	}

	modeType := "server"
	args := os.Args[1:]
	if len(args) > 0 {
		modeType = args[0]
		args = args[1:]
	}

	modeProc, ok := modeProcessors[modeType]
	if !ok {
		lgr.Logger.Error("invalid mode", slog.String("mode", modeType))
		panic("invalid mode")
	}

	cfgSvc, err := config.NewViper(configFile)
	if err != nil {
		lgr.Logger.Error("error loading config", slog.String("file", configFile), lgr.Err(err))
		panic("error loading config")
	}

	// The model must be loaded before anything is served
	yoloSvc, err := pipeline.NewYoloService(cfgSvc)
	if err != nil {
		var ce model.CustomError
		if errors.As(err, &ce) {
			lgr.Logger.Error("model loading failed",
				slog.String("processor", ce.Processor),
				slog.Any("misc", ce.Misc),
				slog.String("stackTrace", ce.StackTrace),
			)
		}
		lgr.Logger.Error("model loading failed", lgr.Err(err))
		panic(err)
	}

	cacheSvc := cache.New(canxCtx, cfgSvc)

	svcs := mode.ServicesFactory{
		CfgSvc:       cfgSvc,
		InferenceSvc: inference.NewCached(yoloSvc, cacheSvc),
	}
	defer func() {
		if err := svcs.InferenceSvc.Close(); err != nil {
			lgr.Logger.Warn("error closing inference service", lgr.Err(err))
		}
	}()

	modeProcResult := make(chan error, 1)

	go func() {
		modeProcResult <- modeProc(canxCtx, svcs, args)
	}()

	// Wait for cancellation or mode proc exit
	select {
	case <-canxCtx.Done():
		lgr.Logger.Info(
			"context cancelled",
			slog.String("mode", modeType),
		)

	case err := <-modeProcResult:
		canxFn()
		if err != nil {
			lgr.Logger.Error(
				"mode processor exited",
				slog.String("mode", modeType),
				lgr.Err(err),
			)
			// Deferred functions are skipped by os.Exit
			svcs.InferenceSvc.Close()
			os.Exit(1)
		}
		return
	}

	// The mode processor gets `waitOnShutdown` to drain after cancellation
	timer := time.NewTimer(waitOnShutdown)
	defer timer.Stop()

	select {
	case <-timer.C:
		lgr.Logger.Info(
			"shutdown waiting period expired. Exiting now",
			slog.Duration("period", waitOnShutdown),
		)

	case err := <-modeProcResult:
		if err != nil {
			lgr.Logger.Info(
				"mode processor exited",
				slog.Any("error", xerrors.New(err.Error())),
			)
		}
	}
}
