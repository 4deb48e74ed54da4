package mode

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khaledhikmat/vs-detect/handler"
	"github.com/khaledhikmat/vs-detect/service/lgr"
)

// Server serves /health and /detect until the context is cancelled
func Server(canxCtx context.Context, svcs ServicesFactory, _ []string) error {
	gin.SetMode(svcs.CfgSvc.GetServerMode())

	srv := &http.Server{
		Addr:         svcs.CfgSvc.GetServerAddress(),
		Handler:      handler.NewRouter(svcs.CfgSvc, svcs.InferenceSvc),
		ReadTimeout:  svcs.CfgSvc.GetServerReadTimeout(),
		WriteTimeout: svcs.CfgSvc.GetServerWriteTimeout(),
	}

	serveErr := make(chan error, 1)
	go func() {
		lgr.Logger.Info("server starting", slog.String("address", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-canxCtx.Done():
		lgr.Logger.Info("server context cancelled")
	}

	shutdownTime := time.Duration(svcs.CfgSvc.GetModeMaxShutdownTime()) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTime)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	lgr.Logger.Info("server stopped")
	return nil
}
