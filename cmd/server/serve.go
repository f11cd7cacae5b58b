package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/h4ks-com/farmhand/docs"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.JWT.Secret == "" && !a.cfg.TestMode {
		return errors.New("JWT_SECRET must be set")
	}
	if a.cfg.ExportSigningKey == "" {
		a.log.Warn("EXPORT_SIGNING_KEY is empty; payroll statements are signed with an empty key")
	}

	gin.SetMode(a.cfg.GinMode)
	engine := router.New(a.services, router.Options{
		TestMode: a.cfg.TestMode,
		MediaDir: a.cfg.Storage.Dir,
	}, a.log)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeExpiredTokens(ctx, a)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", a.cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting farmhand server", zap.String("addr", srv.Addr), zap.Bool("test_mode", a.cfg.TestMode))
		if a.cfg.TestMode {
			a.log.Warn("TEST MODE ENABLED - authentication bypassed with X-Test-Username")
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func purgeExpiredTokens(ctx context.Context, a *app) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := a.services.Tokens.PurgeExpired()
			if err != nil {
				a.log.Warn("token purge failed", zap.Error(err))
				continue
			}
			if purged > 0 {
				a.log.Info("expired tokens purged", zap.Int64("count", purged))
			}
		}
	}
}
