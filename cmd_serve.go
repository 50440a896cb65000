package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/idioms/apps/go-server/internal/httpserver"
	"github.com/robalobadob/idioms/apps/go-server/internal/store"
)

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*envFile, os.Stderr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

// serve runs the HTTP server and the session sweeper until ctx is cancelled.
func serve(ctx context.Context, a *app) error {
	sessions := store.NewMemoryStore()
	srv := httpserver.New(sessions, a.generator, a.evaluator, httpserver.Options{
		ClientOrigin:    a.cfg.ClientOrigin,
		ProviderTimeout: a.cfg.ProviderTimeout,
		RevealThreshold: a.cfg.RevealThreshold,
		SecureCookies:   a.cfg.SecureCookies,
	})
	httpSrv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", a.cfg.Port).Str("provider", a.cfg.Provider).Msg("starting go-server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		store.RunSweeper(ctx, sessions, a.cfg.SessionTTL, a.cfg.SessionTTL/4, func(n int) {
			log.Info().Int("evicted", n).Int("live", sessions.Len()).Msg("idle sessions swept")
		})
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
