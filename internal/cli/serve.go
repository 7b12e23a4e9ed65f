package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/paveldruzyak/commodus/internal/api/http"
	"github.com/paveldruzyak/commodus/internal/application/review"
	"github.com/paveldruzyak/commodus/internal/domain/vote"
	"github.com/paveldruzyak/commodus/internal/infrastructure/githubapi"
)

func newServeCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo, closeStore, err := openStore(ctx, cfg.Store, true, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			gh, err := githubapi.NewClient(githubapi.Options{
				Token:   cfg.GitHub.Token,
				BaseURL: cfg.GitHub.BaseURL,
				Timeout: cfg.GitHub.Timeout,
			}, logger)
			if err != nil {
				return err
			}

			syncPolicy, err := review.ParseSyncPolicy(cfg.Review.SyncPolicy)
			if err != nil {
				return err
			}
			policy, err := review.NewPolicy(cfg.Review.Policy)
			if err != nil {
				return err
			}
			svc := review.NewService(
				repo,
				gh,
				gh,
				vote.NewParser(cfg.Review.PositiveToken, cfg.Review.NegativeToken),
				policy,
				review.Options{
					DefaultRequiredPlusOnes: cfg.Review.RequiredPlusOnes,
					SyncPolicy:              syncPolicy,
				},
				logger,
			)

			apiServer := httpapi.NewServer(svc, httpapi.WebhookOptions{
				Secret:             cfg.Webhook.Secret,
				InsecureSkipVerify: cfg.Webhook.InsecureSkipVerify,
			}, logger)

			httpServer := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      apiServer.Router(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().
					Str("addr", cfg.Server.Addr).
					Str("store", cfg.Store.Driver).
					Str("policy", policy.String()).
					Str("sync_policy", string(syncPolicy)).
					Int("required_plus_ones", cfg.Review.RequiredPlusOnes).
					Msg("http server started")
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}
