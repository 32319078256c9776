package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"collab-backend/controller"
	"collab-backend/db"
	"collab-backend/pkg/scheduler"
)

const shutdownTimeout = 30 * time.Second

func buildServeCmd(configPath *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the idle-inquiry job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

func buildMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()
			return db.Migrate(cmd.Context(), a.db, a.log)
		},
	}
}

func buildCloseIdleCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "close-idle",
		Short: "Close inquiries idle for longer than idle.threshold, once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()
			n, err := a.idle.CloseIdle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed %d idle inquiries\n", n)
			return nil
		},
	}
}

func runServe(ctx context.Context, configPath string, migrate bool) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if migrate {
		if err := db.Migrate(ctx, a.db, a.log); err != nil {
			return err
		}
	}

	sched := scheduler.New(a.log)
	if err := sched.Add("close-idle", a.cfg.Idle.Schedule, func(ctx context.Context) error {
		_, err := a.idle.CloseIdle(ctx)
		return err
	}); err != nil {
		return err
	}
	sched.Start()

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: controller.NewRouter(controller.Deps{
			Users:          a.users,
			Profiles:       a.profiles,
			Inquiries:      a.inquiries,
			Campaigns:      a.campaigns,
			Social:         a.social,
			JWT:            a.jwt,
			DB:             a.db,
			Metrics:        a.metrics,
			Log:            a.log,
			CORSOrigins:    a.cfg.Server.CORSOrigins,
			RequestTimeout: a.cfg.Server.RequestTimeout,
		}),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http shutdown", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		a.log.Warn("scheduler shutdown", zap.Error(err))
	}
	a.log.Info("server stopped")
	return nil
}
