/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tomoncle/workforce"
	"github.com/tomoncle/workforce/config"
	"github.com/tomoncle/workforce/database"
	_ "github.com/tomoncle/workforce/domain"
	"github.com/tomoncle/workforce/utils"
	"github.com/tomoncle/workforce/web"
	"golang.org/x/sync/errgroup"
)

var log = utils.NewLogger("MAIN")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "workforce",
		Short:         "Workforce HR records service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (env CONFIG_PATH, default "+config.DefaultPath+")")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg.ApplyLogging()
		return cfg, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	})

	var seed bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg, seed)
		},
	}
	migrateCmd.Flags().BoolVar(&seed, "seed", false, "also execute the SQL seed files of the configured environment")
	root.AddCommand(migrateCmd)

	return root
}

func migrate(ctx context.Context, cfg *config.Config, seed bool) error {
	if _, err := database.InitDatabaseWithOptions(ctx, &cfg.Database, true); err != nil {
		return err
	}
	defer func() { _ = database.CloseDB() }()

	if seed {
		if err := database.InitData(ctx); err != nil {
			return err
		}
	}
	log.Info("Migrations applied")
	return nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := database.InitDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.Warnf("close database: %v", err)
		}
	}()

	metrics, err := web.RegisterMetrics(web.MetricsConfig{DB: db.DB})
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: web.NewRouter(web.RouterConfig{
			Services: workforce.NewServices(db),
			Health:   database.GetHealthStatus,
			Metrics:  metrics,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
