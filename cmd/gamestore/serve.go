package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jbweber/homelab/gamestore/internal/api"
	"github.com/jbweber/homelab/gamestore/internal/datastore"
	"github.com/jbweber/homelab/gamestore/internal/logging"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
	"github.com/jbweber/homelab/gamestore/internal/repository"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd)
		},
	}
	cmd.Flags().String("port", "", "Port to listen on (env: GAMESTORE_PORT)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	entry := logging.Component(logger, "server")

	db, err := cfg.InitializeDatabase(ctx)
	if err != nil {
		return err
	}
	ds := datastore.New(db)
	defer func() {
		if err := ds.Close(); err != nil {
			entry.WithError(err).Warn("failed to close datastore")
		}
	}()

	var (
		storeMetrics *metrics.StoreMetrics
		gatherer     prometheus.Gatherer
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		storeMetrics = metrics.NewStoreMetricsWithRegisterer(reg)
		gatherer = reg
	}

	uows := repository.NewFactory(ds,
		repository.WithMetrics(storeMetrics),
		repository.WithLogger(logging.Component(logger, "unit-of-work")),
	)
	services := api.NewServices(uows, log.NewEntry(logger), storeMetrics)
	router := api.NewRouter(api.NewAPI(services, ds, gatherer), logging.Component(logger, "http"))

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		entry.WithFields(log.Fields{"addr": srv.Addr, "db_path": cfg.DBPath}).Info("gamestore listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	entry.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
