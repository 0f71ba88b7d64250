package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetcost/trucktco/api/compare"
	"github.com/fleetcost/trucktco/core/sensitivity"
	"github.com/fleetcost/trucktco/core/tco"
	"github.com/fleetcost/trucktco/infra/logger"
	inframetrics "github.com/fleetcost/trucktco/infra/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the comparison API over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("serve-command")

	calc := tco.NewWithLogger(log)
	var engine compare.Calculator = calc
	if cfg.Cache.Enabled {
		engine = tco.NewCached(calc, cfg.Cache.MaxEntries)
	}

	sink, err := inframetrics.NewSink(cfg.Metrics)
	if err != nil {
		return err
	}
	defer inframetrics.CloseSink(sink)

	mux := compare.NewMux(engine, sensitivity.NewWithLogger(calc, log), sink, log)
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	if cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := inframetrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown: %v", err)
		}
	}()

	log.Infof("serving comparison API on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
