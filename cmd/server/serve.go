package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"goxchain/config"
	"goxchain/logger"
	"goxchain/metrics"
	"goxchain/redis"
	"goxchain/simulator"
	"goxchain/workers"
	"goxchain/workers/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the simulation pipelines",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Init(configPath)
		cfg := config.Config

		if err := os.MkdirAll(cfg.Log.Dir, 0o755); err != nil {
			return fmt.Errorf("error creating log dir: %w", err)
		}
		logFile := filepath.Join(cfg.Log.Dir, fmt.Sprintf("log_%s.txt", time.Now().Format("2006-01-02")))
		log, err := logger.New(cfg.Log.Level, logFile, "stderr")
		if err != nil {
			return err
		}
		defer log.Sync()

		log.Info("Starting cross-chain simulator",
			zap.String("addr", cfg.Server.Addr),
			zap.Float64("failureRate", cfg.Simulator.FailureRate),
			zap.Duration("phaseTimeout", cfg.Simulator.PhaseTimeout),
		)

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(registry)

		var sinks []simulator.Sink
		if cfg.Redis.Enabled {
			// without redis the configured fan-out cannot work, do not continue
			publisher := redis.NewPublisher(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.ChannelPrefix)
			defer publisher.Close()
			if err := publisher.Ping(); err != nil {
				return fmt.Errorf("error connecting to redis: %w", err)
			}
			sinks = append(sinks, publisher)
			log.Info("Publishing events to redis", zap.String("host", cfg.Redis.Host), zap.String("prefix", cfg.Redis.ChannelPrefix))
		}

		sim, err := simulator.New(simulator.Options{
			Config:  cfg.Simulator,
			Metrics: m,
			Log:     log,
			Sinks:   sinks,
		})
		if err != nil {
			return err
		}

		// two worker threads:
		// * pending operation reporter
		// * API serving HTTP server (serves as main worker thread)
		go workers.Worker_reportPending(sim, m, cfg.ReportInterval, log)

		err = workers.Worker_HTTP(cfg, workers.NewRouter(handlers.New(sim, log), registry, log), log)

		log.Info("Waiting for in-flight operations")
		sim.Wait()
		return err
	},
}
