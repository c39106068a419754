package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/climops/precip-analysis/internal/adapter/cdo"
	httpadapter "github.com/climops/precip-analysis/internal/adapter/http"
	kafkaadapter "github.com/climops/precip-analysis/internal/adapter/kafka"
	"github.com/climops/precip-analysis/internal/adapter/wgrib2"
	"github.com/climops/precip-analysis/internal/config"
	"github.com/climops/precip-analysis/internal/domain"
	"github.com/climops/precip-analysis/internal/observability"
	"github.com/climops/precip-analysis/internal/pipeline"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// The reference date defaults to today; an explicit YYYYMMDD argument
	// reruns a past date.
	ref := domain.Now()
	if len(os.Args) > 1 {
		parsed, err := domain.ParseReferenceDate(os.Args[1])
		if err != nil {
			logger.Error("invalid argument", "error", err)
			os.Exit(1)
		}
		ref = parsed
	}

	// Initialize the report publisher (feature-flagged via REPORT_ENABLED /
	// REPORT_BROKERS).
	var publisher pipeline.ReportPublisher
	var kafkaPub *kafkaadapter.Publisher
	if cfg.ReportEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPub
		logger.Info("window reporting enabled", "brokers", cfg.ReportBrokers, "topic", cfg.ReportTopic)
		metrics.ReportingEnabled.Set(1)
	} else {
		logger.Info("window reporting disabled")
	}

	extractor := wgrib2.NewExtractor(cfg.Wgrib2Path, cfg.ToolTimeout, logger)
	operator := cdo.NewOperator(cfg.CDOPath, cfg.ToolTimeout, logger)

	orch := pipeline.New(extractor, operator, publisher, logger, metrics, pipeline.Settings{
		SourceRoot:   cfg.SourceRoot,
		OutputDir:    cfg.OutputDir,
		WorkspaceDir: cfg.WorkspaceDir,

		TargetWeekday:    cfg.TargetWeekday,
		WindowLengthDays: cfg.WindowLengthDays,
		WindowCount:      cfg.WindowCount,
		MinSamplesPerDay: cfg.MinSamplesPerDay,
		DestGrid:         cfg.DestGrid,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the status server. A busy port is not worth failing a batch run
	// over, so bind errors only warn.
	var srv *httpadapter.Server
	if cfg.StatusAddr != "" {
		srv = httpadapter.NewServer(cfg.StatusAddr, orch, orch, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("status server unavailable", "addr", cfg.StatusAddr, "error", err)
			}
		}()
	}

	_, runErr := orch.Run(ctx, ref)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("status server shutdown error", "error", err)
		}
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("run failed", "error", runErr)
		os.Exit(1)
	}
}
