// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/united-manufacturing-hub/payment-core/pkg/config"
	"github.com/united-manufacturing-hub/payment-core/pkg/engine"
	"github.com/united-manufacturing-hub/payment-core/pkg/fsm"
	"github.com/united-manufacturing-hub/payment-core/pkg/httpapi"
	"github.com/united-manufacturing-hub/payment-core/pkg/logger"
	"github.com/united-manufacturing-hub/payment-core/pkg/metrics"
	"github.com/united-manufacturing-hub/payment-core/pkg/sentry"
	"github.com/united-manufacturing-hub/payment-core/pkg/version"
)

func main() {
	// Initialize the global logger first thing so config errors have a sink
	logger.Initialize()

	cfg, err := config.Load()
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, logger.For(logger.ComponentCore), "Failed to load config: %v", err)
		os.Exit(1)
	}

	// Rebuild the logger from the effective config; Load already applied the
	// env overrides, so LOGGING_LEVEL/LOGGING_FORMAT still win over the file.
	logger.Reconfigure(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize Sentry
	sentry.InitSentry(version.GetAppVersion(), true)

	log := logger.For(logger.ComponentCore)
	log.Info("Starting payment-core...")

	eng, err := engine.New()
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "Failed to build payment engine: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the metrics server
	metricsServer := metrics.SetupMetricsEndpoint(cfg.Metrics.Address)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()

		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			sentry.ReportIssuef(sentry.IssueTypeError, log, "Failed to shutdown metrics server: %v", err)
		}
	}()

	httpServer, err := httpapi.NewServer(eng, &httpapi.ServerConfig{
		Address: cfg.HTTP.Address,
		Debug:   cfg.HTTP.Debug,
	}, logger.For(logger.ComponentHTTPAPI))
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "Failed to build HTTP server: %v", err)
		os.Exit(1)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return httpServer.Start(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		return httpServer.Stop(shutdownCtx)
	})

	// Drain transition events into the log so operators can follow the
	// machine without holding an HTTP connection.
	group.Go(func() error {
		for {
			event, err := eng.NextEvent(groupCtx)
			if err != nil {
				if fsm.IsStreamClosed(err) || errors.Is(err, context.Canceled) {
					return nil
				}

				return err
			}

			log.Infow("State transition",
				"id", event.ID,
				"from", event.FromState,
				"to", event.ToState,
				"timestamp", event.Timestamp,
			)
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		sentry.ReportIssuef(sentry.IssueTypeError, log, "payment-core exited with error: %v", err)
	}

	eng.Close()
	log.Info("payment-core stopped")

	_ = logger.Sync()
}
