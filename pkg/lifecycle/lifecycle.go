/*
 * Copyright 2025 The Trapwatch Authors.
 *
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

// Package lifecycle starts the appliance services and shuts them down on
// SIGINT/SIGTERM.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

// stopTimeout bounds each service's Stop call during shutdown.
const stopTimeout = 10 * time.Second

// Service is one long-running appliance component. Start must spawn any
// background work and return promptly; Stop must be safe to call on a
// service that never started.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Name() string
}

// Run starts every service in order, blocks until a termination signal or
// context cancellation, then stops them in reverse order with a bounded
// per-service timeout. A service failing to start aborts startup; the
// already-started services are stopped before returning the error.
func Run(ctx context.Context, log logger.Logger, services ...Service) error {
	started := make([]Service, 0, len(services))

	for _, svc := range services {
		if err := svc.Start(ctx); err != nil {
			log.Error().
				Err(err).
				Str("service", svc.Name()).
				Msg("Failed to start service")

			stopAll(log, started)

			return fmt.Errorf("failed to start %s: %w", svc.Name(), err)
		}

		log.Info().
			Str("service", svc.Name()).
			Msg("Service started")

		started = append(started, svc)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled, shutting down")
	}

	stopAll(log, started)

	return nil
}

// stopAll stops services in reverse start order, best effort.
func stopAll(log logger.Logger, services []Service) {
	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]

		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)

		if err := svc.Stop(stopCtx); err != nil {
			log.Warn().
				Err(err).
				Str("service", svc.Name()).
				Msg("Failed to stop service")
		} else {
			log.Info().
				Str("service", svc.Name()).
				Msg("Service stopped")
		}

		cancel()
	}
}
