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

// The trapwatch daemon: heartbeat monitoring for trail cameras and smart
// plugs, folder observation for newly captured images, and the single-slot
// classification pipeline between them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/trapwatch/trapwatch/pkg/config"
	"github.com/trapwatch/trapwatch/pkg/eventbus"
	"github.com/trapwatch/trapwatch/pkg/history"
	"github.com/trapwatch/trapwatch/pkg/lifecycle"
	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
	"github.com/trapwatch/trapwatch/pkg/monitor"
	"github.com/trapwatch/trapwatch/pkg/openfiles"
	"github.com/trapwatch/trapwatch/pkg/pipeline"
	"github.com/trapwatch/trapwatch/pkg/probe"
	"github.com/trapwatch/trapwatch/pkg/registry"
	"github.com/trapwatch/trapwatch/pkg/settings"
	"github.com/trapwatch/trapwatch/pkg/shelly"
	"github.com/trapwatch/trapwatch/pkg/watcher"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/trapwatch/trapwatch.json", "Path to trapwatch config file")
	flag.Parse()

	ctx := context.Background()

	var cfg models.Config

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	rootLog, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store := settings.NewStore(cfg.SettingsFile, componentLogger(cfg.Logging, "settings"))

	bus := eventbus.New(componentLogger(cfg.Logging, "eventbus"))
	bus.Subscribe(func(event models.DeviceEvent) {
		rootLog.Info().
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Str("mac", event.Device.MAC).
			Str("hostname", event.Device.Hostname).
			Msg("Device event")
	})

	cameraEngine, err := buildCameraMonitor(ctx, &cfg, store, bus)
	if err != nil {
		return err
	}

	plugEngine, err := buildPlugMonitor(ctx, &cfg, store, bus)
	if err != nil {
		return err
	}

	services := []lifecycle.Service{cameraEngine, plugEngine}

	var (
		dispatcher   *pipeline.Dispatcher
		historyStore *history.Store
	)

	if len(cfg.Folders) > 0 {
		dispatcher, historyStore, err = buildPipeline(&cfg)
		if err != nil {
			return err
		}

		manager := watcher.NewManager(
			cfg.Pipeline,
			openfiles.NewProcChecker(componentLogger(cfg.Logging, "openfiles")),
			dispatcher,
			componentLogger(cfg.Logging, "watcher"),
		)

		for _, folder := range cfg.Folders {
			manager.Register(folder)
		}

		services = append(services, manager)
	}

	runErr := lifecycle.Run(ctx, rootLog, services...)

	// Let in-flight classification jobs finish before closing the history
	// store; they are never cancelled once started.
	if dispatcher != nil {
		dispatcher.Wait()
	}

	if historyStore != nil {
		if err := historyStore.Close(); err != nil {
			rootLog.Warn().Err(err).Msg("Failed to close history store")
		}
	}

	return runErr
}

func buildCameraMonitor(ctx context.Context, cfg *models.Config, store *settings.Store, bus *eventbus.Bus) (*monitor.Engine, error) {
	monitorLog := componentLogger(cfg.Logging, "camera-monitor")

	reg := registry.New()

	devices, err := store.LoadCameras(ctx)
	if err != nil {
		monitorLog.Warn().Err(err).Msg("Failed to load camera list, starting empty")
	} else {
		reg.Replace(devices)
	}

	prober := probe.NewCameraProber(cfg.CameraMonitor.CameraCheckConfig, monitorLog)
	kind := monitor.NewCameraKind(prober, reg, store)

	return monitor.NewEngine(monitor.Options{
		Kind:    kind,
		Config:  cfg.CameraMonitor.MonitorConfig,
		OnEvent: bus.Publish,
		Logger:  monitorLog,
	})
}

func buildPlugMonitor(ctx context.Context, cfg *models.Config, store *settings.Store, bus *eventbus.Bus) (*monitor.Engine, error) {
	monitorLog := componentLogger(cfg.Logging, "plug-monitor")

	reg := registry.New()

	devices, err := store.LoadPlugs(ctx)
	if err != nil {
		monitorLog.Warn().Err(err).Msg("Failed to load plug list, starting empty")
	} else {
		reg.Replace(devices)
	}

	client := shelly.NewClient(time.Duration(cfg.PlugMonitor.HTTPTimeout), monitorLog)
	kind := monitor.NewPlugKind(shelly.NewProber(client, monitorLog), reg, store)

	return monitor.NewEngine(monitor.Options{
		Kind:    kind,
		Config:  cfg.PlugMonitor.MonitorConfig,
		OnEvent: bus.Publish,
		Logger:  monitorLog,
	})
}

func buildPipeline(cfg *models.Config) (*pipeline.Dispatcher, *history.Store, error) {
	pipelineLog := componentLogger(cfg.Logging, "pipeline")

	classifier, err := pipeline.NewExecClassifier(
		cfg.Pipeline.ClassifierCommand,
		time.Duration(cfg.Pipeline.ClassifyTimeout),
		pipelineLog,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	var historyStore *history.Store

	opts := pipeline.DispatcherOptions{
		Gate:       pipeline.NewGate(pipelineLog),
		Classifier: classifier,
		Actuator:   &pipeline.LogActuator{Logger: pipelineLog},
		Threshold:  cfg.Pipeline.ScoreThreshold,
		Logger:     pipelineLog,
	}

	if cfg.HistoryDB != "" {
		historyStore, err = history.Open(cfg.HistoryDB, componentLogger(cfg.Logging, "history"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history store: %w", err)
		}

		opts.Recorder = historyStore
	}

	dispatcher, err := pipeline.NewDispatcher(opts)
	if err != nil {
		return nil, nil, err
	}

	return dispatcher, historyStore, nil
}

// componentLogger never fails the daemon over a logging problem; a bad
// config degrades to the test no-op logger.
func componentLogger(cfg *logger.Config, component string) logger.Logger {
	log, err := logger.NewComponent(cfg, component)
	if err != nil {
		return logger.NewTestLogger()
	}

	return log
}
