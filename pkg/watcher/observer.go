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

package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
)

// Observer watches exactly one directory. Start spawns the watch goroutine;
// Stop only raises the stop signal and returns immediately — the goroutine
// notices it at its next iteration point. New files are settled, stability-
// checked, then handed to the dispatcher; a failing cycle is logged and the
// loop keeps going.
type Observer struct {
	cfg        models.WatchFolderConfig
	settle     time.Duration
	timeout    time.Duration
	interval   time.Duration
	checker    Checker
	dispatcher Dispatcher
	logger     logger.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewObserver builds an observer for cfg. The stability parameters come
// from the pipeline configuration shared by every folder.
func NewObserver(cfg models.WatchFolderConfig, pipe models.PipelineConfig, checker Checker, dispatcher Dispatcher, log logger.Logger) *Observer {
	return &Observer{
		cfg:        cfg,
		settle:     time.Duration(pipe.SettleDelay),
		timeout:    time.Duration(pipe.StabilityTimeout),
		interval:   time.Duration(pipe.StabilityInterval),
		checker:    checker,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Path returns the observed directory.
func (o *Observer) Path() string {
	return o.cfg.Path
}

// Start spawns the watch goroutine for the configured detection strategy.
// Starting a running observer is a logged no-op.
func (o *Observer) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		o.logger.Info().
			Str("folder", o.cfg.Path).
			Msg("Observer already running, ignoring start")

		return nil
	}

	done := make(chan struct{})

	switch o.cfg.Method {
	case models.WatchMethodPoll:
		go o.runPoll(done)
	default:
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create filesystem watcher: %w", err)
		}

		if err := w.Add(o.cfg.Path); err != nil {
			_ = w.Close()

			return fmt.Errorf("failed to watch %s: %w", o.cfg.Path, err)
		}

		go o.runWatchdog(w, done)
	}

	o.done = done
	o.running = true

	o.logger.Info().
		Str("folder", o.cfg.Path).
		Str("method", string(o.cfg.Method)).
		Msg("Folder observation started")

	return nil
}

// Stop raises the stop signal and returns immediately; it does not wait for
// the watch goroutine to exit.
func (o *Observer) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return
	}

	close(o.done)
	o.running = false

	o.logger.Info().
		Str("folder", o.cfg.Path).
		Msg("Folder observation stop requested")
}

// runWatchdog consumes fsnotify creation events until the stop signal.
func (o *Observer) runWatchdog(w *fsnotify.Watcher, done <-chan struct{}) {
	defer func() {
		if err := w.Close(); err != nil {
			o.logger.Warn().
				Err(err).
				Str("folder", o.cfg.Path).
				Msg("Failed to close filesystem watcher")
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Create) {
				continue
			}

			o.handleNew(done, event.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}

			o.logger.Warn().
				Err(err).
				Str("folder", o.cfg.Path).
				Msg("Filesystem watcher error")
		}
	}
}

// runPoll diffs the directory listing every poll interval. Files already
// present when observation starts are the baseline and are never treated as
// new.
func (o *Observer) runPoll(done <-chan struct{}) {
	known, err := o.listFiles()
	if err != nil {
		o.logger.Warn().
			Err(err).
			Str("folder", o.cfg.Path).
			Msg("Failed to take initial directory listing")

		known = map[string]struct{}{}
	}

	ticker := time.NewTicker(time.Duration(o.cfg.PollInterval))
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			current, err := o.listFiles()
			if err != nil {
				o.logger.Warn().
					Err(err).
					Str("folder", o.cfg.Path).
					Msg("Failed to list directory, retrying next interval")

				continue
			}

			for name := range current {
				if _, seen := known[name]; !seen {
					o.handleNew(done, filepath.Join(o.cfg.Path, name))
				}
			}

			known = current
		}
	}
}

func (o *Observer) listFiles() (map[string]struct{}, error) {
	entries, err := os.ReadDir(o.cfg.Path)
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		names[entry.Name()] = struct{}{}
	}

	return names, nil
}

// handleNew settles and stability-checks one detected path, then dispatches
// it. Runs on the watch goroutine; a slow writer stalls only this folder.
func (o *Observer) handleNew(done <-chan struct{}, path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Files can vanish between detection and handling.
		o.logger.Debug().
			Err(err).
			Str("file", path).
			Msg("Detected file is gone, skipping")

		return
	}

	if info.IsDir() {
		return
	}

	o.logger.Info().
		Str("file", path).
		Str("folder", o.cfg.Path).
		Msg("New file detected")

	// Settle before the first stability check so extremely fast writers
	// are not raced.
	select {
	case <-done:
		return
	case <-time.After(o.settle):
	}

	stable, err := WaitForStability(context.Background(), o.checker, path, o.timeout, o.interval, o.logger)
	if err != nil {
		o.logger.Error().
			Err(err).
			Str("file", path).
			Msg("Stability wait failed")

		return
	}

	if !stable {
		o.logger.Warn().
			Str("file", path).
			Dur("timeout", o.timeout).
			Msg("File never stabilized, skipping")

		return
	}

	o.dispatcher.Dispatch(path)
}
