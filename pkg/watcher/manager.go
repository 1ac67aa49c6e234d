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
	"sync"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
)

// Manager owns the per-folder observers and offers bulk lifecycle
// operations. It performs no path de-duplication; registering the same
// folder twice is the caller's problem.
type Manager struct {
	pipe       models.PipelineConfig
	checker    Checker
	dispatcher Dispatcher
	logger     logger.Logger

	mu        sync.Mutex
	observers []*Observer
}

func NewManager(pipe models.PipelineConfig, checker Checker, dispatcher Dispatcher, log logger.Logger) *Manager {
	return &Manager{
		pipe:       pipe,
		checker:    checker,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Register constructs an observer for cfg and appends it.
func (m *Manager) Register(cfg models.WatchFolderConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.observers = append(m.observers, NewObserver(cfg, m.pipe, m.checker, m.dispatcher, m.logger))
}

// Len returns the number of registered observers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.observers)
}

// StartAll starts every observer in registration order. One observer
// failing to start does not prevent the rest from starting.
func (m *Manager) StartAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.observers {
		if err := o.Start(); err != nil {
			m.logger.Warn().
				Err(err).
				Str("folder", o.Path()).
				Msg("Failed to start folder observer")
		}
	}
}

// StopAll raises the stop signal on every observer in registration order.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.observers {
		o.Stop()
	}
}

// Name identifies the manager for lifecycle logging.
func (*Manager) Name() string {
	return "folder-manager"
}

// Start implements the lifecycle service surface over StartAll.
func (m *Manager) Start(_ context.Context) error {
	m.StartAll()
	return nil
}

// Stop implements the lifecycle service surface over StopAll.
func (m *Manager) Stop(_ context.Context) error {
	m.StopAll()
	return nil
}
