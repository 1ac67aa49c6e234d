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

// Package eventbus is the in-process event sink for device lifecycle events.
// Handlers run on their own goroutines; a slow or failing subscriber can
// never stall or destabilize a monitor.
package eventbus

import (
	"sync"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
)

// Handler receives every published device event. Handlers are invoked from
// arbitrary goroutines and must synchronize their own state.
type Handler func(event models.DeviceEvent)

// Bus is a simple in-process pub/sub fan-out.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   logger.Logger
}

func New(log logger.Logger) *Bus {
	return &Bus{
		handlers: make([]Handler, 0),
		logger:   log,
	}
}

// Subscribe registers a handler for all events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = append(b.handlers, h)
}

// Publish dispatches the event to every subscriber on its own goroutine.
// A panicking handler is logged and isolated.
func (b *Bus) Publish(event models.DeviceEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers {
		handler := h

		go func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error().
						Interface("panic", r).
						Str("event_id", event.ID).
						Str("event_type", string(event.Type)).
						Msg("event handler panicked")
				}
			}()

			handler(event)
		}()
	}
}
