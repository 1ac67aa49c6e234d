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

package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
)

// joinTimeout bounds how long Stop waits for the loop goroutine to exit.
const joinTimeout = 5 * time.Second

var (
	errNilKind   = errors.New("monitor engine requires a kind")
	errNilLogger = errors.New("monitor engine requires a logger")
)

// Options configures one heartbeat engine. OnEvent is optional; when set it
// receives a value snapshot of the device for every status transition and
// eviction, and may be invoked from the loop goroutine or from a CheckNow
// caller's goroutine.
type Options struct {
	Kind    Kind
	Config  models.MonitorConfig
	OnEvent func(event models.DeviceEvent)
	Logger  logger.Logger
}

// Engine runs the periodic heartbeat loop for one device kind. The loop
// lives on a single background goroutine; Stop signals it and joins with a
// bounded wait. Per-device and per-cycle failures are logged and never abort
// the loop.
type Engine struct {
	kind    Kind
	cfg     models.MonitorConfig
	onEvent func(event models.DeviceEvent)
	logger  logger.Logger

	mu       sync.Mutex
	running  bool
	done     chan struct{}
	finished chan struct{}
}

// NewEngine builds an engine; the config must already be validated.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Kind == nil {
		return nil, errNilKind
	}

	if opts.Logger == nil {
		return nil, errNilLogger
	}

	return &Engine{
		kind:    opts.Kind,
		cfg:     opts.Config,
		onEvent: opts.OnEvent,
		logger:  opts.Logger,
	}, nil
}

// Name identifies the engine for lifecycle logging.
func (e *Engine) Name() string {
	return string(e.kind.Name()) + "-monitor"
}

// Start spawns the heartbeat loop and returns immediately. Starting an
// already-running engine is a logged no-op; a disabled engine never spawns.
func (e *Engine) Start(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.logger.Info().
			Str("kind", e.kind.LogContext()).
			Msg("Monitor already running, ignoring start")

		return nil
	}

	if !e.cfg.Enabled {
		e.logger.Info().
			Str("kind", e.kind.LogContext()).
			Msg("Monitor disabled, not starting")

		return nil
	}

	e.done = make(chan struct{})
	e.finished = make(chan struct{})
	e.running = true

	e.logger.Info().
		Str("kind", e.kind.LogContext()).
		Dur("interval", time.Duration(e.cfg.Interval)).
		Bool("auto_remove", e.cfg.AutoRemove).
		Msg("Starting heartbeat monitor")

	go e.run(e.done, e.finished)

	return nil
}

// Stop signals the loop and joins it with a bounded wait. A join timeout is
// logged as a warning, never an error; stopping a stopped engine is a no-op.
func (e *Engine) Stop(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}

	close(e.done)

	select {
	case <-e.finished:
	case <-time.After(joinTimeout):
		e.logger.Warn().
			Str("kind", e.kind.LogContext()).
			Dur("timeout", joinTimeout).
			Msg("Monitor loop did not exit within join timeout")
	}

	e.running = false

	e.logger.Info().
		Str("kind", e.kind.LogContext()).
		Msg("Heartbeat monitor stopped")

	return nil
}

func (e *Engine) run(done <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)

	for {
		e.runCycle(context.Background())

		select {
		case <-done:
			return
		case <-time.After(time.Duration(e.cfg.Interval)):
		}
	}
}

// runCycle is one pass: probe every checkable device, apply the status
// update, then run eviction. A panic anywhere in the cycle is contained so
// the loop can try again next interval.
func (e *Engine) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Interface("panic", r).
				Str("kind", e.kind.LogContext()).
				Msg("Heartbeat cycle panicked")
		}
	}()

	for _, device := range e.kind.Registry().Snapshot() {
		if device.IP == "" {
			e.logger.Debug().
				Str("mac", device.MAC).
				Str("kind", e.kind.LogContext()).
				Msg("Device has no IP address, skipping probe")

			continue
		}

		reachable := e.kind.Probe(ctx, device.IP)
		e.applyStatus(ctx, device.MAC, reachable)
	}

	e.evict(ctx)
}

// CheckNow performs one synchronous pass over every device on the caller's
// goroutine and returns the reachability result per MAC. Devices without an
// IP are never probed and report false. The periodic loop's own timer is
// unaffected.
func (e *Engine) CheckNow(ctx context.Context) map[string]bool {
	results := make(map[string]bool)

	for _, device := range e.kind.Registry().Snapshot() {
		if device.IP == "" {
			results[device.MAC] = false
			continue
		}

		reachable := e.kind.Probe(ctx, device.IP)
		e.applyStatus(ctx, device.MAC, reachable)

		results[device.MAC] = reachable
	}

	return results
}

// applyStatus runs the status-update step for one probe result. The registry
// guard serializes concurrent invocations (periodic loop vs CheckNow) for
// the same device; a device removed concurrently is a silent no-op.
func (e *Engine) applyStatus(ctx context.Context, mac string, reachable bool) {
	var (
		previous models.DeviceStatus
		snapshot models.Device
		touched  bool
	)

	ok := e.kind.Registry().Update(mac, func(device *models.Device) {
		previous = device.Status

		if reachable {
			device.Status = models.StatusConnected
			device.LastSeen = models.Now()
			touched = true
		} else if previous == models.StatusConnected {
			// A failed probe never advances LastSeen.
			device.Status = models.StatusDisconnected
			touched = true
		}

		snapshot = *device
	})
	if !ok {
		return
	}

	if !touched {
		return
	}

	if reachable && previous != models.StatusConnected {
		e.logger.Info().
			Str("mac", mac).
			Str("kind", e.kind.LogContext()).
			Msg("Device came online")

		e.emit(models.NewDeviceEvent(models.StatusOnlineEvent(e.kind.Name()), snapshot))
	} else if !reachable && previous == models.StatusConnected {
		e.logger.Warn().
			Str("mac", mac).
			Str("kind", e.kind.LogContext()).
			Msg("Device went offline")

		e.emit(models.NewDeviceEvent(models.StatusOfflineEvent(e.kind.Name()), snapshot))
	}

	e.persist(ctx)
}

// evict removes devices whose LastSeen is older than the auto-remove window.
// Candidacy is computed from LastSeen alone; a still-"connected" device with
// a stale timestamp is a candidate too. With auto-remove disabled the
// candidates are only logged.
func (e *Engine) evict(ctx context.Context) {
	window := time.Duration(e.cfg.AutoRemoveAfter)
	removed := false

	for _, device := range e.kind.Registry().Snapshot() {
		lastSeen, err := device.LastSeenTime()
		if err != nil {
			e.logger.Debug().
				Str("mac", device.MAC).
				Str("last_seen", device.LastSeen).
				Msg("Unparseable last_seen, skipping eviction check")

			continue
		}

		elapsed := time.Since(lastSeen)
		if elapsed <= window {
			continue
		}

		if !e.cfg.AutoRemove {
			e.logger.Debug().
				Str("mac", device.MAC).
				Str("kind", e.kind.LogContext()).
				Dur("stale_for", elapsed).
				Msg("Device is stale but auto-remove is disabled")

			continue
		}

		if !e.kind.Registry().Delete(device.MAC) {
			continue
		}

		removed = true

		e.logger.Info().
			Str("mac", device.MAC).
			Str("kind", e.kind.LogContext()).
			Dur("stale_for", elapsed).
			Msg("Removed stale device")

		e.emit(models.NewDeviceEvent(models.RemovedEvent(e.kind.Name()), device))
	}

	if removed {
		e.persist(ctx)
	}
}

// persist writes the registry through the kind's store. Failures are logged
// and swallowed; the in-memory registry stays authoritative until the next
// successful write.
func (e *Engine) persist(ctx context.Context) {
	if err := e.kind.Persist(ctx); err != nil {
		e.logger.Error().
			Err(err).
			Str("kind", e.kind.LogContext()).
			Msg("Failed to persist device registry")
	}
}

// emit delivers one event to the configured callback, isolating panics so a
// misbehaving sink cannot destabilize the monitor.
func (e *Engine) emit(event models.DeviceEvent) {
	if e.onEvent == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Str("mac", event.Device.MAC).
				Msg("Event callback panicked")
		}
	}()

	e.onEvent(event)
}
