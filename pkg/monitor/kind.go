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

// Package monitor implements the device heartbeat engine: a periodic polling
// loop that probes every registered device, tracks status transitions,
// persists the registry, and evicts devices that have been unreachable for
// too long. The engine is generic over a Kind, which supplies the
// device-family specifics (how to probe, which registry, how to persist).
package monitor

//go:generate mockgen -destination=mock_monitor.go -package=monitor github.com/trapwatch/trapwatch/pkg/monitor Kind

import (
	"context"

	"github.com/trapwatch/trapwatch/pkg/models"
	"github.com/trapwatch/trapwatch/pkg/registry"
)

// Kind supplies the device-family capabilities the engine is parameterized
// by. Probe must never surface an error; every failure resolves to false.
type Kind interface {
	// Name identifies the family and prefixes the emitted event types.
	Name() models.DeviceKind

	// Probe runs one reachability test against ip.
	Probe(ctx context.Context, ip string) bool

	// Registry exposes the live device collection shared with external
	// registration and on-demand checks.
	Registry() *registry.Registry

	// Persist writes the current registry to the device store.
	Persist(ctx context.Context) error

	// LogContext is a short diagnostic description of the kind.
	LogContext() string
}
