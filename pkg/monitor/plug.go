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

	"github.com/trapwatch/trapwatch/pkg/models"
	"github.com/trapwatch/trapwatch/pkg/probe"
	"github.com/trapwatch/trapwatch/pkg/registry"
)

// PlugStore is the slice of the settings store the plug kind persists
// through.
type PlugStore interface {
	SavePlugs(ctx context.Context, devices []models.Device) error
}

// PlugKind monitors smart plugs through their HTTP status endpoint. The
// plug's Mode field is owned by external control logic; nothing in this kind
// or the engine touches it, so it rides through every persisted write
// unchanged.
type PlugKind struct {
	prober   probe.Prober
	registry *registry.Registry
	store    PlugStore
}

var _ Kind = (*PlugKind)(nil)

func NewPlugKind(prober probe.Prober, reg *registry.Registry, store PlugStore) *PlugKind {
	return &PlugKind{
		prober:   prober,
		registry: reg,
		store:    store,
	}
}

func (k *PlugKind) Name() models.DeviceKind {
	return models.KindPlug
}

func (k *PlugKind) Probe(ctx context.Context, ip string) bool {
	return k.prober.Probe(ctx, ip)
}

func (k *PlugKind) Registry() *registry.Registry {
	return k.registry
}

func (k *PlugKind) Persist(ctx context.Context) error {
	return k.store.SavePlugs(ctx, k.registry.Snapshot())
}

func (k *PlugKind) LogContext() string {
	return "plug"
}
