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

// CameraStore is the slice of the settings store the camera kind persists
// through.
type CameraStore interface {
	SaveCameras(ctx context.Context, devices []models.Device) error
}

// CameraKind monitors trail cameras via the configured reachability probe
// (icmp, tcp, or both).
type CameraKind struct {
	prober   probe.Prober
	registry *registry.Registry
	store    CameraStore
}

var _ Kind = (*CameraKind)(nil)

func NewCameraKind(prober probe.Prober, reg *registry.Registry, store CameraStore) *CameraKind {
	return &CameraKind{
		prober:   prober,
		registry: reg,
		store:    store,
	}
}

func (k *CameraKind) Name() models.DeviceKind {
	return models.KindCamera
}

func (k *CameraKind) Probe(ctx context.Context, ip string) bool {
	return k.prober.Probe(ctx, ip)
}

func (k *CameraKind) Registry() *registry.Registry {
	return k.registry
}

func (k *CameraKind) Persist(ctx context.Context) error {
	return k.store.SaveCameras(ctx, k.registry.Snapshot())
}

func (k *CameraKind) LogContext() string {
	return "camera"
}
