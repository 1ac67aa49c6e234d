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

// Package registry holds the live device collection shared between the
// heartbeat monitors, on-demand checks, and external registration.
package registry

import (
	"sort"
	"sync"

	"github.com/trapwatch/trapwatch/pkg/models"
)

// Registry is a guarded device map keyed by MAC address. All mutation paths
// (status update, eviction, external registration) go through the same lock;
// the collection itself is never handed out, only value copies.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]models.Device
}

func New() *Registry {
	return &Registry{
		devices: make(map[string]models.Device),
	}
}

// Len returns the number of devices currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.devices)
}

// Get returns a copy of the device for mac.
func (r *Registry) Get(mac string) (models.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[mac]

	return device, ok
}

// Upsert inserts or overwrites the device keyed by its MAC.
func (r *Registry) Upsert(device models.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[device.MAC] = device
}

// Update mutates the device for mac in place under the registry lock.
// It returns false, without calling fn, when the key is no longer present.
func (r *Registry) Update(mac string, fn func(device *models.Device)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[mac]
	if !ok {
		return false
	}

	fn(&device)
	device.MAC = mac // identity is immutable

	r.devices[mac] = device

	return true
}

// Delete removes the device for mac. It reports whether a device was removed.
func (r *Registry) Delete(mac string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[mac]; !ok {
		return false
	}

	delete(r.devices, mac)

	return true
}

// MACs returns the registered keys in sorted order.
func (r *Registry) MACs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	macs := make([]string, 0, len(r.devices))
	for mac := range r.devices {
		macs = append(macs, mac)
	}

	sort.Strings(macs)

	return macs
}

// Snapshot returns value copies of every device, sorted by MAC. Later
// registry mutations are not visible through the returned slice.
func (r *Registry) Snapshot() []models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]models.Device, 0, len(r.devices))
	for _, device := range r.devices {
		devices = append(devices, device)
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].MAC < devices[j].MAC
	})

	return devices
}

// Replace swaps in a full device list. Used only when seeding from the
// settings store at startup; the monitors never call this.
func (r *Registry) Replace(devices []models.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices = make(map[string]models.Device, len(devices))
	for _, device := range devices {
		r.devices[device.MAC] = device
	}
}
