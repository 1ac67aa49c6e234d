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

package models

import "time"

// DeviceKind identifies the monitored device family.
type DeviceKind string

const (
	KindCamera DeviceKind = "camera"
	KindPlug   DeviceKind = "plug"
)

// DeviceStatus is the reachability state tracked by the heartbeat monitor.
type DeviceStatus string

const (
	StatusConnected    DeviceStatus = "connected"
	StatusDisconnected DeviceStatus = "disconnected"
)

// PlugMode is the operating mode of a smart plug. It is owned by external
// control logic; the monitor carries it through unchanged.
type PlugMode string

const (
	PlugModeOff       PlugMode = "off"
	PlugModeAutomatic PlugMode = "automatic"
	PlugModeManual    PlugMode = "manual"
)

// TimestampFormat is the wire format for LastSeen values.
const TimestampFormat = time.RFC3339

// Device is one monitored camera or smart plug. MAC is the stable identity
// key. An empty IP means the device is not checkable and is skipped by the
// monitor. LastSeen advances only on a successful probe; a failed probe must
// never touch it.
type Device struct {
	MAC      string       `json:"mac_address"`
	Hostname string       `json:"hostname"`
	IP       string       `json:"ip_address"`
	Status   DeviceStatus `json:"status"`
	LastSeen string       `json:"last_seen"`
	Mode     PlugMode     `json:"mode,omitempty"`
}

// Now returns the current time in the LastSeen wire format (UTC).
func Now() string {
	return time.Now().UTC().Format(TimestampFormat)
}

// LastSeenTime parses the LastSeen field. Records written by other tooling
// may carry unparseable values; callers must treat an error as "unknown age",
// not as a corrupt device.
func (d *Device) LastSeenTime() (time.Time, error) {
	return time.Parse(TimestampFormat, d.LastSeen)
}
