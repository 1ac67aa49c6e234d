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

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a device lifecycle event. The strings are part of the
// event-sink contract and are composed as "<kind>_<suffix>".
type EventType string

const (
	suffixStatusOnline  = "_status_changed_online"
	suffixStatusOffline = "_status_changed_offline"
	suffixRemoved       = "_removed"
)

// StatusOnlineEvent is fired when a device transitions to connected.
func StatusOnlineEvent(kind DeviceKind) EventType {
	return EventType(string(kind) + suffixStatusOnline)
}

// StatusOfflineEvent is fired when a device transitions to disconnected.
func StatusOfflineEvent(kind DeviceKind) EventType {
	return EventType(string(kind) + suffixStatusOffline)
}

// RemovedEvent is fired when a stale device is evicted from the registry.
func RemovedEvent(kind DeviceKind) EventType {
	return EventType(string(kind) + suffixRemoved)
}

// DeviceEvent is the payload delivered to the event sink. Device is a value
// snapshot taken at emission time; handlers may not observe later mutations.
type DeviceEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Device    Device    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDeviceEvent stamps a fresh event with a correlation id and emission time.
func NewDeviceEvent(eventType EventType, device Device) DeviceEvent {
	return DeviceEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Device:    device,
		Timestamp: time.Now().UTC(),
	}
}
