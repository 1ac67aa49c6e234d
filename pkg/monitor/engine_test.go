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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
	"github.com/trapwatch/trapwatch/pkg/registry"
)

type eventSink struct {
	mu     sync.Mutex
	events []models.DeviceEvent
}

func (s *eventSink) record(event models.DeviceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
}

func (s *eventSink) all() []models.DeviceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.DeviceEvent, len(s.events))
	copy(out, s.events)

	return out
}

func newMockKind(t *testing.T, reg *registry.Registry) *MockKind {
	t.Helper()

	ctrl := gomock.NewController(t)
	kind := NewMockKind(ctrl)

	kind.EXPECT().Name().Return(models.KindCamera).AnyTimes()
	kind.EXPECT().LogContext().Return("camera").AnyTimes()
	kind.EXPECT().Registry().Return(reg).AnyTimes()

	return kind
}

func newTestEngine(t *testing.T, kind Kind, cfg models.MonitorConfig, sink *eventSink) *Engine {
	t.Helper()

	var onEvent func(models.DeviceEvent)
	if sink != nil {
		onEvent = sink.record
	}

	engine, err := NewEngine(Options{
		Kind:    kind,
		Config:  cfg,
		OnEvent: onEvent,
		Logger:  logger.NewTestLogger(),
	})
	require.NoError(t, err)

	return engine
}

func TestFailedProbeNeverAdvancesLastSeen(t *testing.T) {
	reg := registry.New()
	lastSeen := time.Now().UTC().Add(-time.Hour).Format(models.TimestampFormat)
	reg.Upsert(models.Device{
		MAC:      "aa:bb:cc:dd:ee:01",
		IP:       "192.168.1.10",
		Status:   models.StatusConnected,
		LastSeen: lastSeen,
	})

	kind := newMockKind(t, reg)
	kind.EXPECT().Probe(gomock.Any(), "192.168.1.10").Return(false)
	kind.EXPECT().Persist(gomock.Any()).Return(nil)

	sink := &eventSink{}
	engine := newTestEngine(t, kind, models.MonitorConfig{}, sink)

	results := engine.CheckNow(context.Background())
	assert.False(t, results["aa:bb:cc:dd:ee:01"])

	device, ok := reg.Get("aa:bb:cc:dd:ee:01")
	require.True(t, ok)
	assert.Equal(t, models.StatusDisconnected, device.Status)
	assert.Equal(t, lastSeen, device.LastSeen, "a failed probe must not touch last_seen")

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusOfflineEvent(models.KindCamera), events[0].Type)
}

func TestOnlineTransitionFiresExactlyOnce(t *testing.T) {
	reg := registry.New()
	reg.Upsert(models.Device{
		MAC:    "aa:bb:cc:dd:ee:02",
		IP:     "192.168.1.11",
		Status: models.StatusDisconnected,
	})

	kind := newMockKind(t, reg)
	kind.EXPECT().Probe(gomock.Any(), "192.168.1.11").Return(true).Times(2)
	kind.EXPECT().Persist(gomock.Any()).Return(nil).Times(2)

	sink := &eventSink{}
	engine := newTestEngine(t, kind, models.MonitorConfig{}, sink)

	engine.CheckNow(context.Background())

	device, ok := reg.Get("aa:bb:cc:dd:ee:02")
	require.True(t, ok)
	assert.Equal(t, models.StatusConnected, device.Status)
	assert.NotEmpty(t, device.LastSeen)

	firstSeen := device.LastSeen

	// A second successful pass refreshes last_seen but is not a transition.
	engine.CheckNow(context.Background())

	device, _ = reg.Get("aa:bb:cc:dd:ee:02")
	parsedFirst, err := time.Parse(models.TimestampFormat, firstSeen)
	require.NoError(t, err)
	parsedSecond, err := time.Parse(models.TimestampFormat, device.LastSeen)
	require.NoError(t, err)
	assert.False(t, parsedSecond.Before(parsedFirst))

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusOnlineEvent(models.KindCamera), events[0].Type)
}

func TestCheckNowSkipsDevicesWithoutIP(t *testing.T) {
	reg := registry.New()
	reg.Upsert(models.Device{
		MAC:    "aa:bb:cc:dd:ee:03",
		Status: models.StatusDisconnected,
	})

	// No Probe or Persist expectations: probing an IP-less device would
	// fail the mock controller.
	kind := newMockKind(t, reg)

	engine := newTestEngine(t, kind, models.MonitorConfig{}, nil)

	results := engine.CheckNow(context.Background())
	require.Len(t, results, 1)
	assert.False(t, results["aa:bb:cc:dd:ee:03"])

	device, ok := reg.Get("aa:bb:cc:dd:ee:03")
	require.True(t, ok)
	assert.Equal(t, models.StatusDisconnected, device.Status)
	assert.Empty(t, device.LastSeen)
}

func TestEvictionRemovesStaleDeviceWhenEnabled(t *testing.T) {
	reg := registry.New()
	reg.Upsert(models.Device{
		MAC:      "aa:bb:cc:dd:ee:04",
		IP:       "192.168.1.12",
		Status:   models.StatusDisconnected,
		LastSeen: time.Now().UTC().Add(-25 * time.Hour).Format(models.TimestampFormat),
	})

	kind := newMockKind(t, reg)
	kind.EXPECT().Probe(gomock.Any(), "192.168.1.12").Return(false)
	kind.EXPECT().Persist(gomock.Any()).Return(nil)

	sink := &eventSink{}
	engine := newTestEngine(t, kind, models.MonitorConfig{
		AutoRemove:      true,
		AutoRemoveAfter: models.Duration(24 * time.Hour),
	}, sink)

	engine.runCycle(context.Background())

	_, ok := reg.Get("aa:bb:cc:dd:ee:04")
	assert.False(t, ok, "stale device must be evicted")

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.RemovedEvent(models.KindCamera), events[0].Type)
	assert.Equal(t, "aa:bb:cc:dd:ee:04", events[0].Device.MAC)
}

func TestEvictionDisabledKeepsStaleDevice(t *testing.T) {
	reg := registry.New()
	reg.Upsert(models.Device{
		MAC:      "aa:bb:cc:dd:ee:05",
		IP:       "192.168.1.13",
		Status:   models.StatusDisconnected,
		LastSeen: time.Now().UTC().Add(-48 * time.Hour).Format(models.TimestampFormat),
	})

	kind := newMockKind(t, reg)
	kind.EXPECT().Probe(gomock.Any(), "192.168.1.13").Return(false).Times(3)

	sink := &eventSink{}
	engine := newTestEngine(t, kind, models.MonitorConfig{
		AutoRemove:      false,
		AutoRemoveAfter: models.Duration(24 * time.Hour),
	}, sink)

	for i := 0; i < 3; i++ {
		engine.runCycle(context.Background())
	}

	_, ok := reg.Get("aa:bb:cc:dd:ee:05")
	assert.True(t, ok, "device must survive arbitrarily many cycles with auto-remove off")
	assert.Empty(t, sink.all())
}

func TestEvictionSkipsUnparseableLastSeen(t *testing.T) {
	reg := registry.New()
	reg.Upsert(models.Device{
		MAC:      "aa:bb:cc:dd:ee:06",
		Status:   models.StatusDisconnected,
		LastSeen: "not-a-timestamp",
	})

	kind := newMockKind(t, reg)

	engine := newTestEngine(t, kind, models.MonitorConfig{
		AutoRemove:      true,
		AutoRemoveAfter: models.Duration(24 * time.Hour),
	}, nil)

	engine.runCycle(context.Background())

	_, ok := reg.Get("aa:bb:cc:dd:ee:06")
	assert.True(t, ok)
}

func TestPersistFailureDoesNotAbortCycle(t *testing.T) {
	reg := registry.New()
	reg.Upsert(models.Device{
		MAC:    "aa:bb:cc:dd:ee:07",
		IP:     "192.168.1.14",
		Status: models.StatusDisconnected,
	})

	kind := newMockKind(t, reg)
	kind.EXPECT().Probe(gomock.Any(), "192.168.1.14").Return(true)
	kind.EXPECT().Persist(gomock.Any()).Return(assert.AnError)

	engine := newTestEngine(t, kind, models.MonitorConfig{}, nil)

	require.NotPanics(t, func() {
		engine.runCycle(context.Background())
	})

	device, ok := reg.Get("aa:bb:cc:dd:ee:07")
	require.True(t, ok)
	assert.Equal(t, models.StatusConnected, device.Status)
}

func TestEventCallbackPanicIsIsolated(t *testing.T) {
	reg := registry.New()
	reg.Upsert(models.Device{
		MAC:    "aa:bb:cc:dd:ee:08",
		IP:     "192.168.1.15",
		Status: models.StatusDisconnected,
	})

	kind := newMockKind(t, reg)
	kind.EXPECT().Probe(gomock.Any(), "192.168.1.15").Return(true)
	kind.EXPECT().Persist(gomock.Any()).Return(nil)

	engine, err := NewEngine(Options{
		Kind:    kind,
		Config:  models.MonitorConfig{},
		OnEvent: func(models.DeviceEvent) { panic("sink blew up") },
		Logger:  logger.NewTestLogger(),
	})
	require.NoError(t, err)

	require.NotPanics(t, func() {
		engine.CheckNow(context.Background())
	})

	device, ok := reg.Get("aa:bb:cc:dd:ee:08")
	require.True(t, ok)
	assert.Equal(t, models.StatusConnected, device.Status)
}

func TestStartIsIdempotent(t *testing.T) {
	reg := registry.New()
	kind := newMockKind(t, reg)

	engine := newTestEngine(t, kind, models.MonitorConfig{
		Enabled:  true,
		Interval: models.Duration(time.Hour),
	}, nil)

	ctx := context.Background()

	require.NoError(t, engine.Start(ctx))
	require.NoError(t, engine.Start(ctx))

	require.NoError(t, engine.Stop(ctx))
	require.NoError(t, engine.Stop(ctx))
}

func TestStopReturnsWithinJoinBound(t *testing.T) {
	reg := registry.New()
	kind := newMockKind(t, reg)

	engine := newTestEngine(t, kind, models.MonitorConfig{
		Enabled:  true,
		Interval: models.Duration(time.Hour),
	}, nil)

	ctx := context.Background()
	require.NoError(t, engine.Start(ctx))

	start := time.Now()
	require.NoError(t, engine.Stop(ctx))
	assert.Less(t, time.Since(start), joinTimeout+time.Second)
}

func TestDisabledEngineNeverSpawns(t *testing.T) {
	reg := registry.New()
	reg.Upsert(models.Device{
		MAC:    "aa:bb:cc:dd:ee:09",
		IP:     "192.168.1.16",
		Status: models.StatusDisconnected,
	})

	// No Probe expectation: a disabled engine must never run a cycle.
	kind := newMockKind(t, reg)

	engine := newTestEngine(t, kind, models.MonitorConfig{
		Enabled:  false,
		Interval: models.Duration(10 * time.Millisecond),
	}, nil)

	ctx := context.Background()
	require.NoError(t, engine.Start(ctx))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, engine.Stop(ctx))
}

func TestConcurrentRemovalDuringUpdateIsNoOp(t *testing.T) {
	reg := registry.New()

	kind := newMockKind(t, reg)

	engine := newTestEngine(t, kind, models.MonitorConfig{}, nil)

	// The device vanished between the snapshot and the update.
	require.NotPanics(t, func() {
		engine.applyStatus(context.Background(), "aa:bb:cc:dd:ee:0a", true)
	})
}
