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
	"fmt"
	"time"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

const (
	DefaultMonitorInterval   = 60 * time.Second
	DefaultAutoRemoveAfter   = 24 * time.Hour
	DefaultTCPPort           = 80
	DefaultTCPTimeout        = 3 * time.Second
	DefaultICMPTimeout       = 2 * time.Second
	DefaultHTTPTimeout       = 5 * time.Second
	DefaultPollInterval      = 1 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultStabilityTimeout  = 60 * time.Second
	DefaultStabilityInterval = 1 * time.Second
	DefaultClassifyTimeout   = 2 * time.Minute
	DefaultScoreThreshold    = 0.5
)

// CheckMethod selects how a camera is probed.
type CheckMethod string

const (
	CheckMethodICMP CheckMethod = "icmp"
	CheckMethodTCP  CheckMethod = "tcp"
	CheckMethodBoth CheckMethod = "both"
)

// WatchMethod selects how a folder detects new files.
type WatchMethod string

const (
	WatchMethodWatchdog WatchMethod = "watchdog"
	WatchMethodPoll     WatchMethod = "poll"
)

var (
	errSettingsFileRequired      = fmt.Errorf("settings_file is required")
	errFolderPathRequired        = fmt.Errorf("folder path is required")
	errInvalidWatchMethod        = fmt.Errorf("invalid watch method")
	errClassifierCommandRequired = fmt.Errorf("pipeline classifier_command is required")
	errNegativeScoreThreshold    = fmt.Errorf("pipeline score_threshold must not be negative")
)

// MonitorConfig is the shared heartbeat engine configuration.
type MonitorConfig struct {
	Enabled         bool     `json:"enabled"`
	Interval        Duration `json:"interval"`
	AutoRemove      bool     `json:"auto_remove"`
	AutoRemoveAfter Duration `json:"auto_remove_after"`
}

func (c *MonitorConfig) Validate() error {
	if c.Interval <= 0 {
		c.Interval = Duration(DefaultMonitorInterval)
	}

	if c.AutoRemoveAfter <= 0 {
		c.AutoRemoveAfter = Duration(DefaultAutoRemoveAfter)
	}

	return nil
}

// CameraCheckConfig selects and bounds the camera reachability probes.
// CheckMethod is kept as written here; an invalid value falls back to tcp
// with a warning when the prober is built.
type CameraCheckConfig struct {
	CheckMethod CheckMethod `json:"check_method"`
	TCPPort     int         `json:"tcp_port"`
	TCPTimeout  Duration    `json:"tcp_timeout"`
	ICMPTimeout Duration    `json:"icmp_timeout"`
}

func (c *CameraCheckConfig) Validate() error {
	if c.CheckMethod == "" {
		c.CheckMethod = CheckMethodTCP
	}

	if c.TCPPort <= 0 || c.TCPPort > 65535 {
		c.TCPPort = DefaultTCPPort
	}

	if c.TCPTimeout <= 0 {
		c.TCPTimeout = Duration(DefaultTCPTimeout)
	}

	if c.ICMPTimeout <= 0 {
		c.ICMPTimeout = Duration(DefaultICMPTimeout)
	}

	return nil
}

// PlugCheckConfig bounds the plug status probe.
type PlugCheckConfig struct {
	HTTPTimeout Duration `json:"http_timeout"`
}

func (c *PlugCheckConfig) Validate() error {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = Duration(DefaultHTTPTimeout)
	}

	return nil
}

// CameraMonitorConfig configures the camera heartbeat monitor.
type CameraMonitorConfig struct {
	MonitorConfig
	CameraCheckConfig
}

func (c *CameraMonitorConfig) Validate() error {
	if err := c.MonitorConfig.Validate(); err != nil {
		return err
	}

	return c.CameraCheckConfig.Validate()
}

// PlugMonitorConfig configures the plug heartbeat monitor.
type PlugMonitorConfig struct {
	MonitorConfig
	PlugCheckConfig
}

func (c *PlugMonitorConfig) Validate() error {
	if err := c.MonitorConfig.Validate(); err != nil {
		return err
	}

	return c.PlugCheckConfig.Validate()
}

// WatchFolderConfig is one directory under observation.
type WatchFolderConfig struct {
	Path         string      `json:"path"`
	Method       WatchMethod `json:"method"`
	PollInterval Duration    `json:"poll_interval"`
}

func (c *WatchFolderConfig) Validate() error {
	if c.Path == "" {
		return errFolderPathRequired
	}

	switch c.Method {
	case "":
		c.Method = WatchMethodWatchdog
	case WatchMethodWatchdog, WatchMethodPoll:
	default:
		return fmt.Errorf("%w: %q", errInvalidWatchMethod, c.Method)
	}

	if c.PollInterval <= 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}

	return nil
}

// PipelineConfig configures the single-slot classification pipeline.
type PipelineConfig struct {
	ClassifierCommand []string `json:"classifier_command"`
	ClassifyTimeout   Duration `json:"classify_timeout"`
	ScoreThreshold    float64  `json:"score_threshold"`
	SettleDelay       Duration `json:"settle_delay"`
	StabilityTimeout  Duration `json:"stability_timeout"`
	StabilityInterval Duration `json:"stability_interval"`
}

func (c *PipelineConfig) Validate() error {
	if len(c.ClassifierCommand) == 0 {
		return errClassifierCommandRequired
	}

	if c.ScoreThreshold < 0 {
		return errNegativeScoreThreshold
	}

	if c.ScoreThreshold == 0 {
		c.ScoreThreshold = DefaultScoreThreshold
	}

	if c.ClassifyTimeout <= 0 {
		c.ClassifyTimeout = Duration(DefaultClassifyTimeout)
	}

	if c.SettleDelay <= 0 {
		c.SettleDelay = Duration(DefaultSettleDelay)
	}

	if c.StabilityTimeout <= 0 {
		c.StabilityTimeout = Duration(DefaultStabilityTimeout)
	}

	if c.StabilityInterval <= 0 {
		c.StabilityInterval = Duration(DefaultStabilityInterval)
	}

	return nil
}

// Config is the root appliance configuration.
type Config struct {
	Logging       *logger.Config      `json:"logging,omitempty"`
	SettingsFile  string              `json:"settings_file"`
	HistoryDB     string              `json:"history_db,omitempty"`
	CameraMonitor CameraMonitorConfig `json:"camera_monitor"`
	PlugMonitor   PlugMonitorConfig   `json:"plug_monitor"`
	Folders       []WatchFolderConfig `json:"folders"`
	Pipeline      PipelineConfig      `json:"pipeline"`
}

func (c *Config) Validate() error {
	if c.SettingsFile == "" {
		return errSettingsFileRequired
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	if err := c.CameraMonitor.Validate(); err != nil {
		return fmt.Errorf("camera_monitor: %w", err)
	}

	if err := c.PlugMonitor.Validate(); err != nil {
		return fmt.Errorf("plug_monitor: %w", err)
	}

	for i := range c.Folders {
		if err := c.Folders[i].Validate(); err != nil {
			return fmt.Errorf("folders[%d]: %w", i, err)
		}
	}

	// The pipeline only runs when folders are observed.
	if len(c.Folders) > 0 {
		if err := c.Pipeline.Validate(); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
	}

	return nil
}
