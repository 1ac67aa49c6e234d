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

// Package shelly talks to first-generation Shelly smart plugs over their
// local HTTP API. Only the read-only status endpoint is used here; relay
// control belongs to external actuation logic.
package shelly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

var (
	errUnexpectedStatus = errors.New("plug returned unexpected HTTP status")
	errMissingRelays    = errors.New("plug status response missing relay state")
)

// Relay is the state of one output channel.
type Relay struct {
	IsOn           bool   `json:"ison"`
	HasTimer       bool   `json:"has_timer,omitempty"`
	Overpower      bool   `json:"overpower,omitempty"`
	Source         string `json:"source,omitempty"`
	TimerRemaining int    `json:"timer_remaining,omitempty"`
}

// Status is the subset of the /status document the appliance reads. A
// healthy plug always reports at least one relay; the relay list is the
// reachability criterion.
type Status struct {
	Relays          []Relay `json:"relays"`
	Uptime          int64   `json:"uptime,omitempty"`
	HasUpdate       bool    `json:"has_update,omitempty"`
	MAC             string  `json:"mac,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	OverTemperature bool    `json:"overtemperature,omitempty"`
}

// Client is a shared HTTP client for all plugs; the device IP is supplied
// per call.
type Client struct {
	http   *resty.Client
	logger logger.Logger
}

func NewClient(timeout time.Duration, log logger.Logger) *Client {
	r := resty.New()
	r.SetTimeout(timeout)
	r.SetHeader("Accept", "application/json")

	return &Client{
		http:   r,
		logger: log,
	}
}

// Status fetches http://<ip>/status. It fails on any network error, non-2xx
// response, undecodable body, or a body without relay state.
func (c *Client) Status(ctx context.Context, ip string) (*Status, error) {
	var status Status

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&status).
		Get(fmt.Sprintf("http://%s/status", ip))
	if err != nil {
		return nil, fmt.Errorf("plug status request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode())
	}

	if len(status.Relays) == 0 {
		return nil, errMissingRelays
	}

	return &status, nil
}
