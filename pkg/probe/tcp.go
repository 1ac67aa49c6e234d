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

package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

// TCPProber tests reachability with a bounded TCP connect to a fixed port.
type TCPProber struct {
	port    int
	timeout time.Duration
	logger  logger.Logger
}

var _ Prober = (*TCPProber)(nil)

func NewTCPProber(port int, timeout time.Duration, log logger.Logger) *TCPProber {
	return &TCPProber{
		port:    port,
		timeout: timeout,
		logger:  log,
	}
}

func (p *TCPProber) Probe(ctx context.Context, ip string) bool {
	// Per-probe timeout context that respects both parent context and timeout.
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var dialer net.Dialer

	conn, err := dialer.DialContext(probeCtx, "tcp", net.JoinHostPort(ip, strconv.Itoa(p.port)))
	if err != nil {
		p.logger.Debug().
			Str("ip", ip).
			Int("port", p.port).
			Err(err).
			Msg("TCP probe failed")

		return false
	}

	if err := conn.Close(); err != nil {
		p.logger.Debug().Err(err).Msg("failed to close probe connection")
	}

	return true
}
