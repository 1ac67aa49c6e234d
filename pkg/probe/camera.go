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
	"time"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
)

// ParseCheckMethod normalizes a configured camera check method. An empty
// value is the tcp default; an unknown value falls back to tcp with a
// warning rather than failing construction.
func ParseCheckMethod(raw models.CheckMethod, log logger.Logger) models.CheckMethod {
	switch raw {
	case "":
		return models.CheckMethodTCP
	case models.CheckMethodICMP, models.CheckMethodTCP, models.CheckMethodBoth:
		return raw
	default:
		log.Warn().
			Str("check_method", string(raw)).
			Msg("Unknown check method, falling back to tcp")

		return models.CheckMethodTCP
	}
}

// NewCameraProber builds the camera prober selected by cfg. For "both" the
// echo probe runs first (cheaper) and a TCP connect is the fallback.
func NewCameraProber(cfg models.CameraCheckConfig, log logger.Logger) Prober {
	switch ParseCheckMethod(cfg.CheckMethod, log) {
	case models.CheckMethodICMP:
		return NewICMPProber(time.Duration(cfg.ICMPTimeout), log)
	case models.CheckMethodBoth:
		return &fallbackProber{
			primary:   NewICMPProber(time.Duration(cfg.ICMPTimeout), log),
			secondary: NewTCPProber(cfg.TCPPort, time.Duration(cfg.TCPTimeout), log),
		}
	default:
		return NewTCPProber(cfg.TCPPort, time.Duration(cfg.TCPTimeout), log)
	}
}

// fallbackProber reports reachable if either probe succeeds.
type fallbackProber struct {
	primary   Prober
	secondary Prober
}

var _ Prober = (*fallbackProber)(nil)

func (p *fallbackProber) Probe(ctx context.Context, ip string) bool {
	if p.primary.Probe(ctx, ip) {
		return true
	}

	return p.secondary.Probe(ctx, ip)
}
