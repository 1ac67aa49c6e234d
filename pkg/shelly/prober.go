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

package shelly

import (
	"context"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/probe"
)

// StatusClient is the slice of Client the prober needs.
type StatusClient interface {
	Status(ctx context.Context, ip string) (*Status, error)
}

var _ StatusClient = (*Client)(nil)

// Prober maps the plug status call onto the reachability interface: any
// status error resolves to unreachable.
type Prober struct {
	client StatusClient
	logger logger.Logger
}

var _ probe.Prober = (*Prober)(nil)

func NewProber(client StatusClient, log logger.Logger) *Prober {
	return &Prober{
		client: client,
		logger: log,
	}
}

func (p *Prober) Probe(ctx context.Context, ip string) bool {
	if _, err := p.client.Status(ctx, ip); err != nil {
		p.logger.Debug().
			Str("ip", ip).
			Err(err).
			Msg("plug probe failed")

		return false
	}

	return true
}
