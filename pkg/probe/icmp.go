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
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

const (
	listenAddress = "0.0.0.0"
	protocolICMP  = 1
	maxPacketSize = 1500
)

// ICMPProber tests reachability with a single echo request. Raw ICMP sockets
// need CAP_NET_RAW; when the capability is missing the prober falls back to
// the system ping binary. Tool absent or timeout both resolve to unreachable.
type ICMPProber struct {
	timeout  time.Duration
	logger   logger.Logger
	id       int
	fallback bool

	mu  sync.Mutex
	seq int
}

var _ Prober = (*ICMPProber)(nil)

func NewICMPProber(timeout time.Duration, log logger.Logger) *ICMPProber {
	p := &ICMPProber{
		timeout: timeout,
		logger:  log,
		id:      os.Getpid() & 0xffff,
	}

	conn, err := icmp.ListenPacket("ip4:icmp", listenAddress)
	if err != nil {
		p.fallback = true

		log.Warn().
			Err(err).
			Msg("Raw ICMP socket unavailable, falling back to system ping")

		return p
	}

	if err := conn.Close(); err != nil {
		log.Debug().Err(err).Msg("failed to close capability check socket")
	}

	return p
}

func (p *ICMPProber) Probe(ctx context.Context, ip string) bool {
	if p.fallback {
		return p.pingExec(ctx, ip)
	}

	ok, err := p.echo(ctx, ip)
	if err != nil {
		p.logger.Debug().
			Str("ip", ip).
			Err(err).
			Msg("ICMP probe failed")

		return false
	}

	return ok
}

func (p *ICMPProber) nextSeq() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq = (p.seq + 1) & 0xffff

	return p.seq
}

// echo sends one request and waits for a matching reply. A read timeout is
// an unreachable device, not an error.
func (p *ICMPProber) echo(ctx context.Context, ip string) (bool, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", listenAddress)
	if err != nil {
		return false, err
	}

	defer func() {
		if err := conn.Close(); err != nil {
			p.logger.Debug().Err(err).Msg("failed to close ICMP socket")
		}
	}()

	dst, err := net.ResolveIPAddr("ip4", ip)
	if err != nil {
		return false, err
	}

	seq := p.nextSeq()

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: []byte("trapwatch-probe"),
		},
	}

	wire, err := msg.Marshal(nil)
	if err != nil {
		return false, err
	}

	if _, err := conn.WriteTo(wire, dst); err != nil {
		return false, err
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return false, err
	}

	buf := make([]byte, maxPacketSize)

	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			// Deadline elapsed without a matching reply.
			return false, nil
		}

		parsed, err := icmp.ParseMessage(protocolICMP, buf[:n])
		if err != nil {
			continue
		}

		if parsed.Type != ipv4.ICMPTypeEchoReply {
			continue
		}

		reply, ok := parsed.Body.(*icmp.Echo)
		if !ok {
			continue
		}

		if reply.ID == p.id && reply.Seq == seq && peer.String() == dst.String() {
			return true, nil
		}
	}
}

func (p *ICMPProber) pingExec(ctx context.Context, ip string) bool {
	if _, err := exec.LookPath("ping"); err != nil {
		p.logger.Debug().Err(err).Msg("ping binary not found")
		return false
	}

	waitSecs := int(p.timeout.Seconds())
	if waitSecs < 1 {
		waitSecs = 1
	}

	// One extra second so the binary's own timeout fires first.
	cmdCtx, cancel := context.WithTimeout(ctx, p.timeout+time.Second)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "ping", "-c", "1", "-W", strconv.Itoa(waitSecs), ip)

	if err := cmd.Run(); err != nil {
		p.logger.Debug().
			Str("ip", ip).
			Err(err).
			Msg("ping probe failed")

		return false
	}

	return true
}
