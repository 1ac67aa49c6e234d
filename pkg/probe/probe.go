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

// Package probe implements the reachability tests used by the heartbeat
// monitors: TCP connect, ICMP echo, and the camera composite of both.
package probe

import "context"

// Prober performs a single reachability test against a device IP. A probe
// never surfaces an error; every failure mode resolves to false.
type Prober interface {
	Probe(ctx context.Context, ip string) bool
}
