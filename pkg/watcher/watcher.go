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

// Package watcher observes image folders for newly captured files. Each
// folder gets one Observer running either an fsnotify subscription or a
// polling directory diff; new files are settled, stability-checked, and
// handed to the classification dispatcher.
package watcher

//go:generate mockgen -destination=mock_watcher.go -package=watcher github.com/trapwatch/trapwatch/pkg/watcher Checker,Dispatcher

import "context"

// Checker reports whether any process currently holds path open. An error
// means the facility itself is unavailable; the stability wait treats it as
// a transient condition and retries.
type Checker interface {
	InUse(ctx context.Context, path string) (bool, error)
}

// Dispatcher receives every file that passed the stability check. Dispatch
// must return promptly; the classification work runs on its own goroutine.
type Dispatcher interface {
	Dispatch(path string)
}
