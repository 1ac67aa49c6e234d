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

package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log, err := New(&Config{Level: "debug", Output: "stdout"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if log == nil {
		t.Fatal("New returned a nil logger")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "shouting"})
	if err == nil {
		t.Fatal("Expected an error for an unknown level")
	}
}

func TestNewNilConfigUsesDefaults(t *testing.T) {
	log, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create logger with nil config: %v", err)
	}

	if log == nil {
		t.Fatal("New returned a nil logger")
	}
}

func TestNewComponent(t *testing.T) {
	log, err := NewComponent(nil, "monitor")
	if err != nil {
		t.Fatalf("Failed to create component logger: %v", err)
	}

	sub := log.WithComponent("watcher")
	if sub.GetLevel() == zerolog.Disabled {
		t.Error("Component logger should not be disabled")
	}
}

func TestSetDebug(t *testing.T) {
	log, err := New(&Config{Level: "info"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	impl := log.(*instance)

	log.SetDebug(true)

	if impl.logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level after SetDebug(true), got %v", impl.logger.GetLevel())
	}

	log.SetDebug(false)

	if impl.logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level after SetDebug(false), got %v", impl.logger.GetLevel())
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Level == "" {
		t.Error("Default config should have a level set")
	}

	if config.Output == "" {
		t.Error("Default config should have an output set")
	}
}

func TestTestLoggerDiscards(t *testing.T) {
	log := NewTestLogger()

	// Must not panic or write anywhere.
	log.Info().Str("key", "value").Msg("discarded")
	log.Error().Msg("discarded")
}
