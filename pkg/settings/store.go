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

// Package settings persists the monitored device lists to the shared
// appliance settings file. The store owns only the camera and plug lists;
// every other top-level key in the file belongs to external layers and is
// carried through writes untouched.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
)

const (
	camerasKey = "cameras"
	plugsKey   = "plugs"

	fileMode = 0o600
)

// Store reads and writes device lists in the settings file. Writes are
// atomic (temp file + rename) and serialized; the store is called once per
// monitor cycle, so it must stay cheap and must never corrupt the file.
type Store struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

func NewStore(path string, log logger.Logger) *Store {
	return &Store{
		path:   path,
		logger: log,
	}
}

func (s *Store) LoadCameras(ctx context.Context) ([]models.Device, error) {
	return s.loadList(ctx, camerasKey)
}

func (s *Store) SaveCameras(ctx context.Context, devices []models.Device) error {
	return s.saveList(ctx, camerasKey, devices)
}

func (s *Store) LoadPlugs(ctx context.Context) ([]models.Device, error) {
	return s.loadList(ctx, plugsKey)
}

func (s *Store) SavePlugs(ctx context.Context, devices []models.Device) error {
	return s.saveList(ctx, plugsKey, devices)
}

func (s *Store) loadList(_ context.Context, key string) ([]models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}

	raw, ok := doc[key]
	if !ok {
		return []models.Device{}, nil
	}

	var devices []models.Device

	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", key, err)
	}

	return devices, nil
}

func (s *Store) saveList(_ context.Context, key string, devices []models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(devices)
	if err != nil {
		return fmt.Errorf("failed to encode %s list: %w", key, err)
	}

	doc[key] = raw

	return s.writeDocument(doc)
}

// readDocument returns the settings file as raw top-level entries. A missing
// file is an empty document, not an error.
func (s *Store) readDocument() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	doc := map[string]json.RawMessage{}

	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("settings file is not valid JSON: %w", err)
	}

	return doc, nil
}

func (s *Store) writeDocument(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings document: %w", err)
	}

	tmp := s.path + ".tmp"

	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	return nil
}
