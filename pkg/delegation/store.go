// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package delegation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store persists evidence documents.
type Store interface {
	Put(ctx context.Context, ev *Evidence) error
	List(ctx context.Context) ([]*Evidence, error)
	Name() string
}

// MemoryStore keeps evidence in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	notifyMu  sync.Mutex
	evidences []*Evidence
	onChange  func([]*Evidence)
	logger    *PolicyLogger
}

// NewMemoryStore creates an empty store. onChange, if set, receives the full
// evidence list after every Put. Calls are serialized in the order the
// changes were applied; onChange must not call back into the store.
func NewMemoryStore(onChange func([]*Evidence)) *MemoryStore {
	return &MemoryStore{onChange: onChange, logger: NewPolicyLogger()}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Put(ctx context.Context, ev *Evidence) error {
	if result := Validate(ev); !result.IsValid() {
		return result.Err()
	}
	s.mu.Lock()
	s.evidences = append(s.evidences, ev)
	snapshot := append([]*Evidence(nil), s.evidences...)
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.logger.LogEvidenceStored(ctx, s.Name(), ev, nil)
	notify(&s.notifyMu, s.onChange, snapshot)
	return nil
}

// notify hands snapshot to onChange and releases held, which the caller
// acquired before dropping the store lock.
func notify(held *sync.Mutex, onChange func([]*Evidence), snapshot []*Evidence) {
	defer held.Unlock()
	if onChange != nil {
		onChange(snapshot)
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]*Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Evidence(nil), s.evidences...), nil
}

// FileDocument is the on-disk layout of a FileStore.
type FileDocument struct {
	Version   string      `json:"version"`
	Evidences []*Evidence `json:"evidences"`
}

// FileStoreVersion is written to new evidence files.
const FileStoreVersion = "1.0.0"

// FileStore keeps evidence in a JSON file. Changes made by other processes
// are picked up when the file's modification time advances.
type FileStore struct {
	path        string
	evidences   []*Evidence
	lastModTime time.Time
	onChange    func([]*Evidence)
	logger      *PolicyLogger
	mu          sync.RWMutex
	notifyMu    sync.Mutex
}

// NewFileStore opens (or creates on first Put) the evidence file at path.
func NewFileStore(path string, onChange func([]*Evidence)) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	s := &FileStore{path: path, onChange: onChange, logger: NewPolicyLogger()}
	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load evidence file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Name() string { return "file" }

// Path returns the evidence file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Put(ctx context.Context, ev *Evidence) error {
	if result := Validate(ev); !result.IsValid() {
		return result.Err()
	}
	if err := s.reloadIfNeeded(); err != nil {
		return err
	}

	s.mu.Lock()
	next := append(append([]*Evidence(nil), s.evidences...), ev)
	if err := SaveFile(s.path, &FileDocument{Version: FileStoreVersion, Evidences: next}); err != nil {
		s.mu.Unlock()
		s.logger.LogEvidenceStored(ctx, s.Name(), ev, err)
		return err
	}
	s.evidences = next
	if stat, err := os.Stat(s.path); err == nil {
		s.lastModTime = stat.ModTime()
	}
	snapshot := append([]*Evidence(nil), next...)
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.logger.LogEvidenceStored(ctx, s.Name(), ev, nil)
	notify(&s.notifyMu, s.onChange, snapshot)
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]*Evidence, error) {
	if err := s.reloadIfNeeded(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Evidence(nil), s.evidences...), nil
}

// Watch reloads the file every interval until ctx is cancelled.
func (s *FileStore) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.reloadIfNeeded(); err != nil {
				s.logger.LogPolicyConfigChange(s.path, 0, err)
			}
		}
	}
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read evidence file: %w", err)
	}

	var doc FileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse evidence file: %w", err)
	}
	for i, ev := range doc.Evidences {
		if result := Validate(ev); !result.IsValid() {
			return fmt.Errorf("evidence %d: %w", i, result.Err())
		}
	}

	s.mu.Lock()
	s.evidences = doc.Evidences
	if stat, err := os.Stat(s.path); err == nil {
		s.lastModTime = stat.ModTime()
	}
	snapshot := append([]*Evidence(nil), doc.Evidences...)
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.logger.LogPolicyConfigChange(s.path, len(snapshot), nil)
	notify(&s.notifyMu, s.onChange, snapshot)
	return nil
}

func (s *FileStore) reloadIfNeeded() error {
	stat, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.RLock()
	stale := stat.ModTime().After(s.lastModTime)
	s.mu.RUnlock()
	if stale {
		return s.load()
	}
	return nil
}

// SaveFile writes doc to path, replacing any existing file atomically.
func SaveFile(path string, doc *FileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create evidence directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".evidence-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write evidence file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write evidence file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace evidence file: %w", err)
	}
	return nil
}
