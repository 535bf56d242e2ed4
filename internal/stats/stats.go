// Package stats keeps the service's usage counters in a single JSON file.
// Increments are best-effort: the synthesis flow never fails because a
// counter could not be written.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Origin classifies where a synthesis request came from.
type Origin string

const (
	OriginAPI Origin = "API"
	OriginUI  Origin = "UI"
)

// Counters is the persisted record. Total always equals API + UI.
type Counters struct {
	Total int `json:"total"`
	API   int `json:"api"`
	UI    int `json:"ui"`
}

// Store is a file-backed counter set. The mutex serializes writers within
// this process; concurrent writers in other processes can still lose
// updates, an accepted weakness of the single-file design.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store persisting to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the current counters. A missing or corrupt file reads as all
// zeroes rather than failing.
func (s *Store) Load() Counters {
	var c Counters
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Counters{}
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Counters{}
	}
	return c
}

// Increment bumps total plus the counter matching origin and persists the
// result. The file is replaced via rename so a concurrent reader never
// observes a half-written record. On error the previously persisted state
// is left untouched.
func (s *Store) Increment(origin Origin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.Load()
	c.Total++
	if origin == OriginAPI {
		c.API++
	} else {
		c.UI++
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("stats: marshal counters: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".stats-*")
	if err != nil {
		return fmt.Errorf("stats: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("stats: write counters: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stats: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stats: replace counters file: %w", err)
	}
	return nil
}

// Classify decides a request's origin: a declared referrer containing the
// service's own serving host counts as UI, everything else as API. A
// heuristic, not a security boundary.
func Classify(referrer, host string) Origin {
	if referrer != "" && host != "" && strings.Contains(referrer, host) {
		return OriginUI
	}
	return OriginAPI
}
