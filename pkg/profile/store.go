package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/teslashibe/go-driveguard/internal/log"
)

// Store persists one JSON document per driver id under a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// path returns the document path for a driver id.
func (s *Store) path(driverID string) string {
	return filepath.Join(s.dir, driverID+".json")
}

// Load reads a driver's profile. A missing or corrupt document yields a
// fresh default profile; corruption is overwritten on the next Save.
func (s *Store) Load(driverID string) *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(driverID))
	if err != nil {
		return New(driverID)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn("profile corrupt, starting fresh", "driver", driverID, "error", err)
		return New(driverID)
	}

	// Maps may be absent in hand-edited documents.
	if p.EventCounts == nil {
		p.EventCounts = make(map[string]int)
	}
	if p.Scores == nil {
		p.Scores = make(map[string]float64)
	}
	p.DriverID = driverID
	return &p
}

// Save writes a profile wholesale, atomically (temp file then rename).
func (s *Store) Save(p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	path := s.path(p.DriverID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Reset deletes a driver's stored profile. Missing documents are not an error.
func (s *Store) Reset(driverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(driverID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
