package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const (
	// DefaultSeenFileName is the default name for the seen marker file.
	DefaultSeenFileName = "seen.json"
)

// FileStore persists markers as a JSON document on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type seenFile struct {
	Markers []Marker `json:"markers"`
}

// NewFileStore creates a file store at the specified path.
// If path is empty, uses the default location (~/.config/reel/seen.json).
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(configDir, "reel", DefaultSeenFileName)
	}

	return &FileStore{path: path}, nil
}

// Load reads all markers from disk. A missing file holds no markers.
func (s *FileStore) Load(ctx context.Context) ([]Marker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readLocked()
}

// Save writes one marker, replacing any previous marker for the author.
func (s *FileStore) Save(ctx context.Context, m Marker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	markers, err := s.readLocked()
	if err != nil {
		return err
	}

	replaced := false
	for i := range markers {
		if markers[i].AuthorID == m.AuthorID {
			markers[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		markers = append(markers, m)
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].AuthorID < markers[j].AuthorID })

	return s.writeLocked(markers)
}

// Clear removes the marker file.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete seen file: %w", err)
	}
	return nil
}

// Exists returns true if a marker file exists.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the path to the marker file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) readLocked() ([]Marker, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read seen file: %w", err)
	}

	var f seenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seen file: %w", err)
	}
	return f.Markers, nil
}

func (s *FileStore) writeLocked(markers []Marker) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(seenFile{Markers: markers}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen markers: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write seen file: %w", err)
	}
	return nil
}
