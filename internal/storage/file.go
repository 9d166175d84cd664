package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/neexbeast/skycast/internal/weather"
)

// DefaultPlacesFile is the file name used when none is configured.
const DefaultPlacesFile = "places.data"

// FileStore keeps the list as a JSON array in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPlacesFile
	}
	return &FileStore{path: path}
}

// Load reads the list. A missing file is an empty list.
func (s *FileStore) Load(_ context.Context) ([]weather.Place, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []weather.Place{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	places, err := weather.DecodePlaces(b)
	if err != nil {
		return nil, corrupt(fmt.Errorf("decoding %s: %w", s.path, err))
	}
	return places, nil
}

// Save writes the list to a temp file in the same directory and renames it
// over the old one.
func (s *FileStore) Save(_ context.Context, places []weather.Place) error {
	if places == nil {
		places = []weather.Place{}
	}
	b, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("encoding places: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Ping checks that the directory holding the file is reachable.
func (s *FileStore) Ping(_ context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
