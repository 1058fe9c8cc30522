package vecindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SnapshotStore persists the complete (user_id, vector) set of one modality
// as a single durable blob. Save must be atomic: a reader never observes a
// partially written snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, vectors map[string][]float32) error
	Load(ctx context.Context) (map[string][]float32, error)
}

// snapshotBlob is the on-disk format. Vectors round-trip exactly: float32
// values survive JSON encoding unchanged at this precision.
type snapshotBlob struct {
	Vectors map[string][]float32 `json:"vectors"`
}

// FileStore keeps the snapshot in a single JSON file, written with a
// temp-file-and-rename so a crash mid-write leaves the previous snapshot
// intact.
type FileStore struct {
	path string
}

// NewFileStore builds a FileStore rooted at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(ctx context.Context, vectors map[string][]float32) error {
	data, err := json.Marshal(snapshotBlob{Vectors: vectors})
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (map[string][]float32, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string][]float32), nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var blob snapshotBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if blob.Vectors == nil {
		blob.Vectors = make(map[string][]float32)
	}
	return blob.Vectors, nil
}
