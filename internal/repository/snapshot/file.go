package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/nativefier/internal/domain/appargs"
)

// Filename is the name of the snapshot document inside the app directory.
const Filename = "nativefier.json"

// DefaultFileMode is used for the snapshot document; the packaged app must read it.
const DefaultFileMode os.FileMode = 0o644

// Repository defines persistence operations for the app args snapshot.
type Repository interface {
	Load(ctx context.Context) (*appargs.Snapshot, error)
	Save(ctx context.Context, snap *appargs.Snapshot) error
}

// FileRepository persists the snapshot to nativefier.json in an app directory.
type FileRepository struct {
	// path is the filesystem location of the snapshot document.
	path string
}

var (
	// ErrNotFound is returned when the snapshot document does not exist.
	ErrNotFound = errors.New("snapshot not found")
	// errSnapshotIsNotSet is returned when Save receives nil.
	errSnapshotIsNotSet = errors.New("snapshot is not set")
)

// NewFileRepository creates a repository for the snapshot of the app in appDir.
func NewFileRepository(appDir string) *FileRepository {
	return &FileRepository{
		path: filepath.Join(filepath.Clean(appDir), Filename),
	}
}

// Path returns the location of the snapshot document.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the snapshot from disk. Missing keys keep their zero value and
// unknown keys are ignored.
func (r *FileRepository) Load(_ context.Context) (*appargs.Snapshot, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var snap appargs.Snapshot
	if err = json.Unmarshal(contents, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}

	return &snap, nil
}

// Save writes the snapshot to disk.
func (r *FileRepository) Save(_ context.Context, snap *appargs.Snapshot) error {
	if snap == nil {
		return errSnapshotIsNotSet
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err = os.WriteFile(r.path, data, DefaultFileMode); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	return nil
}
