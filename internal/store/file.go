package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
)

// FileBackend keeps one JSON snapshot file per identity in dir.
// Unreadable or malformed files load as empty. A level that disagrees with
// the stored xp is recomputed; any other broken invariant loads as empty.
type FileBackend struct {
	dir    string
	logger *zap.Logger
}

// NewFileBackend returns a FileBackend rooted at dir.
func NewFileBackend(dir string, logger *zap.Logger) *FileBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileBackend{dir: dir, logger: logger}
}

// Path returns the snapshot file for identity.
func (f *FileBackend) Path(identity string) (string, error) {
	if identity == "" || identity == "." || identity == ".." || identity != filepath.Base(identity) {
		return "", apperr.NewValidationError(fmt.Sprintf("invalid identity %q", identity))
	}
	return filepath.Join(f.dir, identity+".json"), nil
}

// Load reads the snapshot for identity.
func (f *FileBackend) Load(_ context.Context, identity string) (*models.Snapshot, error) {
	path, err := f.Path(identity)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		f.logger.Warn("snapshot unreadable, using defaults", zap.String("path", path), zap.Error(err))
		return nil, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		corrupt := apperr.NewCorruptError("snapshot "+path, err)
		f.logger.Warn("snapshot corrupt, using defaults", zap.Error(corrupt))
		return nil, nil
	}
	snap.Normalize()

	if want := progression.LevelForXP(snap.XP); snap.XP >= 0 && snap.Level != want {
		f.logger.Warn("snapshot level disagrees with xp, recomputing",
			zap.String("path", path), zap.Int("level", snap.Level), zap.Int("xp", snap.XP))
		snap.Level = want
	}
	if err := progression.CheckInvariants(&snap.UserProgress); err != nil {
		corrupt := apperr.NewCorruptError("snapshot "+path, err)
		f.logger.Warn("snapshot inconsistent, using defaults", zap.Error(corrupt))
		return nil, nil
	}
	return &snap, nil
}

// Save writes snap to a temp file next to the target and renames it over
// the target, so readers never see a partial file.
func (f *FileBackend) Save(_ context.Context, identity string, snap *models.Snapshot) error {
	path, err := f.Path(identity)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("Save mkdir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("Save encode: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("Save temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("Save write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("Save sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("Save close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("Save rename: %w", err)
	}
	return nil
}

// Reset removes the snapshot file. A missing file is not an error.
func (f *FileBackend) Reset(_ context.Context, identity string) error {
	path, err := f.Path(identity)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("Reset: %w", err)
	}
	return nil
}

// Close is a no-op.
func (f *FileBackend) Close() error { return nil }
