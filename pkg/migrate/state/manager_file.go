package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileManager : keeps the checkpoint as a json document at a fixed path
type FileManager struct {
	fs   afero.Fs
	path string
}

func NewFileManager(fs afero.Fs, path string) *FileManager {
	return &FileManager{fs: fs, path: path}
}

func (m *FileManager) Path() string {
	return m.path
}

func (m *FileManager) Load(_ context.Context) (*Checkpoint, error) {
	b, err := afero.ReadFile(m.fs, m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint : could not read %s : %w", m.path, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, fmt.Errorf("checkpoint : %s is corrupt : %w", m.path, err)
	}
	return &cp, nil
}

// Save : writes a sibling temp file then renames it over the checkpoint
func (m *FileManager) Save(_ context.Context, cp *Checkpoint) error {
	if cp.SavedAt.IsZero() {
		cp.SavedAt = currentTime()
	}
	b, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint : could not encode : %w", err)
	}
	dir := filepath.Dir(m.path)
	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint : could not create %s : %w", dir, err)
	}
	tmp, err := afero.TempFile(m.fs, dir, filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("checkpoint : could not create temp file : %w", err)
	}
	tmpName := tmp.Name()
	_, err = tmp.Write(b)
	if syncErr := tmp.Sync(); err == nil {
		err = syncErr
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = m.fs.Remove(tmpName)
		return fmt.Errorf("checkpoint : could not write %s : %w", tmpName, err)
	}
	if err := m.fs.Rename(tmpName, m.path); err != nil {
		_ = m.fs.Remove(tmpName)
		return fmt.Errorf("checkpoint : could not move %s into place : %w", tmpName, err)
	}
	return nil
}

func (m *FileManager) Clear(_ context.Context) error {
	err := m.fs.Remove(m.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checkpoint : could not remove %s : %w", m.path, err)
	}
	return nil
}
