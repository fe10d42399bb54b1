package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/juju/clock"

	"livenotify-srv/pkg/log"
)

// FileStore keeps every document as a file under Root/<component>/<file>.
type FileStore struct {
	root     string
	backuper Backuper
	clock    clock.Clock
	logger   log.Logger
}

// NewFileStore returns a store rooted at dir. backuper may be nil.
func NewFileStore(dir string, backuper Backuper, clk clock.Clock, logger log.Logger) *FileStore {
	if clk == nil {
		clk = clock.WallClock
	}
	return &FileStore{root: dir, backuper: backuper, clock: clk, logger: logger}
}

func (s *FileStore) path(component, file string) string {
	return filepath.Join(s.root, component, file)
}

func (s *FileStore) LoadRaw(ctx context.Context, component, file string) ([]byte, bool, error) {
	if err := validateName(component, file); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.path(component, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage.FileStore.LoadRaw: %w", err)
	}
	return data, true, nil
}

func (s *FileStore) Load(ctx context.Context, component, file string, v any) (bool, error) {
	data, found, err := s.LoadRaw(ctx, component, file)
	if err != nil || !found {
		return false, err
	}
	found, err = decode(data, v)
	if err != nil {
		return false, fmt.Errorf("storage.FileStore.Load %s/%s: %w", component, file, err)
	}
	return found, nil
}

func (s *FileStore) Save(ctx context.Context, component, file string, v any) error {
	if err := validateName(component, file); err != nil {
		return err
	}
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("storage.FileStore.Save %s/%s: %w", component, file, err)
	}

	p := s.path(component, file)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("storage.FileStore.Save: %w", err)
	}

	if old, err := os.ReadFile(p); err == nil && len(old) > 0 {
		if bytes.Equal(old, data) {
			return nil
		}
		s.backup(ctx, component, file, old)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+file+".tmp-*")
	if err != nil {
		return fmt.Errorf("storage.FileStore.Save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage.FileStore.Save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage.FileStore.Save: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("storage.FileStore.Save: %w", err)
	}
	return nil
}

func (s *FileStore) backup(ctx context.Context, component, file string, old []byte) {
	if s.backuper == nil {
		return
	}
	if err := s.backuper.Backup(ctx, component, file, old, s.clock.Now()); err != nil {
		s.logger.Warnf(ctx, "storage.FileStore.backup: %s/%s: %v", component, file, err)
	}
}
