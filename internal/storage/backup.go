package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"livenotify-srv/pkg/minio"
)

// LocalBackuper writes backups to Dir/<component>/<file>.<timestamp>.bak.
type LocalBackuper struct {
	Dir string
}

func (b LocalBackuper) Backup(ctx context.Context, component, file string, data []byte, at time.Time) error {
	dir := filepath.Join(b.Dir, component)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage.LocalBackuper.Backup: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, backupName(file, at)), data, 0o644)
}

// MinIOBackuper uploads backups to Bucket/Prefix/<component>/<file>.<timestamp>.bak.
type MinIOBackuper struct {
	Client minio.MinIO
	Bucket string
	Prefix string
}

func (b MinIOBackuper) Backup(ctx context.Context, component, file string, data []byte, at time.Time) error {
	object := path.Join(b.Prefix, component, backupName(file, at))
	if err := b.Client.PutObject(ctx, b.Bucket, object, data, "application/json"); err != nil {
		return fmt.Errorf("storage.MinIOBackuper.Backup: %w", err)
	}
	return nil
}
