// Package storage is the key-value persistence collaborator: every component
// loads and saves its state as an independent JSON document addressed by
// (component, file), e.g. ("LiveNotify", "liveUIDBind.json").
package storage

import (
	"context"
	"time"
)

// Store loads and saves documents.
type Store interface {
	// Load decodes the document into v. It reports found=false, and leaves v
	// untouched, when the document does not exist or is empty.
	Load(ctx context.Context, component, file string, v any) (found bool, err error)
	// LoadRaw returns the document bytes as stored, for non-JSON documents such as word lists.
	LoadRaw(ctx context.Context, component, file string) (data []byte, found bool, err error)
	// Save encodes v and replaces the document, backing up the previous content first.
	Save(ctx context.Context, component, file string, v any) error
}

// Backuper keeps a timestamped copy of a document's previous content.
// Backups are best-effort: a failed backup never blocks a save.
type Backuper interface {
	Backup(ctx context.Context, component, file string, data []byte, at time.Time) error
}
