package backup

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Metadata contains metadata about a single backup
type Metadata struct {
	ID          string            `json:"id"`
	SourcePath  string            `json:"source_path"`
	BackupPath  string            `json:"backup_path"`
	Workspace   string            `json:"workspace,omitempty"`
	ProfileID   string            `json:"profile_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ModifiedAt  time.Time         `json:"modified_at"`
	Hash        string            `json:"hash"` // SHA256 of content
	Size        int64             `json:"size"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Index maintains an index of all backups
type Index struct {
	Version string              `json:"version"`
	Updated time.Time           `json:"updated"`
	Backups map[string]Metadata `json:"backups"` // Key: backup ID
}

const (
	// IndexVersion is the current version of the backup index format
	IndexVersion = "1.0"
	// IndexFilename is the name of the index file
	IndexFilename = "index.json"
)

func (m *Manager) indexPath() string {
	return filepath.Join(m.dir, IndexFilename)
}

// LoadIndex loads the backup index from disk. A missing index is empty.
func (m *Manager) LoadIndex() (*Index, error) {
	// #nosec G304 - index path is derived from the manager's root
	data, err := os.ReadFile(m.indexPath())
	if os.IsNotExist(err) {
		return &Index{
			Version: IndexVersion,
			Updated: time.Now(),
			Backups: make(map[string]Metadata),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse index file: %w", err)
	}
	if index.Backups == nil {
		index.Backups = make(map[string]Metadata)
	}

	return &index, nil
}

// SaveIndex saves the backup index to disk
func (m *Manager) SaveIndex(index *Index) error {
	if err := os.MkdirAll(m.dir, BackupDirPerm); err != nil {
		return fmt.Errorf("failed to create backups directory: %w", err)
	}

	index.Updated = time.Now()

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	// #nosec G306 - index.json is metadata and can be group-readable
	if err := os.WriteFile(m.indexPath(), data, BackupFilePerm); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	return nil
}

func (m *Manager) addBackup(index *Index, metadata Metadata) error {
	if index.Backups == nil {
		index.Backups = make(map[string]Metadata)
	}
	index.Backups[metadata.ID] = metadata
	return m.SaveIndex(index)
}

// ListBackups returns all backups sorted by creation time (newest first)
func (idx *Index) ListBackups() []Metadata {
	backups := make([]Metadata, 0, len(idx.Backups))
	for _, b := range idx.Backups {
		backups = append(backups, b)
	}
	sortNewestFirst(backups)
	return backups
}

func sortNewestFirst(backups []Metadata) {
	slices.SortFunc(backups, func(a, b Metadata) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
