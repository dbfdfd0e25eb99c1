// Package backup snapshots workspace settings files before a profile is applied
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/klauern/wsprofile/internal/util"
)

const (
	// BackupDirPerm is the permission for backup directories (rwxr-x---)
	BackupDirPerm = 0o750
	// BackupFilePerm is the permission for backup files (rw-r-----)
	BackupFilePerm = 0o640
)

// ErrNotFound is returned when a backup id is not in the index.
var ErrNotFound = errors.New("backup not found")

// Options configures backup behavior
type Options struct {
	Workspace   string            // Workspace root the file belongs to
	ProfileID   string            // Profile about to be applied
	Description string            // Human-readable description
	Metadata    map[string]string // Additional metadata
}

// Manager stores backups and their index under a single directory.
type Manager struct {
	dir string
}

// New returns a Manager rooted at dir. An empty dir uses the default backups path.
func New(dir string) *Manager {
	if dir == "" {
		dir = util.WsprofileBackupsPath()
	}
	return &Manager{dir: dir}
}

// Dir returns the backup root directory.
func (m *Manager) Dir() string {
	return m.dir
}

// CreateBackup copies sourcePath into the backup directory and records it in the index
func (m *Manager) CreateBackup(sourcePath string, opts Options) (*Metadata, error) {
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source path %q: %w", sourcePath, err)
	}
	if sourceInfo.IsDir() {
		return nil, fmt.Errorf("source path %q is a directory", sourcePath)
	}

	// #nosec G304 - sourcePath is a workspace settings file chosen by the applier
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %q: %w", sourcePath, err)
	}

	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])

	now := time.Now()
	backupID := now.Format("20060102-150405-") + uuid.NewString()[:8]

	filesDir := filepath.Join(m.dir, "files")
	if err := os.MkdirAll(filesDir, BackupDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	backupPath := filepath.Join(filesDir, backupID+"-"+filepath.Base(sourcePath))
	if err := os.WriteFile(backupPath, content, BackupFilePerm); err != nil {
		return nil, fmt.Errorf("failed to write backup file: %w", err)
	}

	metadata := &Metadata{
		ID:          backupID,
		SourcePath:  sourcePath,
		BackupPath:  backupPath,
		Workspace:   opts.Workspace,
		ProfileID:   opts.ProfileID,
		CreatedAt:   now,
		ModifiedAt:  sourceInfo.ModTime(),
		Hash:        hashStr,
		Size:        sourceInfo.Size(),
		Description: opts.Description,
		Metadata:    opts.Metadata,
	}

	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}
	if err := m.addBackup(index, *metadata); err != nil {
		return nil, fmt.Errorf("failed to add backup to index: %w", err)
	}

	return metadata, nil
}

// RestoreBackup writes a backup's content to targetPath. An empty targetPath
// restores to the original location.
func (m *Manager) RestoreBackup(backupID, targetPath string) error {
	metadata, err := m.lookup(backupID)
	if err != nil {
		return err
	}

	content, err := m.readVerified(metadata)
	if err != nil {
		return err
	}

	if targetPath == "" {
		targetPath = metadata.SourcePath
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), BackupDirPerm); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}
	if err := os.WriteFile(targetPath, content, BackupFilePerm); err != nil {
		return fmt.Errorf("failed to write target file: %w", err)
	}

	return nil
}

// ListBackups returns all backups, newest first, optionally filtered by workspace
func (m *Manager) ListBackups(workspace string) ([]Metadata, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	backups := index.ListBackups()
	if workspace == "" {
		return backups, nil
	}

	filtered := make([]Metadata, 0, len(backups))
	for _, b := range backups {
		if b.Workspace == workspace {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// DeleteBackup deletes a backup and removes it from the index
func (m *Manager) DeleteBackup(backupID string) error {
	index, err := m.LoadIndex()
	if err != nil {
		return fmt.Errorf("failed to load backup index: %w", err)
	}

	metadata, exists := index.Backups[backupID]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, backupID)
	}

	if err := os.Remove(metadata.BackupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}

	delete(index.Backups, backupID)
	if err := m.SaveIndex(index); err != nil {
		return fmt.Errorf("failed to remove backup from index: %w", err)
	}

	return nil
}

// VerifyBackup checks that a backup file is present and matches its hash
func (m *Manager) VerifyBackup(backupID string) error {
	metadata, err := m.lookup(backupID)
	if err != nil {
		return err
	}
	_, err = m.readVerified(metadata)
	return err
}

func (m *Manager) lookup(backupID string) (Metadata, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to load backup index: %w", err)
	}
	metadata, exists := index.Backups[backupID]
	if !exists {
		return Metadata{}, fmt.Errorf("%w: %q", ErrNotFound, backupID)
	}
	return metadata, nil
}

func (m *Manager) readVerified(metadata Metadata) ([]byte, error) {
	content, err := os.ReadFile(metadata.BackupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("backup file missing: %s", metadata.BackupPath)
		}
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])
	if hashStr != metadata.Hash {
		return nil, fmt.Errorf("backup file corrupted: hash mismatch (expected %s, got %s)", metadata.Hash, hashStr)
	}
	return content, nil
}
