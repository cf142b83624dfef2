package types

import (
	"time"

	"github.com/deploymenttheory/go-file-version/internal/fileversion"
)

// ScannedFile represents one indexed binary file
type ScannedFile struct {
	Path           string            `json:"path"`
	Container      string            `json:"container,omitempty"` // archive the file was extracted from
	ScannedAt      time.Time         `json:"scanned_at"`
	SHA3Hash       string            `json:"sha3_hash"`
	FileSizeBytes  int64             `json:"file_size_bytes"`
	HasVersionInfo bool              `json:"has_version_info"`
	FixedVersion   string            `json:"fixed_version,omitempty"`
	VersionInfo    *fileversion.Info `json:"version_info,omitempty"`
}

// StorageStats holds storage statistics
type StorageStats struct {
	FilesStored      int            `json:"files_stored"`
	WithVersionInfo  int            `json:"with_version_info"`
	FilesByExtension map[string]int `json:"files_by_extension"`
	LastUpdatedAt    time.Time      `json:"last_updated_at"`
}
