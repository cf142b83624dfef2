package storage

import (
	"github.com/deploymenttheory/go-file-version/internal/types"
)

// Storage defines the interface for storing scanned file metadata
type Storage interface {
	// Store saves a scanned file's metadata
	Store(file types.ScannedFile) error

	// Close finalizes the storage
	Close() error

	// Stats returns storage statistics
	Stats() types.StorageStats
}
