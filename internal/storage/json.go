package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deploymenttheory/go-file-version/internal/logger"
	"github.com/deploymenttheory/go-file-version/internal/types"
)

// JSONOutput represents the JSON output structure
type JSONOutput struct {
	LastUpdated time.Time           `json:"last_updated"`
	Stats       types.StorageStats  `json:"stats"`
	Files       []types.ScannedFile `json:"files"`
}

// JSONStorage implements the Storage interface using a JSON file
type JSONStorage struct {
	filePath  string
	data      JSONOutput
	pathIndex map[string]bool
	mutex     sync.RWMutex
}

// New creates a new JSONStorage
func New(filePath string) (*JSONStorage, error) {
	storage := &JSONStorage{
		filePath:  filePath,
		pathIndex: make(map[string]bool),
		data: JSONOutput{
			LastUpdated: time.Now(),
			Stats: types.StorageStats{
				LastUpdatedAt:    time.Now(),
				FilesByExtension: make(map[string]int),
			},
			Files: make([]types.ScannedFile, 0),
		},
	}

	// Try to load existing data
	if _, err := os.Stat(filePath); err == nil {
		err = storage.loadExistingData()
		if err != nil {
			return nil, fmt.Errorf("failed to load existing data: %w", err)
		}
	}

	return storage, nil
}

// Store saves a scanned file's metadata
func (s *JSONStorage) Store(file types.ScannedFile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Skip files we already indexed
	if s.pathIndex[indexKey(file)] {
		return nil
	}

	s.data.Files = append(s.data.Files, file)
	s.pathIndex[indexKey(file)] = true

	s.data.Stats.FilesStored++
	s.data.LastUpdated = time.Now()
	s.data.Stats.LastUpdatedAt = time.Now()
	s.updateStats(file)

	return s.saveToFile()
}

// indexKey identifies a file within the index. Archive members carry
// the container path so a member cannot shadow a file on disk.
func indexKey(file types.ScannedFile) string {
	if file.Container != "" {
		return file.Container + "!" + file.Path
	}
	return file.Path
}

// updateStats updates statistics for a newly stored file
func (s *JSONStorage) updateStats(file types.ScannedFile) {
	if file.HasVersionInfo {
		s.data.Stats.WithVersionInfo++
	}

	ext := strings.ToLower(filepath.Ext(file.Path))
	if ext != "" {
		if s.data.Stats.FilesByExtension == nil {
			s.data.Stats.FilesByExtension = make(map[string]int)
		}
		s.data.Stats.FilesByExtension[ext]++
	}
}

// Close finalizes the storage
func (s *JSONStorage) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.sortFiles()
	s.data.LastUpdated = time.Now()
	s.data.Stats.LastUpdatedAt = time.Now()

	logger.Infof("Closing storage with %d files stored", s.data.Stats.FilesStored)
	logger.Infof("Files with version info: %d", s.data.Stats.WithVersionInfo)
	logger.Infof("Files by extension: %v", s.data.Stats.FilesByExtension)

	return s.saveToFile()
}

// Stats returns storage statistics
func (s *JSONStorage) Stats() types.StorageStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.data.Stats
}

// loadExistingData loads existing data from the JSON file
func (s *JSONStorage) loadExistingData() error {
	file, err := os.Open(s.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	var output JSONOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return err
	}

	if output.Stats.FilesByExtension == nil {
		output.Stats.FilesByExtension = make(map[string]int)
	}

	// Rebuild the path index from existing records
	for _, f := range output.Files {
		s.pathIndex[indexKey(f)] = true
	}

	s.data = output
	s.data.Stats.LastUpdatedAt = time.Now()

	logger.Infof("Loaded %d existing records from %s", len(output.Files), s.filePath)
	return nil
}

// saveToFile saves the current data to the JSON file
func (s *JSONStorage) saveToFile() error {
	s.sortFiles()

	file, err := os.Create(s.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	return encoder.Encode(s.data)
}

// sortFiles sorts the records by container and path
func (s *JSONStorage) sortFiles() {
	sort.Slice(s.data.Files, func(i, j int) bool {
		if s.data.Files[i].Container != s.data.Files[j].Container {
			return s.data.Files[i].Container < s.data.Files[j].Container
		}
		return s.data.Files[i].Path < s.data.Files[j].Path
	})
}
