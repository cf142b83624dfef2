package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/deploymenttheory/go-file-version/internal/config"
	"github.com/deploymenttheory/go-file-version/internal/fileversion"
	"github.com/deploymenttheory/go-file-version/internal/logger"
	"github.com/deploymenttheory/go-file-version/internal/storage"
	"github.com/deploymenttheory/go-file-version/internal/types"
)

// Stats holds scanner statistics
type Stats struct {
	FilesScanned    int
	WithVersionInfo int
	Errors          int
	StartTime       time.Time
	EndTime         time.Time
}

// task is one file queued for processing. Archive members are
// extracted to a temp path first and cleaned up afterwards.
type task struct {
	path      string // file on disk to query
	display   string // path recorded in the index
	container string // archive the file came from, if any
	cleanup   bool
}

// Scanner walks a directory tree and indexes the version information
// of every matching binary file
type Scanner struct {
	cfg   config.Config
	store storage.Storage
	queue chan task

	// Injected for tests; default to the fileversion package.
	query      func(path string) (*fileversion.Info, error)
	queryFixed func(path string) (*fileversion.FixedInfo, error)

	include []*regexp.Regexp
	exclude []*regexp.Regexp

	wg         sync.WaitGroup
	stats      Stats
	statsMutex sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a new Scanner
func New(cfg config.Config, store storage.Storage) (*Scanner, error) {
	include, err := compilePatterns(cfg.IncludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	exclude, err := compilePatterns(cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	return &Scanner{
		cfg:        cfg,
		store:      store,
		queue:      make(chan task, 100),
		query:      fileversion.Query,
		queryFixed: fileversion.QueryFixed,
		include:    include,
		exclude:    exclude,
		stop:       make(chan struct{}),
	}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// Start begins the scanning workers
func (s *Scanner) Start() {
	s.statsMutex.Lock()
	s.stats.StartTime = time.Now()
	s.statsMutex.Unlock()

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Run walks the configured root directory and enqueues matching files.
// It closes the queue when the walk finishes, so call Wait afterwards.
func (s *Scanner) Run() error {
	defer close(s.queue)

	return filepath.WalkDir(s.cfg.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warningf("Skipping %s: %v", path, err)
			return nil
		}

		select {
		case <-s.stop:
			return filepath.SkipAll
		default:
		}

		if d.IsDir() {
			return nil
		}
		if !s.matchesPath(path) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if s.cfg.ScanArchives && ext == ".zip" {
			if err := s.scanArchive(path); err != nil {
				logger.Warningf("Failed to scan archive %s: %v", path, err)
				s.incrementErrors()
			}
			return nil
		}

		if s.matchesExtension(path) {
			// Workers may all be gone after Stop; never block on a
			// queue nobody drains.
			select {
			case s.queue <- task{path: path, display: path}:
			case <-s.stop:
				return filepath.SkipAll
			}
		}
		return nil
	})
}

// matchesPath applies the include/exclude patterns
func (s *Scanner) matchesPath(path string) bool {
	for _, re := range s.exclude {
		if re.MatchString(path) {
			return false
		}
	}
	if len(s.include) == 0 {
		return true
	}
	for _, re := range s.include {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// matchesExtension checks the file against the configured extensions
func (s *Scanner) matchesExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.cfg.FileExtensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// worker processes queued files
func (s *Scanner) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stop:
			return
		case t, ok := <-s.queue:
			if !ok {
				return
			}

			record, err := s.processFile(t)
			if err != nil {
				logger.Errorf("Worker %d: Failed to process %s: %v", id, t.display, err)
				s.incrementErrors()
			} else {
				if err := s.store.Store(record); err != nil {
					logger.Errorf("Worker %d: Failed to store %s: %v", id, t.display, err)
					s.incrementErrors()
				}
				s.incrementScanned(record.HasVersionInfo)
			}

			if t.cleanup {
				os.Remove(t.path)
			}
		}
	}
}

// processFile builds the index record for one file
func (s *Scanner) processFile(t task) (types.ScannedFile, error) {
	stat, err := os.Stat(t.path)
	if err != nil {
		return types.ScannedFile{}, fmt.Errorf("stat: %w", err)
	}

	hash, err := generateSHA3Hash(t.path)
	if err != nil {
		return types.ScannedFile{}, fmt.Errorf("failed to generate hash: %w", err)
	}

	record := types.ScannedFile{
		Path:          t.display,
		Container:     t.container,
		ScannedAt:     time.Now(),
		SHA3Hash:      hash,
		FileSizeBytes: stat.Size(),
	}

	// A missing version resource is an expected outcome here, not a
	// scan failure; the file is indexed without version fields.
	info, err := s.query(t.path)
	if err != nil {
		logger.Debugf("No version info for %s: %v", t.display, err)
		return record, nil
	}

	record.HasVersionInfo = info.FileVersion != ""
	record.VersionInfo = info

	if fixed, err := s.queryFixed(t.path); err == nil {
		if v := fixed.FileVersion.String(); v != "0.0.0.0" {
			record.FixedVersion = v
		}
	}

	return record, nil
}

// Stop signals the scanner to stop
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Wait waits for all processing to complete
func (s *Scanner) Wait() {
	s.wg.Wait()

	s.statsMutex.Lock()
	s.stats.EndTime = time.Now()
	s.statsMutex.Unlock()
}

// Stats returns the current scanner statistics
func (s *Scanner) Stats() Stats {
	s.statsMutex.RLock()
	defer s.statsMutex.RUnlock()
	return s.stats
}

func (s *Scanner) Duration() time.Duration {
	s.statsMutex.RLock()
	defer s.statsMutex.RUnlock()

	if s.stats.StartTime.IsZero() {
		return 0
	}
	if s.stats.EndTime.IsZero() {
		return time.Since(s.stats.StartTime)
	}
	return s.stats.EndTime.Sub(s.stats.StartTime)
}

func (s *Scanner) incrementScanned(withVersion bool) {
	s.statsMutex.Lock()
	s.stats.FilesScanned++
	if withVersion {
		s.stats.WithVersionInfo++
	}
	s.statsMutex.Unlock()
}

func (s *Scanner) incrementErrors() {
	s.statsMutex.Lock()
	s.stats.Errors++
	s.statsMutex.Unlock()
}
