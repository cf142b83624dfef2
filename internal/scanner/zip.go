package scanner

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"github.com/deploymenttheory/go-file-version/internal/logger"
)

// scanArchive extracts version-capable members of a zip archive to the
// temp directory and queues them for processing. The extracted copies
// are removed once processed.
func (s *Scanner) scanArchive(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	// Swap in the faster flate implementation for deflated members.
	r.RegisterDecompressor(zip.Deflate, func(in io.Reader) io.ReadCloser {
		return flate.NewReader(in)
	})

	for _, member := range r.File {
		if member.FileInfo().IsDir() || !s.matchesExtension(member.Name) {
			continue
		}

		extracted, err := s.extractMember(member)
		if err != nil {
			logger.Warningf("Failed to extract %s from %s: %v", member.Name, path, err)
			s.incrementErrors()
			continue
		}

		logger.Debugf("Queued archive member %s from %s", member.Name, path)
		select {
		case s.queue <- task{
			path:      extracted,
			display:   member.Name,
			container: path,
			cleanup:   true,
		}:
		case <-s.stop:
			// Nobody will process or clean up the extraction.
			os.Remove(extracted)
			return nil
		}
	}
	return nil
}

// extractMember copies one archive member to a temp file and returns
// its path.
func (s *Scanner) extractMember(member *zip.File) (string, error) {
	in, err := member.Open()
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.CreateTemp(s.cfg.TempDir, "scan-*"+filepath.Ext(member.Name))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
