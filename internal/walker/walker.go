// Package walker finds writing samples on disk for bulk upload.
package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultMaxFileSize matches the per-file upload limit (10 MB).
const DefaultMaxFileSize int64 = 10 << 20

// FileInfo describes one candidate sample.
type FileInfo struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash-separated path relative to the walk root.
	Size        int64
	Format      string // Lower-case extension including the dot.
	ContentHash string // SHA-256 hex digest of the content.
}

// Config controls Walk.
type Config struct {
	Root string
	// Extensions lists the accepted formats, e.g. ".md". Empty accepts any.
	Extensions  []string
	Include     []string
	Exclude     []string
	MaxFileSize int64
}

// Skipped records a file that matched the filters but was not returned.
type Skipped struct {
	RelPath string
	Reason  string
}

// Walk returns the files under cfg.Root that pass the extension and glob
// filters, ordered by relative path. Root may also be a single file, which
// is returned when its format is accepted. Files with the same content are
// reported once.
func Walk(cfg Config) ([]FileInfo, []Skipped, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("walker: %w", err)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	w := &walk{cfg: cfg, maxSize: maxSize, seen: map[string]string{}}

	if !st.IsDir() {
		w.visit(root, filepath.Base(root), st.Size())
		return w.files, w.skipped, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if !MatchesInclude(relPath, cfg.Include) || MatchesExclude(relPath, cfg.Exclude) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		w.visit(path, relPath, info.Size())
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walker: traversal: %w", err)
	}

	slices.SortFunc(w.files, func(a, b FileInfo) int { return strings.Compare(a.RelPath, b.RelPath) })
	return w.files, w.skipped, nil
}

type walk struct {
	cfg     Config
	maxSize int64
	seen    map[string]string
	files   []FileInfo
	skipped []Skipped
}

func (w *walk) visit(path, relPath string, size int64) {
	format := strings.ToLower(filepath.Ext(path))
	if len(w.cfg.Extensions) > 0 && !slices.Contains(w.cfg.Extensions, format) {
		return
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return
	}
	if size > w.maxSize {
		w.skipped = append(w.skipped, Skipped{RelPath: relPath, Reason: fmt.Sprintf("larger than %d bytes", w.maxSize)})
		return
	}
	if size == 0 {
		w.skipped = append(w.skipped, Skipped{RelPath: relPath, Reason: "empty file"})
		return
	}
	hash, err := hashFile(path)
	if err != nil {
		w.skipped = append(w.skipped, Skipped{RelPath: relPath, Reason: err.Error()})
		return
	}
	if first, ok := w.seen[hash]; ok {
		w.skipped = append(w.skipped, Skipped{RelPath: relPath, Reason: "duplicate of " + first})
		return
	}
	w.seen[hash] = relPath
	w.files = append(w.files, FileInfo{
		Path:        path,
		RelPath:     relPath,
		Size:        size,
		Format:      format,
		ContentHash: hash,
	})
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
