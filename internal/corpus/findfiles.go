// Package corpus discovers documents, reads them in parallel and feeds them
// to the index engine in a deterministic order.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
)

// ValidateExtensions checks that every extension is a non-empty ASCII
// letter string and drops duplicates.
func ValidateExtensions(exts []string) ([]string, error) {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		if !isAlphaString(ext) {
			return nil, fmt.Errorf("%w: invalid file extension %q", apperrors.ErrInvalidInput, ext)
		}
		if _, dup := seen[ext]; dup {
			slog.Warn("extension specified multiple times, ignoring the duplicate", "extension", ext)
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out, nil
}

// FindFiles lists regular files under dir in lexical order. When exts is
// non-empty only files whose extension (without the dot, case-sensitive) is
// listed are kept. limit > 0 stops the walk after that many files.
// Entries that cannot be accessed are logged and skipped.
func FindFiles(dir string, exts []string, limit int) ([]string, error) {
	exts, err := ValidateExtensions(exts)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %q does not exist", apperrors.ErrInvalidInput, dir)
		}
		return nil, fmt.Errorf("accessing %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", apperrors.ErrInvalidInput, dir)
	}

	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[ext] = struct{}{}
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			slog.Warn("failed to access path, ignoring", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if len(allowed) > 0 {
			ext := strings.TrimPrefix(filepath.Ext(path), ".")
			if _, ok := allowed[ext]; !ok {
				return nil
			}
		}
		// symlinks are followed for files only, so a link cycle cannot loop
		info, err := os.Stat(path)
		if err != nil {
			slog.Warn("failed to access path, ignoring", "path", path, "error", err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, path)
		if limit > 0 && len(files) >= limit {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", dir, err)
	}
	return files, nil
}

func isAlphaString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
