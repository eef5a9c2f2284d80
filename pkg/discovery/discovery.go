// Package discovery finds the files a scan runs over.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrInvalidDirectory = errors.New("invalid directory")
	ErrNoFiles          = errors.New("no matching files found")
)

// Discover returns the regular files under dir whose extension is one of
// extensions (case-insensitive), sorted by path. Only dir itself is read
// unless recursive is set.
func Discover(dir string, extensions []string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidDirectory, dir)
	}

	wanted := normalizeExtensions(extensions)

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matchesExtension(path, wanted) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s (%s)", ErrNoFiles, dir, strings.Join(wanted, ", "))
	}

	sort.Strings(files)
	return files, nil
}

func normalizeExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func matchesExtension(path string, wanted []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, w := range wanted {
		if ext == w {
			return true
		}
	}
	return false
}
