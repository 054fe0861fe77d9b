// Package scanner lists the files matching a source pattern.
package scanner

import (
	"errors"
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"mmv/internal/matcher"
	"mmv/internal/mmverr"
)

// FileEntry represents a file found during scanning.
type FileEntry struct {
	Name     string // Filename only
	FullPath string // Directory prefix of the pattern followed by Name
}

// List enumerates the files in the pattern's literal parent directory whose
// name matches the pattern's file name. Returned paths keep the directory
// prefix exactly as written in the pattern, sorted lexicographically.
// Directories are never returned.
func List(fsys afero.Fs, sourcePattern string) ([]FileEntry, error) {
	dir, namePattern := matcher.SplitPattern(sourcePattern)
	if err := matcher.Validate(sourcePattern, matcher.Wildcard); err != nil {
		return nil, err
	}

	listDir := dir
	if listDir == "" {
		listDir = "."
	}

	infos, err := afero.ReadDir(fsys, listDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(sourcePattern)
		}
		return nil, mmverr.Wrapf(err, mmverr.ErrIO, "failed to read directory %s", listDir)
	}

	var files []FileEntry
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		ok, err := doublestar.Match(namePattern, info.Name())
		if err != nil {
			return nil, mmverr.Wrapf(err, mmverr.ErrPath, "invalid pattern %q", sourcePattern).
				WithDetail("pattern", sourcePattern)
		}
		if !ok {
			continue
		}
		files = append(files, FileEntry{
			Name:     info.Name(),
			FullPath: dir + info.Name(),
		})
	}

	if len(files) == 0 {
		return nil, notFound(sourcePattern)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].FullPath < files[j].FullPath
	})
	return files, nil
}

// Paths returns the full paths of the entries, preserving order.
func Paths(files []FileEntry) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.FullPath
	}
	return paths
}

func notFound(pattern string) error {
	return mmverr.Newf(mmverr.ErrNotFound, "no files match the pattern %s", pattern).
		WithDetail("pattern", pattern)
}
