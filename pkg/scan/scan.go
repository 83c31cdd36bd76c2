// Package scan discovers Holmake build artifacts and reads their dependency
// lists.
//
// Discovery walks a source tree looking for files with the artifact suffixes
// (.uo by default). Each artifact file is a plain text file with one
// dependency identifier per line; reading strips build extensions and applies
// the caller's exclude/include filters.
package scan

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
)

// Discover walks root and returns the absolute paths of all files whose name
// ends with one of the suffixes. When filter is non-nil, only paths matching
// it are considered. WalkDir visits entries in lexical order, so the result
// is deterministic for a given tree.
func Discover(root string, suffixes []string, filter *regexp.Regexp) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filter != nil && !filter.MatchString(path) {
			return nil
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(path, suffix) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
