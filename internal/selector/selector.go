// Package selector walks a directory tree and picks the files worth scanning
// for secrets.
package selector

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// SniffLen is how many leading bytes the binary heuristic inspects.
const SniffLen = 8000

// Selector applies ignore rules and the binary heuristic to a directory walk.
type Selector struct {
	rules Rules
	log   *zap.Logger
}

// New creates a Selector with the given rules. A nil logger disables logging.
func New(rules Rules, log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{rules: rules, log: log}
}

// Default returns a Selector over the compiled-in rule tables.
func Default() *Selector {
	return New(DefaultRules(), nil)
}

// Collect walks root and returns candidate file paths sorted lexically.
// A missing or unreadable root yields an empty slice, not an error.
func (s *Selector) Collect(root string) []string {
	var files []string

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry (or root): skip it and keep walking.
			s.log.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && s.rules.IsIgnoredDir(d.Name()) {
				s.log.Debug("pruned directory", zap.String("path", path))
				return fs.SkipDir
			}
			return nil
		}

		if !s.isRegular(path, d) {
			return nil
		}
		if s.Accept(path) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files
}

// Accept applies the file-level filters to a single path: ignored names and
// extensions, the code-extension allow-list and the binary heuristic.
func (s *Selector) Accept(path string) bool {
	name := filepath.Base(path)
	if s.rules.IsIgnoredFile(name) || !s.rules.IsCodeFile(name) {
		return false
	}
	if IsBinary(path) {
		s.log.Debug("skipped binary file", zap.String("path", path))
		return false
	}
	return true
}

// Rules returns the rules this selector applies.
func (s *Selector) Rules() Rules {
	return s.rules
}

// isRegular follows symlinks so a link to a regular file counts as one.
// Links to directories are never descended.
func (s *Selector) isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// IsBinary reports whether the first SniffLen bytes of the file contain a NUL
// byte. Open or read failures report false so the file stays a candidate and
// the failure surfaces when it is scanned.
func IsBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, SniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}
