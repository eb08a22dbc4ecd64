package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the fixed-form and free-form source suffixes
// looked for when none are given.
var DefaultExtensions = []string{".f", ".f77", ".for", ".ftn"}

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir    string
	extensions []string
}

func New(rootDir string, extensions ...string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Scan walks the root directory and returns the source files found,
// sorted by path. Hidden directories are skipped.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != s.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.IsTargetFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Path: path,
			Size: info.Size(),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// IsTargetFile reports whether path has one of the scanner's extensions.
// Extensions compare case-insensitively, so PROG.F matches ".f".
func (s *Scanner) IsTargetFile(path string) bool {
	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if strings.EqualFold(ext, targetExt) {
			return true
		}
	}
	return false
}

func (s *Scanner) Extensions() []string {
	return s.extensions
}
