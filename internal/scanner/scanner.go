// Package scanner finds analyzable source files under a directory tree.
// Exclusion combines the config lists (dirs, extensions, glob patterns) with
// every .gitignore in the enclosing git repository.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/recluselabs/recluse/pkg/config"
	"github.com/recluselabs/recluse/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config  *config.Config
	matcher gitignore.Matcher
	gitRoot string
}

// NewScanner creates a new file scanner. A nil config uses the defaults.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for a .git
// directory. Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadGitignore builds the gitignore matcher from every .gitignore file under
// the enclosing git root. Outside a repository, or with gitignore support
// disabled, the matcher stays nil.
func (s *Scanner) loadGitignore(root string) {
	s.matcher = nil
	s.gitRoot = ""

	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(root)
	if gitRoot == "" {
		return
	}

	patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.gitRoot = gitRoot
	s.matcher = gitignore.NewMatcher(patterns)
}

// ignored reports whether the gitignore matcher excludes the path. Matching
// runs against the path relative to the git root because that is the domain
// the patterns were read under.
func (s *Scanner) ignored(path string, isDir bool) bool {
	if s.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(s.gitRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	return s.matcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}

// ScanDir recursively scans a directory and returns every file with a
// recognized source extension, as absolute paths in lexical walk order.
// Validates that all paths stay within the root directory to prevent
// traversal through symlinks.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadGitignore(absRoot)

	files := make([]string, 0, 1024)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(absRoot, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				// Dangling or escaping symlinks are skipped.
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			// The trailing separator makes the config dir lists match the
			// directory entry itself, not only paths beneath it.
			if s.config.ShouldExclude(relPath+string(filepath.Separator)) || s.ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.config.ShouldExclude(relPath) || s.ignored(path, false) {
			return nil
		}
		if parser.DetectLanguage(path) != parser.LangUnknown {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// The separator suffix prevents "/root2" matching "/root".
	if !strings.HasPrefix(absPath, root+string(filepath.Separator)) && absPath != root {
		return false
	}
	return true
}

// ScanFile checks if a single file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	if s.matcher == nil {
		s.loadGitignore(filepath.Dir(abs))
	}

	if s.config.ShouldExclude(filepath.Base(abs)) || s.ignored(abs, false) {
		return false, nil
	}
	return parser.DetectLanguage(abs) != parser.LangUnknown, nil
}

// ScanPaths resolves a mix of files and directories into one analyzable
// file list. Directories are walked, explicit files pass through the same
// filters, and duplicates keep their first position. A path that does not
// exist fails the whole call.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			found, err := s.ScanDir(path)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
			continue
		}

		ok, err := s.ScanFile(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		// Resolve like ScanDir does so duplicates collapse to one entry.
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		add(abs)
	}

	return files, nil
}
