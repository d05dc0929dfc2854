package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/recluselabs/recluse/pkg/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func relSet(t *testing.T, root string, files []string) map[string]bool {
	t.Helper()
	// Scan results are symlink-resolved, so resolve the root the same way.
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	found := make(map[string]bool, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("Rel(%q, %q): %v", root, f, err)
		}
		found[rel] = true
	}
	return found
}

func TestNewScanner(t *testing.T) {
	// With nil config
	s := NewScanner(nil)
	if s == nil {
		t.Fatal("NewScanner(nil) returned nil")
	}
	if s.config == nil {
		t.Error("scanner.config should not be nil when passing nil")
	}

	// With explicit config
	cfg := config.DefaultConfig()
	s = NewScanner(cfg)
	if s.config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"app.py":          "print('hi')\n",
		"web/index.js":    "function main() {}\n",
		"lib/widget.dart": "void build() {}\n",
		"native/main.go":  "package main\n",
		"readme.txt":      "hello\n",
		"data.json":       "{}\n",
	})

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	if len(result) != 4 {
		t.Errorf("ScanDir() found %d files, want 4", len(result))
		for _, f := range result {
			t.Logf("  Found: %s", f)
		}
	}

	found := relSet(t, tmpDir, result)
	for _, want := range []string{
		"app.py",
		filepath.Join("web", "index.js"),
		filepath.Join("lib", "widget.dart"),
		filepath.Join("native", "main.go"),
	} {
		if !found[want] {
			t.Errorf("File %s was not found", want)
		}
	}
}

func TestScanDirRecognizedExtensions(t *testing.T) {
	// Every extension of the report's language map is collected, including
	// languages that extraction later reports as unsupported.
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"Main.java":  "public class Main {}\n",
		"page.php":   "<?php\n",
		"app.rb":     "def run; end\n",
		"tool.rs":    "fn main() {}\n",
		"App.swift":  "func run() {}\n",
		"Service.cs": "class Service {}\n",
		"view.tsx":   "export function View() {}\n",
		"notes.md":   "# notes\n",
	})

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 7 {
		t.Errorf("ScanDir() found %d files, want 7", len(result))
	}
}

func TestScanDirExcludesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	for _, dir := range []string{"vendor", "node_modules", "__pycache__", ".venv"} {
		writeTree(t, tmpDir, map[string]string{
			filepath.Join(dir, "file.py"): "x = 1\n",
		})
	}
	writeTree(t, tmpDir, map[string]string{"main.py": "x = 1\n"})

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	if len(result) != 1 {
		t.Errorf("ScanDir() found %d files, want 1 (excluded dirs should be skipped)", len(result))
		for _, f := range result {
			t.Logf("  Found: %s", f)
		}
	}
}

func TestScanDirExcludesPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.py":          "x = 1\n",
		"app.min.js":       "function a(){}\n",
		"model.g.dart":     "void gen() {}\n",
		"api.freezed.dart": "void gen() {}\n",
	})

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	// Only main.py survives the default patterns.
	if len(result) != 1 {
		t.Errorf("ScanDir() found %d files, want 1", len(result))
		for _, f := range result {
			t.Logf("  Found: %s", f)
		}
	}
}

func TestScanDirExcludesExtensions(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"app.py":  "x = 1\n",
		"util.ts": "const x = 1\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Extensions = []string{".ts"}

	s := NewScanner(cfg)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("ScanDir() found %d files, want 1", len(result))
	}
	if filepath.Base(result[0]) != "app.py" {
		t.Errorf("ScanDir() kept %s, want app.py", result[0])
	}
}

func TestScanDirWithGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatalf("Failed to create .git dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("skipme/\ngenerated.py\n"), 0o644); err != nil {
		t.Fatalf("Failed to create .gitignore: %v", err)
	}
	writeTree(t, tmpDir, map[string]string{
		"main.py":        "x = 1\n",
		"generated.py":   "x = 1\n",
		"skipme/skip.py": "x = 1\n",
		"src/app.py":     "x = 1\n",
	})

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	found := relSet(t, tmpDir, result)
	if !found["main.py"] {
		t.Error("Should find main.py")
	}
	if !found[filepath.Join("src", "app.py")] {
		t.Error("Should find src/app.py")
	}
	if found["generated.py"] {
		t.Error("generated.py is gitignored and should be skipped")
	}
	if found[filepath.Join("skipme", "skip.py")] {
		t.Error("skipme/skip.py is gitignored and should be skipped")
	}
}

func TestScanDirDisabledGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatalf("Failed to create .git dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("ignored/\n"), 0o644); err != nil {
		t.Fatalf("Failed to create .gitignore: %v", err)
	}
	writeTree(t, tmpDir, map[string]string{
		filepath.Join("ignored", "file.py"): "x = 1\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false

	s := NewScanner(cfg)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	found := false
	for _, f := range result {
		if filepath.Base(f) == "file.py" {
			found = true
			break
		}
	}
	if !found {
		t.Error("With gitignore disabled, should find files in 'ignored' directory")
	}
}

func TestScanDirEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ScanDir() on empty dir returned %d files, want 0", len(result))
	}
}

func TestScanFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"python file", "script.py", true},
		{"dart file", "widget.dart", true},
		{"go file", "main.go", true},
		{"text file", "readme.txt", false},
		{"minified file", "app.min.js", false},
		{"directory", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tmpDir
			if tt.filename != "" {
				path = filepath.Join(tmpDir, tt.filename)
				if err := os.WriteFile(path, []byte("content\n"), 0o644); err != nil {
					t.Fatalf("Failed to create file: %v", err)
				}
			}

			s := NewScanner(nil)
			got, err := s.ScanFile(path)
			if err != nil {
				t.Fatalf("ScanFile() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ScanFile(%s) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestScanFileNonExistent(t *testing.T) {
	s := NewScanner(nil)
	_, err := s.ScanFile("/nonexistent/path/file.py")
	if err == nil {
		t.Error("ScanFile() should return error for non-existent file")
	}
}

func TestIsWithinRoot(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		path string
		root string
		want bool
	}{
		{
			name: "same path",
			path: tmpDir,
			root: tmpDir,
			want: true,
		},
		{
			name: "child path",
			path: filepath.Join(tmpDir, "subdir", "file.py"),
			root: tmpDir,
			want: true,
		},
		{
			name: "path outside root",
			path: "/some/other/path",
			root: tmpDir,
			want: false,
		},
		{
			name: "parent path",
			path: filepath.Dir(tmpDir),
			root: tmpDir,
			want: false,
		},
		{
			name: "similar prefix but different dir",
			path: tmpDir + "2/file.py",
			root: tmpDir,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isWithinRoot(tt.path, tt.root); got != tt.want {
				t.Errorf("isWithinRoot(%q, %q) = %v, want %v", tt.path, tt.root, got, tt.want)
			}
		})
	}
}

func TestFindGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if result := findGitRoot(tmpDir); result != "" {
		t.Errorf("findGitRoot() on non-git dir should return empty string, got %q", result)
	}

	gitDir := filepath.Join(tmpDir, ".git")
	if err := os.Mkdir(gitDir, 0o755); err != nil {
		t.Fatalf("Failed to create .git dir: %v", err)
	}

	if result := findGitRoot(tmpDir); result != tmpDir {
		t.Errorf("findGitRoot() should return %q, got %q", tmpDir, result)
	}

	subDir := filepath.Join(tmpDir, "src", "pkg")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if result := findGitRoot(subDir); result != tmpDir {
		t.Errorf("findGitRoot() from subdir should return %q, got %q", tmpDir, result)
	}
}

func TestScanDirWithSymlinks(t *testing.T) {
	tmpDir := t.TempDir()

	realFile := filepath.Join(tmpDir, "real.py")
	if err := os.WriteFile(realFile, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	symlinkPath := filepath.Join(tmpDir, "link.py")
	if err := os.Symlink(realFile, symlinkPath); err != nil {
		t.Skip("Symlinks not supported on this system")
	}

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	// The real file and the in-root symlink are both collected.
	if len(result) != 2 {
		t.Errorf("ScanDir() found %d files, want 2", len(result))
	}
}

func TestScanDirWithUnresolvableSymlink(t *testing.T) {
	tmpDir := t.TempDir()

	symlinkPath := filepath.Join(tmpDir, "dangling.py")
	if err := os.Symlink("/nonexistent/path/file.py", symlinkPath); err != nil {
		t.Skip("Symlinks not supported on this system")
	}

	realFile := filepath.Join(tmpDir, "real.py")
	if err := os.WriteFile(realFile, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	if len(result) != 1 {
		t.Errorf("ScanDir() should find 1 file (skipping dangling symlink), got %d", len(result))
	}
}

func TestScanDirWithSymlinkDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		filepath.Join("real", "file.py"): "x = 1\n",
	})

	outsideDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outsideDir, "outside.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("Failed to create outside file: %v", err)
	}

	symlinkDir := filepath.Join(tmpDir, "linked")
	if err := os.Symlink(outsideDir, symlinkDir); err != nil {
		t.Skip("Symlinks not supported on this system")
	}

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	// Symlinks to directories outside the root are never followed.
	for _, f := range result {
		if filepath.Base(f) == "outside.py" {
			t.Error("ScanDir() should not follow symlinks outside the root directory")
		}
	}
}

func TestScanPaths(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		filepath.Join("app", "main.py"):    "def main():\n    pass\n",
		filepath.Join("app", "util.py"):    "def helper():\n    pass\n",
		filepath.Join("web", "index.js"):   "function init() {}\n",
		filepath.Join("docs", "notes.txt"): "not source\n",
	})

	s := NewScanner(nil)
	result, err := s.ScanPaths([]string{
		filepath.Join(tmpDir, "app"),
		filepath.Join(tmpDir, "web", "index.js"),
		filepath.Join(tmpDir, "app", "main.py"), // already collected by the walk
		filepath.Join(tmpDir, "docs", "notes.txt"),
	})
	if err != nil {
		t.Fatalf("ScanPaths() error: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("ScanPaths() returned %d files, want 3: %v", len(result), result)
	}

	// Directory results come first in lexical order, then explicit files.
	wantOrder := []string{"main.py", "util.py", "index.js"}
	for i, want := range wantOrder {
		if filepath.Base(result[i]) != want {
			t.Errorf("result[%d] = %q, want base %q", i, result[i], want)
		}
	}
}

func TestScanPathsMissingPath(t *testing.T) {
	s := NewScanner(nil)
	if _, err := s.ScanPaths([]string{"/nonexistent/source.py"}); err == nil {
		t.Error("ScanPaths() should fail for a missing path")
	}
}
