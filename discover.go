package bindgen

import (
	"bytes"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/bindgen/internal/frontend"
)

// skipDirs are never descended into by the directory walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) TypeScript files under root.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || hasSkippedDir(line) {
			continue
		}
		if _, ok := frontend.LanguageForFile(line); ok {
			paths = append(paths, filepath.Join(root, line))
		}
	}
	return sortInputs(paths), nil
}

func hasSkippedDir(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

// excludedRoot reports whether root names a directory the walk would skip.
func excludedRoot(root string) bool {
	return skipDirs[filepath.Base(filepath.Clean(root))]
}

// walkListFiles discovers files by walking the filesystem, used when git is
// not available. Skips hidden directories and skipDirs.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := frontend.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return sortInputs(paths), nil
}

// sortInputs orders declaration files first, then by path, so that ambient
// declarations are seen before the code that uses them.
func sortInputs(paths []string) []string {
	sort.SliceStable(paths, func(i, j int) bool {
		di, dj := frontend.IsDeclarationFile(paths[i]), frontend.IsDeclarationFile(paths[j])
		if di != dj {
			return di
		}
		return paths[i] < paths[j]
	})
	return paths
}
