package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/testsmith-io/testsmith/core/logger"
)

// Result reports the outcome of one artifact write. Failures stay scoped to
// their artifact: one failed write never aborts the others in a run.
type Result struct {
	Path   string
	Action string // "created", "updated", "skipped"
	Err    error
}

// WriteArtifact writes content to path, creating intermediate directories.
// The write goes through a temp file in the target directory followed by a
// rename, so a cancelled run never leaves a half-written artifact behind.
func WriteArtifact(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	logger.Debug("Wrote artifact %s (%d bytes)", path, len(content))
	return nil
}

// EnsureInitFiles creates empty __init__.py files from dir up to (and
// including) stopDir, so the generated test tree is importable as a
// package. Existing files are left alone.
func EnsureInitFiles(dir, stopDir string) ([]string, error) {
	var created []string

	current := dir
	for {
		if err := os.MkdirAll(current, os.ModePerm); err != nil {
			return created, fmt.Errorf("failed to create directory %s: %w", current, err)
		}

		initPath := filepath.Join(current, "__init__.py")
		if _, err := os.Stat(initPath); os.IsNotExist(err) {
			if err := os.WriteFile(initPath, nil, 0o644); err != nil {
				return created, fmt.Errorf("failed to create %s: %w", initPath, err)
			}
			created = append(created, initPath)
		}

		if current == stopDir {
			break
		}
		parent := filepath.Dir(current)
		if parent == current || len(parent) < len(stopDir) {
			break
		}
		current = parent
	}

	return created, nil
}
