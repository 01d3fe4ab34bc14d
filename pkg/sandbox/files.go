package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
)

// readFile returns the raw content of a file, failing with not_found when
// the file is absent.
func (s *Sandbox) readFile(cmd Command) Result {
	path, err := stringArg(cmd, "path")
	if err != nil {
		return failure(cmd, err)
	}
	resolved, err := s.resolvePath(path)
	if err != nil {
		return failure(cmd, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return failure(cmd, fmt.Errorf("not found: %s", path))
		}
		return failure(cmd, fmt.Errorf("failed to read %s: %w", path, err))
	}
	return success(cmd, string(data))
}

// writeFile creates parent directories as needed and overwrites the file.
func (s *Sandbox) writeFile(cmd Command) Result {
	path, err := stringArg(cmd, "path")
	if err != nil {
		return failure(cmd, err)
	}
	content, err := stringArg(cmd, "content")
	if err != nil {
		return failure(cmd, err)
	}
	resolved, err := s.resolvePath(path)
	if err != nil {
		return failure(cmd, err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return failure(cmd, fmt.Errorf("failed to create parent directories for %s: %w", path, err))
	}
	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return failure(cmd, fmt.Errorf("failed to write %s: %w", path, err))
	}
	return success(cmd, map[string]any{"path": path, "bytes": len(content)})
}

// deleteFile removes a file, failing with not_found when it is absent.
func (s *Sandbox) deleteFile(cmd Command) Result {
	path, err := stringArg(cmd, "path")
	if err != nil {
		return failure(cmd, err)
	}
	resolved, err := s.resolvePath(path)
	if err != nil {
		return failure(cmd, err)
	}

	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		return failure(cmd, fmt.Errorf("not found: %s", path))
	}
	if err := os.Remove(resolved); err != nil {
		return failure(cmd, fmt.Errorf("failed to delete %s: %w", path, err))
	}
	return success(cmd, map[string]any{"path": path})
}

// listFiles returns directory entries with name, type, and root-relative
// path.
func (s *Sandbox) listFiles(cmd Command) Result {
	path, err := stringArg(cmd, "path")
	if err != nil {
		return failure(cmd, err)
	}
	resolved, err := s.resolvePath(path)
	if err != nil {
		return failure(cmd, err)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return failure(cmd, fmt.Errorf("not found: %s", path))
		}
		return failure(cmd, fmt.Errorf("failed to list %s: %w", path, err))
	}

	files := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		entryType := "file"
		if entry.IsDir() {
			entryType = "directory"
		}
		relative, relErr := filepath.Rel(s.root, filepath.Join(resolved, entry.Name()))
		if relErr != nil {
			relative = entry.Name()
		}
		files = append(files, FileEntry{
			Name: entry.Name(),
			Type: entryType,
			Path: relative,
		})
	}
	return success(cmd, files)
}
