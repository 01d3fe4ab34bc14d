package sandbox

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// sourceExtensions limits search_code to source-like files.
var sourceExtensions = map[string]bool{
	".go": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rs": true, ".java": true, ".c": true, ".cc": true,
	".cpp": true, ".h": true, ".css": true, ".html": true, ".json": true,
	".md": true, ".yaml": true, ".yml": true,
}

// searchCode performs a recursive text search restricted to source-like
// extensions, returning at most MaxSearchResults "path:line: snippet"
// matches. Zero matches is a success with an empty list.
func (s *Sandbox) searchCode(cmd Command) Result {
	pattern, err := stringArg(cmd, "pattern")
	if err != nil {
		return failure(cmd, err)
	}
	path, err := stringArg(cmd, "path")
	if err != nil {
		path = "."
	}
	resolved, err := s.resolvePath(path)
	if err != nil {
		return failure(cmd, err)
	}

	matches := []string{}
	walkErr := filepath.WalkDir(resolved, func(candidate string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped, not fatal
		}
		if len(matches) >= s.policy.MaxSearchResults {
			return filepath.SkipAll
		}
		if d.IsDir() {
			for _, denied := range s.policy.DeniedPathComponents {
				if d.Name() == denied {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !sourceExtensions[filepath.Ext(candidate)] {
			return nil
		}

		relative, relErr := filepath.Rel(s.root, candidate)
		if relErr != nil {
			relative = candidate
		}
		file, openErr := os.Open(candidate)
		if openErr != nil {
			return nil //nolint:nilerr // unreadable files are skipped
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if strings.Contains(line, pattern) {
				matches = append(matches, fmt.Sprintf("%s:%d: %s", relative, lineNo, strings.TrimSpace(line)))
				if len(matches) >= s.policy.MaxSearchResults {
					return filepath.SkipAll
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		return failure(cmd, fmt.Errorf("search failed: %w", walkErr))
	}
	return success(cmd, matches)
}

// logDirCandidates are the directories getLogs scans, relative to root.
var logDirCandidates = []string{"logs", "log", ".logs"}

// getLogs is a best-effort scan of known log directories. It never fails:
// when no logs exist it returns a placeholder result.
func (s *Sandbox) getLogs(cmd Command) Result {
	lines := 50
	if raw, ok := cmd.Args["lines"]; ok {
		if n, ok := raw.(float64); ok && n > 0 { // JSON numbers decode as float64
			lines = int(n)
		}
	}

	for _, candidate := range logDirCandidates {
		dir := filepath.Join(s.root, candidate)
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) == 0 {
			continue
		}
		// Most recently modified file wins.
		var newest string
		var newestMod int64
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, infoErr := entry.Info()
			if infoErr != nil {
				continue
			}
			if newest == "" || info.ModTime().UnixNano() > newestMod {
				newest = filepath.Join(dir, entry.Name())
				newestMod = info.ModTime().UnixNano()
			}
		}
		if newest == "" {
			continue
		}
		data, readErr := os.ReadFile(newest)
		if readErr != nil {
			continue
		}
		allLines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(allLines) > lines {
			allLines = allLines[len(allLines)-lines:]
		}
		return success(cmd, strings.Join(allLines, "\n"))
	}

	return success(cmd, "no log files found")
}

// forbiddenTokens flags obviously unsafe constructs in lint_check.
var forbiddenTokens = []string{"eval(", "document.write(", "child_process"}

// lintCheck runs heuristic static checks: unbalanced braces, forbidden
// token usage, and line length. Any issue yields success=false with the
// issue list.
func (s *Sandbox) lintCheck(cmd Command) Result {
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

	content := string(data)
	var issues []string

	pairs := []struct {
		open, close rune
		name        string
	}{
		{'{', '}', "braces"},
		{'(', ')', "parentheses"},
		{'[', ']', "brackets"},
	}
	for _, pair := range pairs {
		opens := strings.Count(content, string(pair.open))
		closes := strings.Count(content, string(pair.close))
		if opens != closes {
			issues = append(issues, fmt.Sprintf("unbalanced %s: %d opening vs %d closing", pair.name, opens, closes))
		}
	}

	for lineNo, line := range strings.Split(content, "\n") {
		for _, token := range forbiddenTokens {
			if strings.Contains(line, token) {
				issues = append(issues, fmt.Sprintf("line %d: forbidden token %q", lineNo+1, token))
			}
		}
		if len(line) > s.policy.MaxLineLength {
			issues = append(issues, fmt.Sprintf("line %d: exceeds %d characters", lineNo+1, s.policy.MaxLineLength))
		}
	}

	if len(issues) > 0 {
		return Result{ID: cmd.ID, Success: false, Data: issues, Error: fmt.Sprintf("%d lint issues found", len(issues))}
	}
	return success(cmd, []string{})
}

// getPreview returns the fixed local preview URL descriptor.
func (s *Sandbox) getPreview(cmd Command) Result {
	return success(cmd, map[string]any{"url": s.policy.PreviewURL})
}
