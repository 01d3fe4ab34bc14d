package orchestrator

import (
	"fmt"
	"strings"
)

// extractCodeBlocks returns the bodies of fenced code blocks tagged with
// the given language.
func extractCodeBlocks(text, language string) []string {
	var blocks []string
	marker := "```" + language
	rest := text
	for {
		start := strings.Index(rest, marker)
		if start == -1 {
			return blocks
		}
		rest = rest[start+len(marker):]
		// The tag must end the fence line, otherwise this is a block
		// for a different language with the same prefix.
		newline := strings.Index(rest, "\n")
		if newline == -1 {
			return blocks
		}
		if strings.TrimSpace(rest[:newline]) != "" {
			continue
		}
		rest = rest[newline+1:]
		end := strings.Index(rest, "```")
		if end == -1 {
			return blocks
		}
		blocks = append(blocks, rest[:end])
		rest = rest[end+3:]
	}
}

// syntaxIssues runs the brace/paren/bracket balance heuristic over every
// fenced code block tagged with the project language. No parsing happens,
// only pair counting; string literals are not special-cased.
func syntaxIssues(response, language string) []string {
	var issues []string
	for i, block := range extractCodeBlocks(response, language) {
		for _, pair := range []struct {
			open, close rune
			name        string
		}{
			{'{', '}', "braces"},
			{'(', ')', "parentheses"},
			{'[', ']', "brackets"},
		} {
			opens := strings.Count(block, string(pair.open))
			closes := strings.Count(block, string(pair.close))
			if opens != closes {
				issues = append(issues, fmt.Sprintf("code block %d: unbalanced %s (%d open, %d close)", i+1, pair.name, opens, closes))
			}
		}
	}
	return issues
}
