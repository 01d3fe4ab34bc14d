package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyntaxIssuesBalancedBlock(t *testing.T) {
	response := "Here you go:\n```go\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n```\n"
	assert.Empty(t, syntaxIssues(response, "go"))
}

func TestSyntaxIssuesUnbalancedBraces(t *testing.T) {
	response := "```go\nfunc main() {\n\tif true {\n\t\tfmt.Println(\"hi\")\n}\n```\n"
	issues := syntaxIssues(response, "go")
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0], "unbalanced braces")
}

func TestSyntaxIssuesIgnoresOtherLanguages(t *testing.T) {
	response := "```python\ndef f(:\n```\n```go\nfunc ok() {}\n```\n"
	assert.Empty(t, syntaxIssues(response, "go"))
}

func TestSyntaxIssuesNoBlocks(t *testing.T) {
	assert.Empty(t, syntaxIssues("plain prose, no code", "go"))
}

func TestExtractCodeBlocksSkipsLongerTags(t *testing.T) {
	// A "gohtml" fence must not match when looking for "go" blocks.
	response := "```gohtml\n<div>{{.}}</div>\n```\n```go\npackage main\n```\n"
	blocks := extractCodeBlocks(response, "go")
	assert.Equal(t, []string{"package main\n"}, blocks)
}

func TestSyntaxIssuesMultipleBlocks(t *testing.T) {
	response := "```go\nfunc a() {}\n```\ntext\n```go\nfunc b( {\n```\n"
	issues := syntaxIssues(response, "go")
	assert.Len(t, issues, 2) // parens and braces both unbalanced in block 2
	for _, issue := range issues {
		assert.Contains(t, issue, "code block 2")
	}
}
