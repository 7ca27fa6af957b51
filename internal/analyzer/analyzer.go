// Package analyzer provides the heuristic static analysis behind the explain
// and analyze operations. It is deliberately regex-based: good enough for IDE
// hints, with no parser toolchain to keep in sync.
package analyzer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ValorSage/ai-app-builder/internal/models"
)

var (
	exportDefaultFuncRe = regexp.MustCompile(`export\s+default\s+function\s+(\w+)`)
	exportDefaultRe     = regexp.MustCompile(`export\s+default\s+(\w+)`)
	exportConstRe       = regexp.MustCompile(`export\s+const\s+(\w+)`)
	moduleExportsRe     = regexp.MustCompile(`module\.exports\s*=\s*(\w+)`)
	importLineRe        = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w{}\s,*]+\s+from\s+)?["']([^"']+)["']`)
	requireRe           = regexp.MustCompile(`\brequire\(`)
	importWordRe        = regexp.MustCompile(`\bimport\b`)
	funcDeclRe          = regexp.MustCompile(`(?m)^\s*(?:export\s+)?function\s+(\w+)\s*\(([^)]*)\)\s*(:?)`)
	varDeclRe           = regexp.MustCompile(`(?m)^\s*var\s+\w+`)
)

func language(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx":
		return "TypeScript"
	case ".js", ".jsx":
		return "JavaScript"
	case ".json":
		return "JSON"
	case ".css":
		return "CSS"
	case ".md":
		return "Markdown"
	case ".go":
		return "Go"
	default:
		return "plaintext"
	}
}

// Summarize builds the explain endpoint's description of a file: detected
// language, line count, exported names and a one-line synopsis.
func Summarize(path, code string) models.FileSummary {
	lines := strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")
	firstNonEmpty := ""
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			firstNonEmpty = l
			break
		}
	}

	exports := []string{}
	if m := exportDefaultFuncRe.FindStringSubmatch(code); m != nil {
		exports = append(exports, m[1])
	} else if m := exportDefaultRe.FindStringSubmatch(code); m != nil {
		exports = append(exports, m[1])
	}
	if m := moduleExportsRe.FindStringSubmatch(code); m != nil {
		exports = append(exports, m[1])
	}
	for _, m := range exportConstRe.FindAllStringSubmatch(code, -1) {
		exports = append(exports, m[1])
	}

	lang := language(path)
	imports := len(importWordRe.FindAllString(code, -1))
	requires := len(requireRe.FindAllString(code, -1))

	snippet := firstNonEmpty
	if runes := []rune(snippet); len(runes) > 120 {
		snippet = string(runes[:120]) + "…"
	}
	return models.FileSummary{
		Language:  lang,
		LineCount: len(lines),
		Summary: fmt.Sprintf("This %s file has %d lines, %d ES imports and %d CommonJS requires. First non-empty line: %s",
			lang, len(lines), imports, requires, snippet),
		Exports: exports,
	}
}

// Analyze inspects source text for common problems and returns the narrow
// finding shape the agent's analyze branch reports.
func Analyze(path, code string) []models.AnalysisIssue {
	found := []models.AnalysisIssue{}
	lines := strings.Split(code, "\n")

	if opening, closing := strings.Count(code, "{"), strings.Count(code, "}"); opening != closing {
		found = append(found, models.AnalysisIssue{
			Type:       "bug",
			Line:       0,
			Message:    fmt.Sprintf("Unbalanced braces: %d opening vs %d closing", opening, closing),
			Suggestion: "Fix syntax errors before proceeding",
		})
	}

	// relative imports whose basename never appears again are likely unused
	for _, m := range importLineRe.FindAllStringSubmatchIndex(code, -1) {
		spec := code[m[2]:m[3]]
		if !strings.HasPrefix(spec, ".") {
			continue
		}
		base := spec
		if i := strings.LastIndex(spec, "/"); i >= 0 {
			base = spec[i+1:]
		}
		rest := code[m[1]:]
		if base != "" && !strings.Contains(rest, base) {
			found = append(found, models.AnalysisIssue{
				Type:       "suggestion",
				Line:       lineOf(code, m[0]),
				Message:    fmt.Sprintf("Possibly unused import: %s", spec),
				Suggestion: "Remove unused imports to reduce bundle size",
			})
		}
	}

	if strings.HasSuffix(path, ".ts") {
		for _, m := range funcDeclRe.FindAllStringSubmatchIndex(code, -1) {
			if code[m[6]:m[7]] == ":" {
				continue
			}
			name := code[m[2]:m[3]]
			found = append(found, models.AnalysisIssue{
				Type:       "warning",
				Line:       lineOf(code, m[0]),
				Message:    fmt.Sprintf("Function '%s' has no return type", name),
				Suggestion: "Add explicit return type for better type safety",
			})
		}
	}

	for i, l := range lines {
		if varDeclRe.MatchString(l) {
			found = append(found, models.AnalysisIssue{
				Type:       "suggestion",
				Line:       i + 1,
				Message:    "Using 'var' is discouraged",
				Suggestion: "Use 'const' or 'let' instead of 'var'",
			})
		}
	}
	return found
}

// lineOf converts a byte offset to a 1-based line number.
func lineOf(code string, off int) int {
	return strings.Count(code[:off], "\n") + 1
}
