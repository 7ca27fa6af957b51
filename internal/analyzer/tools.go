package analyzer

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ValorSage/ai-app-builder/internal/models"
)

// ToolRunner invokes the project's external analyzers (ESLint via the lint
// script, the TypeScript compiler) and parses their output. Every failure
// mode degrades to zero issues from that source; a broken toolchain must not
// take the aggregation endpoint down with it.
type ToolRunner struct {
	Root    string
	Timeout time.Duration
}

func NewToolRunner(root string) *ToolRunner {
	return &ToolRunner{Root: root, Timeout: 30 * time.Second}
}

func (r *ToolRunner) run(ctx context.Context, name string, args ...string) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Root
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	_ = cmd.Run()
	return stdout.String(), stderr.String()
}

// LintIssues runs the lint script with JSON output and parses the result.
func (r *ToolRunner) LintIssues(ctx context.Context) []models.Issue {
	stdout, _ := r.run(ctx, "npm", "run", "lint", "--", "--format", "json")
	return ParseESLint([]byte(stdout), r.Root)
}

// CompilerIssues runs tsc in no-emit mode and parses its diagnostics.
func (r *ToolRunner) CompilerIssues(ctx context.Context) []models.Issue {
	stdout, stderr := r.run(ctx, "npx", "tsc", "--noEmit")
	return ParseTSC(stdout+stderr, r.Root)
}

// Collect runs both analyzers concurrently and returns their findings.
func (r *ToolRunner) Collect(ctx context.Context) (lint, compiler []models.Issue) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lint = r.LintIssues(ctx)
		return nil
	})
	g.Go(func() error {
		compiler = r.CompilerIssues(ctx)
		return nil
	})
	_ = g.Wait()
	return lint, compiler
}

type eslintMessage struct {
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Severity    int    `json:"severity"`
	Message     string `json:"message"`
	Suggestions []struct {
		Desc string `json:"desc"`
	} `json:"suggestions"`
}

type eslintFileResult struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

// ParseESLint converts ESLint's JSON formatter output into issues. The JSON
// is often preceded by npm script chatter, so parsing starts at the first
// '[' byte. Anything unparseable yields no issues.
func ParseESLint(out []byte, root string) []models.Issue {
	start := -1
	for i, b := range out {
		if b == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	var results []eslintFileResult
	if err := json.Unmarshal(out[start:], &results); err != nil {
		return nil
	}
	issues := []models.Issue{}
	for _, fr := range results {
		rel := relativize(fr.FilePath, root)
		for idx, msg := range fr.Messages {
			sev := models.SeverityWarning
			if msg.Severity == 2 {
				sev = models.SeverityError
			}
			is := models.Issue{
				ID:       "lint-" + rel + "-" + strconv.Itoa(msg.Line) + "-" + strconv.Itoa(idx),
				Type:     models.SourceLinter,
				Severity: sev,
				File:     rel,
				Line:     msg.Line,
				Column:   msg.Column,
				Message:  msg.Message,
			}
			if len(msg.Suggestions) > 0 {
				is.Suggestion = msg.Suggestions[0].Desc
			}
			issues = append(issues, is)
		}
	}
	return issues
}

// tsc diagnostics look like: path/file.ts(12,5): error TS2339: message
var tscDiagRe = regexp.MustCompile(`(?m)^(.+?)\((\d+),(\d+)\):\s+(error|warning)\s+TS\d+:\s+(.+)$`)

// ParseTSC extracts diagnostics from tsc's textual output.
func ParseTSC(out, root string) []models.Issue {
	issues := []models.Issue{}
	for idx, m := range tscDiagRe.FindAllStringSubmatch(out, -1) {
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		sev := models.SeverityWarning
		if m[4] == "error" {
			sev = models.SeverityError
		}
		rel := relativize(m[1], root)
		issues = append(issues, models.Issue{
			ID:       "compiler-" + rel + "-" + m[2] + "-" + strconv.Itoa(idx),
			Type:     models.SourceCompiler,
			Severity: sev,
			File:     rel,
			Line:     line,
			Column:   col,
			Message:  strings.TrimSpace(m[5]),
		})
	}
	return issues
}

func relativize(path, root string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(strings.TrimLeft(path, "/\\"))
}
