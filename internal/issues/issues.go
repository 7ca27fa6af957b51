package issues

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/ValorSage/ai-app-builder/internal/models"
)

// Merge concatenates existing and incoming and deduplicates by issue id,
// keeping the first occurrence. Order is preserved, so an existing issue
// wins over an incoming duplicate with the same id.
func Merge(existing, incoming []models.Issue) []models.Issue {
	out := make([]models.Issue, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, list := range [][]models.Issue{existing, incoming} {
		for _, is := range list {
			if _, dup := seen[is.ID]; dup {
				continue
			}
			seen[is.ID] = struct{}{}
			out = append(out, is)
		}
	}
	return out
}

// SynthesizeID fills in a stable id for issues that arrive without one.
// The hash covers source, file, line and message so the same finding
// reported twice collapses to a single entry.
func SynthesizeID(is models.Issue) string {
	if is.ID != "" {
		return is.ID
	}
	h := xxh3.HashString(fmt.Sprintf("%s|%s|%d|%s", is.Type, is.File, is.Line, is.Message))
	return fmt.Sprintf("%s-%016x", is.Type, h)
}

// FromAnalysis maps the AI analyzer's narrow finding shape into the shared
// Issue shape, synthesizing ids as it goes.
func FromAnalysis(file string, found []models.AnalysisIssue) []models.Issue {
	out := make([]models.Issue, 0, len(found))
	for _, f := range found {
		sev := models.SeverityInfo
		switch f.Type {
		case "bug":
			sev = models.SeverityError
		case "warning":
			sev = models.SeverityWarning
		}
		is := models.Issue{
			Type:       models.SourceAI,
			Severity:   sev,
			File:       file,
			Line:       f.Line,
			Message:    f.Message,
			Suggestion: f.Suggestion,
		}
		is.ID = SynthesizeID(is)
		out = append(out, is)
	}
	return out
}
