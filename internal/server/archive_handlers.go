package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ValorSage/ai-app-builder/internal/archive"
	"github.com/ValorSage/ai-app-builder/internal/llm"
	"github.com/ValorSage/ai-app-builder/internal/models"
)

// handleDownload streams the project source as a zip.
func (a *API) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "project"
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".zip"))
	if err := a.exporter.WriteTo(w, name); err != nil {
		// headers are already out; log and cut the stream
		a.lg.Error("download.failed", "name", name, "err", err.Error())
	}
}

const generatePrompt = `You are an expert full-stack software engineer. Generate a complete project structure with actual working code based on the user's description.

The project should include:
1. Frontend: React + TypeScript with modern hooks and components
2. Backend: Node.js + Express.js with RESTful API endpoints
3. Package.json files for both frontend and backend
4. README.md with setup instructions

Return ONLY a valid JSON object with this structure:
{
  "projectName": "kebab-case-name",
  "files": [
    {
      "path": "frontend/src/App.tsx",
      "content": "actual file content here"
    }
  ]
}

Generate complete, working code that can be run immediately after npm install. Include all necessary imports, proper TypeScript types, error handling, and modern best practices.

User Request: %s`

// handleGenerateProject asks the generator model for a whole project and
// streams it back as a zip.
func (a *API) handleGenerateProject(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var body struct {
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "description is required")
		return
	}

	reply, err := a.generator.Chat(r.Context(), []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(generatePrompt, body.Description)},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "generate_failed", err.Error())
		return
	}

	var project struct {
		ProjectName string `json:"projectName"`
		Files       []struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		} `json:"files"`
	}
	if err := json.Unmarshal([]byte(stripFences(reply)), &project); err != nil {
		writeError(w, http.StatusInternalServerError, "generate_failed", "model returned unparseable project")
		return
	}
	if project.ProjectName == "" {
		project.ProjectName = "generated-project"
	}

	entries := make([]models.ArchiveEntry, 0, len(project.Files))
	for _, f := range project.Files {
		entries = append(entries, models.ArchiveEntry{Name: f.Path, Content: []byte(f.Content)})
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.ProjectName+".zip"))
	if err := archive.WriteEntries(w, entries); err != nil {
		a.lg.Error("generate.stream_failed", "err", err.Error())
	}
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
