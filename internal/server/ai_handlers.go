package server

import (
	"net/http"
	"strings"
)

var allowedVerifyModels = map[string]struct{}{
	"gemini-2.5-pro":   {},
	"gemini-2.5-flash": {},
}

// handleAIVerify checks a caller-supplied key against the upstream API.
// Upstream failures come back as HTTP 200 with ok=false so the UI can
// branch on the body instead of the transport.
func (a *API) handleAIVerify(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var body struct {
		APIKey string `json:"apiKey"`
		Model  string `json:"model"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.APIKey == "" || body.Model == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Missing apiKey or model"})
		return
	}
	if _, ok := allowedVerifyModels[body.Model]; !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Unsupported model"})
		return
	}
	if err := a.verifierFor(body.APIKey, body.Model).Verify(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "Upstream error: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

var basePlan = []string{
	"Create the basic project structure (src, public folders)",
	"Create the main entry file (src/app/page.tsx)",
	"Create the global layout (src/app/layout.tsx)",
	"Add a homepage component with hero section",
	"Set up Node.js + Express backend endpoint (e.g., /api/ping)",
	"Add project configuration files (package.json, tsconfig.json)",
	"Wire the IDE: file explorer, code editor, and right-side tabs",
}

// handlePlan produces a heuristic build plan for an idea, tailored only by
// echoing its leading keywords.
func (a *API) handlePlan(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var body struct {
		Idea string `json:"idea"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Idea) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid idea")
		return
	}

	keywords := strings.Fields(strings.TrimSpace(body.Idea))
	if len(keywords) > 6 {
		keywords = keywords[:6]
	}
	plan := make([]string, 0, len(basePlan)+1)
	plan = append(plan, "Understand requirements: "+strings.Join(keywords, " ")+" ...")
	plan = append(plan, basePlan...)
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
}

// handlePreview reports where the running preview can be reached.
func (a *API) handlePreview(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	url := a.cfg.PreviewURL
	if url == "" {
		url = "http://localhost:3001"
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "url": url})
}
