package server

import (
	"net/http"
	"strings"

	"github.com/ValorSage/ai-app-builder/internal/issues"
)

// handleAgentExecute runs a natural-language command through the agent.
// The caller may bring its own key and model; otherwise the configured
// provider is used.
func (a *API) handleAgentExecute(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var body struct {
		Command string `json:"command"`
		APIKey  string `json:"apiKey"`
		Model   string `json:"model"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Command) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "command required")
		return
	}
	apiKey := body.APIKey
	if apiKey == "" {
		apiKey = r.Header.Get("X-AI-Key")
	}
	model := body.Model
	if model == "" {
		model = r.Header.Get("X-AI-Model")
	}

	runner := a.agentFor(apiKey, model)
	res, err := runner.Execute(r.Context(), body.Command)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "agent_failed", err.Error())
		return
	}
	// analysis findings feed the issues panel; persistence failure must not
	// fail the command itself
	if res.Analyzed != "" && len(res.Issues) > 0 {
		if _, err := a.store.Merge(issues.FromAnalysis(res.Analyzed, res.Issues)); err != nil {
			a.lg.Warn("agent.issues_persist_failed", "file", res.Analyzed, "err", err.Error())
		}
	}
	writeJSON(w, http.StatusOK, res)
}
