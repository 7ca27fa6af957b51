package server

import (
	"net/http"

	"github.com/ValorSage/ai-app-builder/internal/issues"
	"github.com/ValorSage/ai-app-builder/internal/models"
)

// handleIssues aggregates linter, compiler and stored AI findings on GET,
// merges new AI findings on POST and clears the AI store on DELETE.
func (a *API) handleIssues(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		lint, compiler := a.tools.Collect(r.Context())
		stored, err := a.store.List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		all := make([]models.Issue, 0, len(lint)+len(compiler)+len(stored))
		all = append(all, lint...)
		all = append(all, compiler...)
		all = append(all, stored...)
		writeJSON(w, http.StatusOK, map[string]any{"issues": all, "count": len(all)})

	case http.MethodPost:
		var body struct {
			Issues *[]models.Issue `json:"issues"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.Issues == nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "issues must be an array")
			return
		}
		incoming := make([]models.Issue, len(*body.Issues))
		for i, is := range *body.Issues {
			is.ID = issues.SynthesizeID(is)
			incoming[i] = is
		}
		count, err := a.store.Merge(incoming)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": count})

	case http.MethodDelete:
		if err := a.store.Clear(); err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}
