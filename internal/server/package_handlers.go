package server

import (
	"errors"
	"net/http"

	"github.com/ValorSage/ai-app-builder/internal/pkgmgr"
)

// handlePackages runs npm install/uninstall for the project.
func (a *API) handlePackages(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var body struct {
		Package string `json:"package"`
		Action  string `json:"action"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Package == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "package name required")
		return
	}
	if body.Action == "" {
		body.Action = pkgmgr.ActionInstall
	}

	res, err := a.pkgs.Run(r.Context(), body.Action, body.Package)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, pkgmgr.ErrInvalidAction), errors.Is(err, pkgmgr.ErrInvalidPackage):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  err.Error(),
			"stderr": res.Stderr,
		})
	}
}
