package server

import (
	"net/http"
	"strings"

	"github.com/ValorSage/ai-app-builder/internal/analyzer"
	"github.com/ValorSage/ai-app-builder/internal/fsops"
)

// handleTree serves the recursive project tree for the file explorer.
func (a *API) handleTree(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	tree, err := a.walker.Tree(a.cfg.SrcRoot())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tree": tree})
}

// handleFiles is the flat CRUD surface: list, create, update, delete.
func (a *API) handleFiles(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		files, err := a.walker.Flat(a.cfg.SrcRoot())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"files": files})

	case http.MethodPost:
		var body struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if err := a.mutator.Write(body.Path, body.Content); err != nil {
			writeFSError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "path": body.Path})

	case http.MethodPut:
		var body struct {
			Path    string  `json:"path"`
			Content *string `json:"content"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.Content == nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "content must be string")
			return
		}
		if err := a.mutator.Write(body.Path, *body.Content); err != nil {
			writeFSError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "path": body.Path})

	case http.MethodDelete:
		rel := r.URL.Query().Get("path")
		if err := a.mutator.Delete(rel); err != nil {
			writeFSError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "path": rel})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

// handleReadFile reads any file under the project root, not just src. The
// editor uses it for config files like package.json.
func (a *API) handleReadFile(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	rootMutator := fsops.NewMutator(a.rootSB)
	content, err := rootMutator.Read(r.URL.Query().Get("path"))
	if err != nil {
		writeFSError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

func (a *API) handleFSCreate(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var body struct {
		Path    string  `json:"path"`
		Content *string `json:"content"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	content := ""
	if body.Content != nil {
		content = *body.Content
	} else {
		content = fsops.Scaffold(body.Path)
	}
	if err := a.mutator.Write(body.Path, content); err != nil {
		writeFSError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "created": body.Path})
}

func (a *API) handleFSEdit(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var body struct {
		Path    string  `json:"path"`
		Content *string `json:"content"`
		Find    *string `json:"find"`
		Replace *string `json:"replace"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	switch {
	case body.Content != nil:
		// whole-file overwrite still requires the file to exist
		if _, err := a.mutator.Read(body.Path); err != nil {
			writeFSError(w, err)
			return
		}
		if err := a.mutator.Write(body.Path, *body.Content); err != nil {
			writeFSError(w, err)
			return
		}
	case body.Find != nil && body.Replace != nil:
		if err := a.mutator.FindReplace(body.Path, *body.Find, *body.Replace); err != nil {
			writeFSError(w, err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "provide either content or find+replace")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "edited": body.Path})
}

func (a *API) handleFSDelete(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var body struct {
		Path string `json:"path"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := a.mutator.Delete(body.Path); err != nil {
		writeFSError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": body.Path})
}

func (a *API) handleFSExplain(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	rel := strings.TrimSpace(r.URL.Query().Get("path"))
	code, err := a.mutator.Read(rel)
	if err != nil {
		writeFSError(w, err)
		return
	}
	info := analyzer.Summarize(rel, code)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"path":      rel,
		"language":  info.Language,
		"lineCount": info.LineCount,
		"summary":   info.Summary,
		"exports":   info.Exports,
	})
}
