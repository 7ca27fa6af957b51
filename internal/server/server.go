// Package server exposes the app builder's HTTP API: sandboxed file
// operations, issue aggregation, project export and the AI agent surface.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ValorSage/ai-app-builder/internal/agent"
	"github.com/ValorSage/ai-app-builder/internal/analyzer"
	"github.com/ValorSage/ai-app-builder/internal/archive"
	"github.com/ValorSage/ai-app-builder/internal/config"
	"github.com/ValorSage/ai-app-builder/internal/fsops"
	"github.com/ValorSage/ai-app-builder/internal/issues"
	"github.com/ValorSage/ai-app-builder/internal/llm"
	"github.com/ValorSage/ai-app-builder/internal/llm/gemini"
	"github.com/ValorSage/ai-app-builder/internal/llm/openai"
	mylog "github.com/ValorSage/ai-app-builder/internal/log"
	"github.com/ValorSage/ai-app-builder/internal/models"
	"github.com/ValorSage/ai-app-builder/internal/pkgmgr"
)

// agentRunner lets tests and alternative frontends swap the command
// interpretation pipeline without standing up a chat provider.
type agentRunner interface {
	Execute(ctx context.Context, command string) (models.IntentResult, error)
}

type API struct {
	cfg      *config.Config
	lg       *mylog.Logger
	rootSB   *fsops.Sandbox
	mutator  *fsops.Mutator
	walker   *fsops.Walker
	exporter *archive.Exporter
	store    issues.Store
	tools    *analyzer.ToolRunner
	pkgs     *pkgmgr.Manager

	// agentFor builds the executor for one request, honoring per-request
	// key/model overrides. Swapped out in tests.
	agentFor func(apiKey, model string) agentRunner
	// verifierFor builds the credential checker for the verify endpoint.
	verifierFor func(apiKey, model string) llm.Verifier
	// generator backs project generation.
	generator llm.ChatProvider
}

func NewAPI(cfg *config.Config) (*API, error) {
	rootSB, err := fsops.NewSandbox(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	srcSB, err := fsops.NewSandbox(cfg.SrcRoot())
	if err != nil {
		return nil, fmt.Errorf("src root: %w", err)
	}

	var store issues.Store
	switch cfg.IssueStore {
	case "sqlite":
		store, err = issues.NewSQLite(cfg.IssueStorePath)
	default:
		store, err = issues.NewFileStore(cfg.IssueStorePath)
	}
	if err != nil {
		return nil, fmt.Errorf("issue store: %w", err)
	}

	walker := fsops.NewWalker(cfg.IgnoreGlobs)
	mutator := fsops.NewMutator(srcSB)
	tools := analyzer.NewToolRunner(cfg.ProjectRoot)
	if cfg.ToolTimeout > 0 {
		tools.Timeout = cfg.ToolTimeout
	}
	pkgs := pkgmgr.New(cfg.ProjectRoot)
	if cfg.NPMTimeout > 0 {
		pkgs.Timeout = cfg.NPMTimeout
	}

	a := &API{
		cfg:      cfg,
		lg:       mylog.New(),
		rootSB:   rootSB,
		mutator:  mutator,
		walker:   walker,
		exporter: archive.NewExporter(walker, cfg.SrcRoot()),
		store:    store,
		tools:    tools,
		pkgs:     pkgs,
		generator: gemini.New(gemini.Options{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.Gemini.Model,
		}),
	}
	a.agentFor = func(apiKey, model string) agentRunner {
		return agent.NewExecutor(a.provider(apiKey, model), mutator, walker, cfg.SrcRoot())
	}
	a.verifierFor = func(apiKey, model string) llm.Verifier {
		return gemini.New(gemini.Options{APIKey: apiKey, Model: model})
	}
	return a, nil
}

// provider builds the configured chat provider, overridden per request when
// the caller supplies its own key or model.
func (a *API) provider(apiKey, model string) llm.ChatProvider {
	switch a.cfg.Provider {
	case "gemini":
		opts := gemini.Options{APIKey: a.cfg.Gemini.APIKey, Model: a.cfg.Gemini.Model}
		if apiKey != "" {
			opts.APIKey = apiKey
		}
		if model != "" {
			opts.Model = model
		}
		return gemini.New(opts)
	default:
		opts := openai.Options{BaseURL: a.cfg.OpenAI.BaseURL, APIKey: a.cfg.OpenAI.APIKey, Model: a.cfg.OpenAI.Model}
		if apiKey != "" {
			opts.APIKey = apiKey
		}
		if model != "" {
			opts.Model = model
		}
		return openai.New(opts)
	}
}

func (a *API) Close() error { return a.store.Close() }

func (a *API) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/files", a.handleFiles)
	mux.HandleFunc("/api/ide/files", a.handleTree)
	mux.HandleFunc("/api/ide/file", a.handleReadFile)
	mux.HandleFunc("/api/ide/fs/create", a.handleFSCreate)
	mux.HandleFunc("/api/ide/fs/edit", a.handleFSEdit)
	mux.HandleFunc("/api/ide/fs/delete", a.handleFSDelete)
	mux.HandleFunc("/api/ide/fs/explain", a.handleFSExplain)
	mux.HandleFunc("/api/ide/download", a.handleDownload)
	mux.HandleFunc("/api/ide/plan", a.handlePlan)
	mux.HandleFunc("/api/ide/preview", a.handlePreview)
	mux.HandleFunc("/api/issues", a.handleIssues)
	mux.HandleFunc("/api/packages/install", a.handlePackages)
	mux.HandleFunc("/api/agent/execute", a.handleAgentExecute)
	mux.HandleFunc("/api/ai/verify", a.handleAIVerify)
	mux.HandleFunc("/api/generate-project", a.handleGenerateProject)
	return mux
}

// Handler wraps the route table with request logging.
func (a *API) Handler() http.Handler {
	return logMiddleware(a.lg, a.mux())
}

// Run serves the API until ctx is canceled, then drains connections.
func Run(ctx context.Context, cfg *config.Config) error {
	a, err := NewAPI(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	a.lg.Info("server.start", "addr", cfg.ListenAddr, "project_root", cfg.ProjectRoot)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		a.lg.Info("server.stop")
		return nil
	}
}

func (a *API) authorize(w http.ResponseWriter, r *http.Request) bool {
	tok := a.cfg.AuthToken
	if tok == "" {
		return true
	}
	hdr := r.Header.Get("Authorization")
	if strings.HasPrefix(hdr, "Bearer ") && strings.TrimSpace(hdr[len("Bearer "):]) == tok {
		return true
	}
	if r.URL.Query().Get("token") == tok {
		return true
	}
	writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeError(w http.ResponseWriter, status int, errStr, message string) {
	writeJSON(w, status, apiError{Error: errStr, Message: message, Code: status})
}

// writeFSError maps sandbox and mutation failures onto HTTP statuses.
func writeFSError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fsops.ErrMissingPath):
		writeError(w, http.StatusBadRequest, "invalid_request", "path required")
	case errors.Is(err, fsops.ErrInvalidPath), errors.Is(err, fsops.ErrPathEscape):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, fsops.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, fsops.ErrNotAFile):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	nbytes int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.nbytes += n
	return n, err
}

func logMiddleware(lg *mylog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		lg.Info("http.req",
			"req_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"remoteIP", clientIP(r),
			"status", rec.status,
			"duration_ms", int(time.Since(start)/time.Millisecond),
			"bytes", rec.nbytes,
		)
	})
}

// clientIP extracts the best-effort client IP from headers or RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		return rip
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		return host[:i]
	}
	return host
}
