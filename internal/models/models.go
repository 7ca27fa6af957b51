package models

// NodeKind distinguishes tree entries.
type NodeKind string

const (
	KindFile   NodeKind = "file"
	KindFolder NodeKind = "folder"
)

// FileNode is one entry in the project tree returned to the IDE.
// Children is populated for folders only; within a folder, folders sort
// before files and ties break case-insensitively by name.
type FileNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Type     NodeKind   `json:"type"`
	Children []FileNode `json:"children,omitempty"`
}

// IssueSource identifies which analyzer reported an issue.
type IssueSource string

const (
	SourceLinter   IssueSource = "linter"
	SourceCompiler IssueSource = "compiler"
	SourceAI       IssueSource = "ai"
)

// Severity levels follow the UI's traffic-light rendering.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is the merged finding shape shared by all analyzer sources.
// ID is stable per source+location and is the deduplication key.
type Issue struct {
	ID         string      `json:"id"`
	Type       IssueSource `json:"type"`
	Severity   Severity    `json:"severity"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	Column     int         `json:"column,omitempty"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// AnalysisIssue is the narrower shape the AI analysis path produces before
// it is mapped into Issue with a synthesized id.
type AnalysisIssue struct {
	Type       string `json:"type"` // bug|warning|suggestion
	Line       int    `json:"line"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// FileSummary is the explain endpoint's heuristic description of a file.
type FileSummary struct {
	Language  string   `json:"language"`
	LineCount int      `json:"lineCount"`
	Summary   string   `json:"summary"`
	Exports   []string `json:"exports"`
}

// Action names the operations the agent can be asked to perform.
type Action string

const (
	ActionCreateFile       Action = "CREATE_FILE"
	ActionEditFile         Action = "EDIT_FILE"
	ActionDeleteFile       Action = "DELETE_FILE"
	ActionAnalyzeCode      Action = "ANALYZE_CODE"
	ActionInstallPackage   Action = "INSTALL_PACKAGE"
	ActionUninstallPackage Action = "UNINSTALL_PACKAGE"
	ActionListFiles        Action = "LIST_FILES"
	ActionExplain          Action = "EXPLAIN"
)

// Intent is the structured command the LLM derives from natural language.
type Intent struct {
	Action  Action `json:"action"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
	Package string `json:"package,omitempty"`
	Message string `json:"message,omitempty"`
}

// IntentResult carries the executed outcome back to the caller. Fields are
// populated per action; Message is always set so the UI has something to show.
type IntentResult struct {
	Action         Action          `json:"action"`
	Message        string          `json:"message,omitempty"`
	Created        string          `json:"created,omitempty"`
	Edited         string          `json:"edited,omitempty"`
	Deleted        string          `json:"deleted,omitempty"`
	Analyzed       string          `json:"analyzed,omitempty"`
	Issues         []AnalysisIssue `json:"issues,omitempty"`
	Package        string          `json:"package,omitempty"`
	NeedsExecution bool            `json:"needsExecution,omitempty"`
	Files          []string        `json:"files,omitempty"`
	FullResponse   string          `json:"fullResponse,omitempty"`
}

// ArchiveEntry is one synthesized (non-filesystem) entry appended to an export.
type ArchiveEntry struct {
	Name    string
	Content []byte
}
