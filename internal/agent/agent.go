// Package agent turns natural-language commands into file, analysis and
// package operations. A chat provider interprets the command into a single
// structured intent; the executor dispatches it against the sandboxed
// project tree.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ValorSage/ai-app-builder/internal/analyzer"
	"github.com/ValorSage/ai-app-builder/internal/fsops"
	"github.com/ValorSage/ai-app-builder/internal/llm"
	"github.com/ValorSage/ai-app-builder/internal/models"
)

const systemPrompt = `You are a coding assistant integrated into an IDE. You can execute the following operations:

1. CREATE_FILE: Create a new file with content
2. EDIT_FILE: Modify existing file content
3. DELETE_FILE: Delete a file
4. ANALYZE_CODE: Analyze code for issues
5. INSTALL_PACKAGE: Install an npm package
6. UNINSTALL_PACKAGE: Uninstall an npm package
7. LIST_FILES: List all project files

When the user asks you to perform an action, respond with a JSON object containing:
{
  "action": "CREATE_FILE" | "EDIT_FILE" | "DELETE_FILE" | "ANALYZE_CODE" | "INSTALL_PACKAGE" | "UNINSTALL_PACKAGE" | "LIST_FILES" | "EXPLAIN",
  "path": "relative/path/to/file" (for file operations),
  "content": "file content" (for CREATE_FILE or EDIT_FILE),
  "package": "package-name" (for package operations),
  "message": "explanation for the user"
}

Examples:
- "Create a Button component" → {"action": "CREATE_FILE", "path": "components/Button.tsx", "content": "...", "message": "Created Button component"}
- "Install axios" → {"action": "INSTALL_PACKAGE", "package": "axios", "message": "Installing axios..."}
- "Analyze src/app/page.tsx" → {"action": "ANALYZE_CODE", "path": "app/page.tsx", "message": "Analyzing code..."}

Be concise and always provide helpful explanations.`

var (
	fencedJSONRe = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*\\})\\s*```")
	bareJSONRe   = regexp.MustCompile(`(\{[\s\S]*\})`)
)

// ParseIntent extracts the structured intent from a model reply. Replies
// that carry no parseable JSON become EXPLAIN intents with the raw text as
// the message.
func ParseIntent(reply string) models.Intent {
	raw := reply
	if m := fencedJSONRe.FindStringSubmatch(reply); m != nil {
		raw = m[1]
	} else if m := bareJSONRe.FindStringSubmatch(reply); m != nil {
		raw = m[1]
	}
	var intent models.Intent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil || intent.Action == "" {
		return models.Intent{Action: models.ActionExplain, Message: reply}
	}
	return intent
}

// Executor interprets and runs agent commands. The chat provider and the
// filesystem surface are both injected so tests can swap either out.
type Executor struct {
	provider llm.ChatProvider
	mutator  *fsops.Mutator
	walker   *fsops.Walker
	srcRoot  string
}

func NewExecutor(provider llm.ChatProvider, mutator *fsops.Mutator, walker *fsops.Walker, srcRoot string) *Executor {
	return &Executor{provider: provider, mutator: mutator, walker: walker, srcRoot: srcRoot}
}

// Execute asks the provider to interpret command and dispatches the intent.
func (e *Executor) Execute(ctx context.Context, command string) (models.IntentResult, error) {
	reply, err := e.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: command},
	})
	if err != nil {
		return models.IntentResult{}, err
	}
	intent := ParseIntent(reply)
	res, err := e.Dispatch(ctx, intent)
	if err != nil {
		return models.IntentResult{}, err
	}
	res.FullResponse = reply
	return res, nil
}

// Dispatch runs a single already-parsed intent.
func (e *Executor) Dispatch(ctx context.Context, intent models.Intent) (models.IntentResult, error) {
	res := models.IntentResult{Action: intent.Action, Message: intent.Message}

	switch intent.Action {
	case models.ActionCreateFile:
		if intent.Path == "" {
			return res, fmt.Errorf("path required for %s", intent.Action)
		}
		if err := e.mutator.Write(intent.Path, intent.Content); err != nil {
			return res, err
		}
		res.Created = intent.Path

	case models.ActionEditFile:
		if intent.Path == "" {
			return res, fmt.Errorf("path required for %s", intent.Action)
		}
		if err := e.mutator.Write(intent.Path, intent.Content); err != nil {
			return res, err
		}
		res.Edited = intent.Path

	case models.ActionDeleteFile:
		if intent.Path == "" {
			return res, fmt.Errorf("path required for %s", intent.Action)
		}
		if err := e.mutator.Delete(intent.Path); err != nil {
			return res, err
		}
		res.Deleted = intent.Path

	case models.ActionAnalyzeCode:
		if intent.Path == "" {
			return res, fmt.Errorf("path required for %s", intent.Action)
		}
		code, err := e.mutator.Read(intent.Path)
		if err != nil {
			return res, err
		}
		res.Analyzed = intent.Path
		res.Issues = analyzer.Analyze(intent.Path, code)

	case models.ActionInstallPackage, models.ActionUninstallPackage:
		if intent.Package == "" {
			return res, fmt.Errorf("package required for %s", intent.Action)
		}
		res.Package = intent.Package
		// package operations run through the package endpoint; the caller
		// is told to follow up rather than blocking this request on npm
		res.NeedsExecution = true

	case models.ActionListFiles:
		files, err := e.walker.Flat(e.srcRoot)
		if err != nil {
			return res, err
		}
		res.Files = files

	default:
		res.Action = models.ActionExplain
		if res.Message == "" {
			res.Message = strings.TrimSpace(intent.Message)
		}
	}
	return res, nil
}
