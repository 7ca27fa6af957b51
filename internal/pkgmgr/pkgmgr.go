// Package pkgmgr runs npm install/uninstall against the project and reports
// the resulting dependency sets.
package pkgmgr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	ActionInstall   = "install"
	ActionUninstall = "uninstall"
)

var (
	ErrInvalidAction  = errors.New("pkgmgr: action must be install or uninstall")
	ErrInvalidPackage = errors.New("pkgmgr: invalid package name")
)

// npm names plus an optional scope and an optional version/tag suffix.
// Names are validated before they ever reach a command line.
var packageNameRe = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*(@[a-zA-Z0-9^~><=.*+-]+)?$`)

// Result mirrors what the package endpoint returns to the UI.
type Result struct {
	OK              bool              `json:"ok"`
	Package         string            `json:"package"`
	Action          string            `json:"action"`
	Stdout          string            `json:"stdout"`
	Stderr          string            `json:"stderr"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type Manager struct {
	Root    string
	Timeout time.Duration
}

func New(root string) *Manager {
	return &Manager{Root: root, Timeout: 2 * time.Minute}
}

// ValidatePackage reports whether name is safe to pass to npm.
func ValidatePackage(name string) error {
	if name == "" || len(name) > 214 || !packageNameRe.MatchString(name) {
		return ErrInvalidPackage
	}
	return nil
}

// Run installs or uninstalls the named package and reads back package.json.
func (m *Manager) Run(ctx context.Context, action, name string) (Result, error) {
	if action != ActionInstall && action != ActionUninstall {
		return Result{}, ErrInvalidAction
	}
	if err := ValidatePackage(name); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "npm", action, name)
	cmd.Dir = m.Root
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{Stderr: stderr.String()}, fmt.Errorf("npm %s %s: %w", action, name, err)
	}

	deps, devDeps, err := m.readDependencies()
	if err != nil {
		return Result{}, err
	}
	return Result{
		OK:              true,
		Package:         name,
		Action:          action,
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		Dependencies:    deps,
		DevDependencies: devDeps,
	}, nil
}

func (m *Manager) readDependencies() (map[string]string, map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(m.Root, "package.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("read package.json: %w", err)
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, nil, fmt.Errorf("parse package.json: %w", err)
	}
	if pkg.Dependencies == nil {
		pkg.Dependencies = map[string]string{}
	}
	if pkg.DevDependencies == nil {
		pkg.DevDependencies = map[string]string{}
	}
	return pkg.Dependencies, pkg.DevDependencies, nil
}
