// Package hooks implements Volta's user-configurable URL/command
// indirections for version indexing and distribution download.
// A Config is loaded once per Session from the layered project < user merge
// of hooks.json files.
package hooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/voltajs/volta/src/internal/constants"
	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/toolkind"
)

// Hook is one of Prefix, Template, or Command, the closed set
// allows for resolving a URL.
type Hook struct {
	Prefix   string   `json:"prefix,omitempty"`
	Template string   `json:"template,omitempty"`
	Command  []string `json:"bin,omitempty"`
}

func (h Hook) isZero() bool {
	return h.Prefix == "" && h.Template == "" && len(h.Command) == 0
}

// ToolHooks groups the hooks available for one ToolKind.
type ToolHooks struct {
	Index  *Hook `json:"index,omitempty"`
	Distro *Hook `json:"distro,omitempty"`
	Latest *Hook `json:"latest,omitempty"`
	LTS    *Hook `json:"lts,omitempty"`
}

// file is the on-disk shape of hooks.json, keyed by tool kind name.
type file struct {
	Node    *ToolHooks `json:"node,omitempty"`
	Npm     *ToolHooks `json:"npm,omitempty"`
	Pnpm    *ToolHooks `json:"pnpm,omitempty"`
	Yarn    *ToolHooks `json:"yarn,omitempty"`
	Package *ToolHooks `json:"package,omitempty"`
}

// Config is the merged (project < user) hooks configuration for a session.
type Config struct {
	byKind map[toolkind.Kind]*ToolHooks
}

// Placeholders substituted into a Template hook's URL pattern.
type Placeholders struct {
	Version  string
	Filename string
	OS       string
	Arch     string
}

// Load reads and merges hooks.json from the project path (if non-empty) and
// the user path (if present), project entries taking precedence field by
// field over user entries. Missing files are not an error.
func Load(projectPath, userPath string) (*Config, error) {
	userFile, err := readFile(userPath)
	if err != nil {
		return nil, err
	}
	projectFile, err := readFile(projectPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{byKind: map[toolkind.Kind]*ToolHooks{}}
	kinds := append(append([]toolkind.Kind{}, toolkind.PlatformKinds()...), toolkind.Package)
	for _, kind := range kinds {
		merged := mergeToolHooks(pick(userFile, kind), pick(projectFile, kind))
		if merged != nil {
			cfg.byKind[kind] = merged
		}
	}
	return cfg, nil
}

func readFile(path string) (*file, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.New(errs.BadHooks, "load hooks", err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errs.New(errs.BadHooks, "parse hooks", err)
	}
	return &f, nil
}

func pick(f *file, kind toolkind.Kind) *ToolHooks {
	if f == nil {
		return nil
	}
	switch kind {
	case toolkind.Runtime:
		return f.Node
	case toolkind.Npm:
		return f.Npm
	case toolkind.Pnpm:
		return f.Pnpm
	case toolkind.Yarn:
		return f.Yarn
	case toolkind.Package:
		return f.Package
	default:
		return nil
	}
}

// mergeToolHooks layers project over user, field by field; a nil hook on
// either side falls through to the other.
func mergeToolHooks(userHooks, projectHooks *ToolHooks) *ToolHooks {
	if userHooks == nil && projectHooks == nil {
		return nil
	}
	merged := &ToolHooks{}
	merged.Index = mergeField(userField(userHooks, func(h *ToolHooks) *Hook { return h.Index }), projectField(projectHooks, func(h *ToolHooks) *Hook { return h.Index }))
	merged.Distro = mergeField(userField(userHooks, func(h *ToolHooks) *Hook { return h.Distro }), projectField(projectHooks, func(h *ToolHooks) *Hook { return h.Distro }))
	merged.Latest = mergeField(userField(userHooks, func(h *ToolHooks) *Hook { return h.Latest }), projectField(projectHooks, func(h *ToolHooks) *Hook { return h.Latest }))
	merged.LTS = mergeField(userField(userHooks, func(h *ToolHooks) *Hook { return h.LTS }), projectField(projectHooks, func(h *ToolHooks) *Hook { return h.LTS }))
	return merged
}

func userField(h *ToolHooks, get func(*ToolHooks) *Hook) *Hook {
	if h == nil {
		return nil
	}
	return get(h)
}

func projectField(h *ToolHooks, get func(*ToolHooks) *Hook) *Hook {
	if h == nil {
		return nil
	}
	return get(h)
}

func mergeField(user, project *Hook) *Hook {
	if project != nil {
		return project
	}
	return user
}

// For returns the merged ToolHooks for a kind, or nil if none were
// configured.
func (c *Config) For(kind toolkind.Kind) *ToolHooks {
	if c == nil {
		return nil
	}
	return c.byKind[kind]
}

// Resolve executes a Hook, producing a URL (for Prefix/Template) or the
// trimmed single-line stdout of a Command hook.
func Resolve(h *Hook, p Placeholders) (string, error) {
	if h == nil || h.isZero() {
		return "", errs.New(errs.HookBadSpec, "resolve hook", fmt.Errorf("no hook configured"))
	}

	switch {
	case h.Prefix != "":
		return h.Prefix + p.Filename, nil

	case h.Template != "":
		out := h.Template
		out = strings.ReplaceAll(out, "{{version}}", p.Version)
		out = strings.ReplaceAll(out, "{{filename}}", p.Filename)
		out = strings.ReplaceAll(out, "{{os}}", p.OS)
		out = strings.ReplaceAll(out, "{{arch}}", p.Arch)
		return out, nil

	case len(h.Command) > 0:
		return runCommandHook(h.Command)

	default:
		return "", errs.New(errs.HookBadSpec, "resolve hook", fmt.Errorf("hook has no variant set"))
	}
}

// runCommandHook runs argv with a clean environment that excludes Volta's
// recursion guard, and reads a URL from its trimmed stdout.
func runCommandHook(argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errs.New(errs.HookBadSpec, "run command hook", fmt.Errorf("empty command"))
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = cleanEnv()

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", errs.New(errs.HookFailed, "run command hook", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	return strings.TrimSpace(lines[0]), nil
}

func cleanEnv() []string {
	env := os.Environ()
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if strings.HasPrefix(kv, constants.EnvRecursionGuard+"=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}
