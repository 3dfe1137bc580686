package cmd

import (
	"strings"

	"github.com/voltajs/volta/src/internal/project"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/version"
)

// toolArg is a single "<tool>[@version]" CLI argument, resolved to either a
// platform tool kind or a third-party package name.
type toolArg struct {
	Kind    toolkind.Kind
	Package string // set only when Kind == toolkind.Package
	Spec    version.Spec
}

func (t toolArg) DisplayName() string {
	if t.Kind == toolkind.Package {
		return t.Package
	}
	return t.Kind.String()
}

// parseToolArg splits "name@spec" the way npm does (a leading "@" marks a
// scoped package name, not a version separator), then classifies name as a
// platform tool or a package.
func parseToolArg(raw string) (toolArg, error) {
	name, rawSpec := splitNameSpec(raw)

	spec, err := version.ParseSpec(rawSpec)
	if err != nil {
		return toolArg{}, err
	}

	if kind, ok := toolkind.Parse(name); ok && kind != toolkind.Package {
		return toolArg{Kind: kind, Spec: spec}, nil
	}
	return toolArg{Kind: toolkind.Package, Package: name, Spec: spec}, nil
}

// setPlatformField writes exact into p's field for kind. Only platform
// tool kinds are meaningful here; Package is a no-op.
func setPlatformField(p *project.Platform, kind toolkind.Kind, exact string) {
	switch kind {
	case toolkind.Runtime:
		p.Node = exact
	case toolkind.Npm:
		p.Npm = exact
	case toolkind.Pnpm:
		p.Pnpm = exact
	case toolkind.Yarn:
		p.Yarn = exact
	}
}

func splitNameSpec(raw string) (name, spec string) {
	if strings.HasPrefix(raw, "@") {
		rest := raw[1:]
		if idx := strings.Index(rest, "@"); idx >= 0 {
			return "@" + rest[:idx], rest[idx+1:]
		}
		return raw, ""
	}
	if idx := strings.Index(raw, "@"); idx >= 0 {
		return raw[:idx], raw[idx+1:]
	}
	return raw, ""
}
