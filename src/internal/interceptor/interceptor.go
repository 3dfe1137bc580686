// Package interceptor classifies a package manager's argv into a Local
// passthrough or one of the global-mutation intents the Executor reroutes
// through the Tool lifecycle, instead of exec'ing the package
// manager itself.
package interceptor

import (
	"strings"

	"github.com/voltajs/volta/src/internal/toolkind"
)

// IntentKind is the closed set of classifications argv can produce.
type IntentKind int

const (
	// Local means the Executor should exec the package manager normally.
	Local IntentKind = iota
	GlobalInstall
	GlobalUninstall
	Link
	Unlink
)

func (k IntentKind) String() string {
	switch k {
	case Local:
		return "local"
	case GlobalInstall:
		return "global-install"
	case GlobalUninstall:
		return "global-uninstall"
	case Link:
		return "link"
	case Unlink:
		return "unlink"
	default:
		return "unknown"
	}
}

// Intent is the result of classifying a package manager invocation.
type Intent struct {
	Kind     IntentKind
	Packages []string // package specs for GlobalInstall/GlobalUninstall; ["."] for Link
}

// Classify parses argv (everything after the binary name) for the package
// manager identified by kind. yarnIsBerry only matters when kind is Yarn,
// since yarn berry never performs a global install.
func Classify(kind toolkind.Kind, yarnIsBerry bool, argv []string) Intent {
	argv = beforeDoubleDash(argv)
	if len(argv) == 0 {
		return Intent{Kind: Local}
	}

	switch kind {
	case toolkind.Npm:
		return classifyNpm(argv)
	case toolkind.Pnpm:
		return classifyPnpm(argv)
	case toolkind.Yarn:
		if yarnIsBerry {
			return Intent{Kind: Local}
		}
		return classifyYarnClassic(argv)
	default:
		return Intent{Kind: Local}
	}
}

// beforeDoubleDash drops everything from a literal "--" argument onward;
// arguments after -- are not parsed.
func beforeDoubleDash(argv []string) []string {
	for i, a := range argv {
		if a == "--" {
			return argv[:i]
		}
	}
	return argv
}

func classifyNpm(argv []string) Intent {
	sub := argv[0]
	rest := argv[1:]
	packages := positionals(rest)

	switch sub {
	case "install", "i", "add":
		if hasGlobalFlag(rest) {
			return Intent{Kind: GlobalInstall, Packages: packages}
		}
	case "uninstall", "rm", "remove":
		if hasGlobalFlag(rest) {
			return Intent{Kind: GlobalUninstall, Packages: packages}
		}
	case "link":
		if len(packages) == 0 {
			return Intent{Kind: Link, Packages: []string{"."}}
		}
	case "unlink":
		if len(packages) == 0 {
			return Intent{Kind: Unlink}
		}
	}
	return Intent{Kind: Local}
}

func classifyPnpm(argv []string) Intent {
	sub := argv[0]
	rest := argv[1:]
	packages := positionals(rest)

	switch sub {
	case "add", "install":
		if hasGlobalFlag(rest) {
			return Intent{Kind: GlobalInstall, Packages: packages}
		}
	case "remove", "uninstall", "rm":
		if hasGlobalFlag(rest) {
			return Intent{Kind: GlobalUninstall, Packages: packages}
		}
	case "link":
		if hasGlobalFlag(rest) {
			return Intent{Kind: Link, Packages: []string{"."}}
		}
	}
	return Intent{Kind: Local}
}

func classifyYarnClassic(argv []string) Intent {
	if len(argv) >= 2 && argv[0] == "global" {
		rest := argv[2:]
		packages := positionals(rest)
		switch argv[1] {
		case "add", "upgrade":
			return Intent{Kind: GlobalInstall, Packages: packages}
		case "remove":
			return Intent{Kind: GlobalUninstall, Packages: packages}
		}
	}
	switch argv[0] {
	case "link":
		return Intent{Kind: Link, Packages: []string{"."}}
	case "unlink":
		return Intent{Kind: Unlink}
	}
	return Intent{Kind: Local}
}

// hasGlobalFlag reports whether any of npm/pnpm's global-scope flags is
// present among args. A bare "install" with -g and other unrelated flags
// still counts: mixed local+global arguments are treated as global (spec
// §4.I edge case).
func hasGlobalFlag(args []string) bool {
	for _, a := range args {
		switch {
		case a == "-g" || a == "--global":
			return true
		case a == "--location=global":
			return true
		case strings.HasPrefix(a, "--location=") && strings.TrimPrefix(a, "--location=") == "global":
			return true
		}
	}
	return false
}

// positionals returns every arg that is not a flag (does not start with
// "-"), in order, treating a flag's attached value ("--location=global") as
// part of the flag rather than a package spec.
func positionals(args []string) []string {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			continue
		}
		out = append(out, a)
	}
	return out
}
