// Package executor implements the shim's dispatch logic:
// determine which tool a shim invocation stands in for, resolve its
// effective Image, reroute package-manager global mutations through the
// interceptor (§4.I), and exec the resolved binary with a rebuilt PATH.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/voltajs/volta/src/internal/constants"
	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/image"
	"github.com/voltajs/volta/src/internal/interceptor"
	"github.com/voltajs/volta/src/internal/pathenv"
	"github.com/voltajs/volta/src/internal/pkginstall"
	"github.com/voltajs/volta/src/internal/session"
	"github.com/voltajs/volta/src/internal/source"
	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/voltajs/volta/src/internal/version"
)

// packageManagerKinds are the binaries the interceptor may reroute (spec
// §4.H step 5: "B is a package-manager binary").
var packageManagerKinds = map[toolkind.Kind]bool{
	toolkind.Npm:  true,
	toolkind.Pnpm: true,
	toolkind.Yarn: true,
}

// Executor dispatches one shim invocation.
type Executor struct {
	sess      *session.Session
	registry  *toolchain.Registry
	installer *pkginstall.Installer
}

// New builds an Executor over the given Session, Provider registry, and
// package Installer.
func New(sess *session.Session, registry *toolchain.Registry, installer *pkginstall.Installer) *Executor {
	return &Executor{sess: sess, registry: registry, installer: installer}
}

// Run is the shim's entire control flow for one invocation: argv[0] is the
// shim's own invoked name (before stripping any directory/extension), argv
// is everything the shim was called with (argv[1:] is forwarded to the
// resolved binary). It never returns under normal operation: either it
// exec-replaces the process, or it returns an exit code for a lifecycle
// action or a failure that didn't make it to exec.
func (e *Executor) Run(ctx context.Context, argv []string) int {
	if len(argv) == 0 {
		ui.Error("shim invoked with no argv[0]")
		return 1
	}
	binName := shimBaseName(argv[0])
	rest := argv[1:]

	if bypass := os.Getenv(constants.EnvVoltaBypass); bypass != "" {
		return e.runBypass(binName, rest)
	}

	if os.Getenv(constants.EnvRecursionGuard) == binName {
		err := errs.New(errs.RecursionLimit, "dispatch shim", fmt.Errorf("%s already set the recursion guard to itself", binName)).WithTool(binName, "")
		ui.Error("%v", err)
		return err.Kind.ExitCode()
	}
	if err := os.Setenv(constants.EnvRecursionGuard, binName); err != nil {
		ui.Error("set recursion guard: %v", err)
		return 1
	}

	tool, perr := e.determineContext(binName)
	if perr != nil {
		ui.Error("%v", perr)
		if ve, ok := perr.(*errs.Error); ok {
			return ve.Kind.ExitCode()
		}
		return 1
	}

	img, perr := e.resolveImage(tool)
	if perr != nil {
		ui.Error("%v", perr)
		if ve, ok := perr.(*errs.Error); ok {
			return ve.Kind.ExitCode()
		}
		return 1
	}

	if tool.record == nil && packageManagerKinds[tool.kind] && os.Getenv(constants.EnvVoltaUnsafe) == "" {
		if exitCode, handled := e.interceptGlobalMutation(ctx, tool.kind, img, rest); handled {
			return exitCode
		}
	}

	execPath, err := e.resolveExecutable(tool, img, binName)
	if err != nil {
		ui.Error("%v", err)
		return 1
	}

	childEnv, err := e.buildChildEnv(tool, img, binName)
	if err != nil {
		ui.Error("build child environment: %v", err)
		return 1
	}

	return execReplace(execPath, append([]string{execPath}, rest...), childEnv)
}

// Located is what Locate resolves a binary name to, without exec'ing it.
type Located struct {
	Kind        toolkind.Kind
	PackageName string // set only when Kind == toolkind.Package
	Version     string
	Path        string
}

// Locate runs the same dispatch logic Run uses (context determination, image
// resolution, executable resolution) but stops short of exec'ing, for
// commands that report on a binary rather than invoke it.
func (e *Executor) Locate(binName string) (Located, error) {
	tool, err := e.determineContext(binName)
	if err != nil {
		return Located{}, err
	}
	img, err := e.resolveImage(tool)
	if err != nil {
		return Located{}, err
	}
	execPath, err := e.resolveExecutable(tool, img, binName)
	if err != nil {
		return Located{}, err
	}

	loc := Located{Kind: tool.kind, Path: execPath}
	if tool.record != nil {
		loc.PackageName = tool.record.Name
		loc.Version = tool.record.Version
	} else if sourced, ok := img.Get(tool.kind); ok {
		loc.Version = sourced.Value.String()
	}
	return loc, nil
}

// RunOverride is volta run's entry point: it resolves an Image the way any
// invocation would (Project > Default), but with override spliced in ahead
// of both (the CommandLine layer), then execs argv[0] with argv[1:].
// argv[0] is located as a platform tool if it names one, as a package binary
// if an installed package owns it, or by searching the rebuilt PATH.
func (e *Executor) RunOverride(ctx context.Context, override image.Override, argv []string) int {
	if len(argv) == 0 {
		ui.Error("run requires a command")
		return 1
	}
	name := argv[0]

	proj, err := e.sess.Project()
	if err != nil {
		ui.Error("%v", err)
		return 1
	}
	def, err := e.sess.DefaultPlatform()
	if err != nil {
		ui.Error("%v", err)
		return 1
	}
	img, err := (image.Resolver{Default: def}).Resolve(proj, override)
	if err != nil {
		ui.Error("%v", err)
		return 1
	}

	var tool toolContext
	if kind, ok := toolkind.Parse(name); ok && kind != toolkind.Package {
		tool = toolContext{kind: kind}
	} else if record, ferr := e.installer.FindOwner(name); ferr == nil && record != nil {
		tool = toolContext{kind: toolkind.Package, record: record}
	}

	childEnv, err := e.buildChildEnv(tool, img, name)
	if err != nil {
		ui.Error("build child environment: %v", err)
		return 1
	}

	execPath, err := e.resolveExecutable(tool, img, name)
	if err != nil {
		execPath, err = lookupInEnv(childEnv, name)
		if err != nil {
			ui.Error("%v", err)
			return 1
		}
	}

	return execReplace(execPath, append([]string{execPath}, argv[1:]...), childEnv)
}

func lookupInEnv(env []string, name string) (string, error) {
	var path string
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			path = strings.TrimPrefix(kv, "PATH=")
			break
		}
	}
	for _, dir := range pathenv.Split(path) {
		candidate := filepath.Join(dir, name)
		if goruntime.GOOS == constants.OSWindows {
			candidate += constants.ExtExe
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errs.New(errs.NoSuchTool, "run command", fmt.Errorf("%q not found on PATH", name)).WithTool(name, "")
}

// toolContext identifies what a shim invocation stands in for: either a
// platform tool co-resident in an Image, or a third-party package binary
// owned by a Package record.
type toolContext struct {
	kind   toolkind.Kind
	record *pkginstall.Record // non-nil for a package-binary invocation
}

func (e *Executor) determineContext(binName string) (toolContext, error) {
	for _, p := range e.registry.GetAll() {
		for _, s := range p.Shims() {
			if s == binName {
				return toolContext{kind: p.Kind()}, nil
			}
		}
	}

	record, err := e.installer.FindOwner(binName)
	if err != nil {
		return toolContext{}, err
	}
	if record == nil {
		return toolContext{}, errs.New(errs.NoSuchTool, "dispatch shim", fmt.Errorf("no platform tool or installed package exposes %q", binName)).WithTool(binName, "")
	}
	return toolContext{kind: toolkind.Package, record: record}, nil
}

// resolveImage resolves the effective Image for this invocation: a package
// binary uses its own pinned image, everything else goes
// through the normal four-layer Resolver.
func (e *Executor) resolveImage(tool toolContext) (image.Image, error) {
	if tool.record != nil {
		return imageFromRecord(tool.record.Image)
	}

	proj, err := e.sess.Project()
	if err != nil {
		return image.Image{}, err
	}
	def, err := e.sess.DefaultPlatform()
	if err != nil {
		return image.Image{}, err
	}
	resolver := image.Resolver{Default: def}
	return resolver.Resolve(proj, image.Override{})
}

func imageFromRecord(ri pkginstall.RecordImage) (image.Image, error) {
	runtimeV, err := version.Parse(ri.Runtime)
	if err != nil {
		return image.Image{}, errs.New(errs.BadManifest, "resolve package image", err)
	}
	img := image.Image{Runtime: source.Of(runtimeV, source.Binary)}
	img.Npm = optionalVersion(ri.Npm)
	img.Pnpm = optionalVersion(ri.Pnpm)
	img.Yarn = optionalVersion(ri.Yarn)
	return img, nil
}

func optionalVersion(raw string) *source.Sourced[version.Version] {
	if raw == "" {
		return nil
	}
	v, err := version.Parse(raw)
	if err != nil {
		return nil
	}
	s := source.Of(v, source.Binary)
	return &s
}

// interceptGlobalMutation classifies rest for a package-manager kind and, if
// it names a global intent, runs the corresponding Tool lifecycle operation
// instead of exec'ing. The bool return reports whether it handled (and thus
// the caller should stop) the invocation.
func (e *Executor) interceptGlobalMutation(ctx context.Context, kind toolkind.Kind, img image.Image, rest []string) (int, bool) {
	yarnIsBerry := kind == toolkind.Yarn && isYarnBerry(img)
	intent := interceptor.Classify(kind, yarnIsBerry, rest)

	switch intent.Kind {
	case interceptor.GlobalInstall, interceptor.Link:
		var lastErr error
		for _, pkg := range intent.Packages {
			name, spec := splitPackageSpec(pkg)
			if _, err := e.installer.Install(ctx, name, spec, img); err != nil {
				lastErr = err
			}
		}
		if lastErr != nil {
			ui.Error("%v", lastErr)
			if ve, ok := lastErr.(*errs.Error); ok {
				return ve.Kind.ExitCode(), true
			}
			return 1, true
		}
		return 0, true

	case interceptor.GlobalUninstall:
		var lastErr error
		for _, pkg := range intent.Packages {
			name, _ := splitPackageSpec(pkg)
			if err := e.installer.Uninstall(name); err != nil {
				lastErr = err
			}
		}
		if lastErr != nil {
			ui.Error("%v", lastErr)
			return 1, true
		}
		return 0, true

	case interceptor.Unlink:
		// No package name was parsed out (spec treats a bare global unlink
		// as removing the current link); nothing for the installer to do
		// without a target, so treat it as a no-op success.
		return 0, true

	default:
		return 0, false
	}
}

func isYarnBerry(img image.Image) bool {
	yarn, ok := img.Get(toolkind.Yarn)
	if !ok {
		return false
	}
	v, err := version.Parse("2.0.0")
	if err != nil {
		return false
	}
	return !yarn.Value.LessThan(v)
}

// splitPackageSpec splits "name@version" into name and a version.Spec,
// defaulting to version.None when no "@" is present (or the package is
// scoped, e.g. "@scope/name" with no trailing version).
func splitPackageSpec(pkg string) (string, version.Spec) {
	if strings.HasPrefix(pkg, "@") {
		rest := pkg[1:]
		if idx := strings.Index(rest, "@"); idx >= 0 {
			name := "@" + rest[:idx]
			spec, _ := version.ParseSpec(rest[idx+1:])
			return name, spec
		}
		return pkg, version.None
	}
	if idx := strings.Index(pkg, "@"); idx >= 0 {
		spec, _ := version.ParseSpec(pkg[idx+1:])
		return pkg[:idx], spec
	}
	return pkg, version.None
}

// resolveExecutable locates the on-disk binary backing this invocation: the
// image tool's own executable for a platform-tool invocation (adjusted for
// a shim name that differs from the provider's main executable, e.g.
// "npx"), or the package's private install prefix bin/ for a package
// binary.
func (e *Executor) resolveExecutable(tool toolContext, img image.Image, binName string) (string, error) {
	if tool.record != nil {
		prefixBin := filepath.Join(e.installer.Layout().PackageDir(tool.record.Name), "bin", binName)
		if goruntime.GOOS == constants.OSWindows {
			prefixBin += constants.ExtExe
		}
		if _, err := os.Stat(prefixBin); err != nil {
			return "", errs.New(errs.NoSuchTool, "resolve package binary", err).WithTool(binName, "")
		}
		return prefixBin, nil
	}

	provider, err := e.registry.Get(tool.kind)
	if err != nil {
		return "", errs.New(errs.Unsupported, "resolve executable", err).WithTool(binName, "")
	}
	sourced, ok := img.Get(tool.kind)
	if !ok {
		return "", errs.New(errs.NoPlatform, "resolve executable", fmt.Errorf("image has no %s", tool.kind)).WithTool(binName, "")
	}
	root := e.sess.Inventory().UnpackedRoot(tool.kind, sourced.Value.String())
	mainExec := filepath.Join(root, provider.ExecutableRelPath())

	if filepath.Base(mainExec) == binName {
		return mainExec, nil
	}
	// A provider can expose more than one shim name (e.g. npm also exposes
	// npx); the companion binary lives alongside the main one.
	sibling := filepath.Join(filepath.Dir(mainExec), binName)
	if _, err := os.Stat(sibling); err == nil {
		return sibling, nil
	}
	return mainExec, nil
}

// buildChildEnv constructs the environment the resolved binary execs with:
// every image tool's own directory prepended to PATH ahead of the inherited
// PATH, per the documented ordering guarantee.
func (e *Executor) buildChildEnv(tool toolContext, img image.Image, binName string) ([]string, error) {
	var prepend []string

	if tool.record != nil {
		prepend = append(prepend, filepath.Join(e.installer.Layout().PackageDir(tool.record.Name), "bin"))
	}
	for _, kind := range toolkind.PlatformKinds() {
		sourced, ok := img.Get(kind)
		if !ok {
			continue
		}
		provider, err := e.registry.Get(kind)
		if err != nil {
			continue
		}
		root := e.sess.Inventory().UnpackedRoot(kind, sourced.Value.String())
		prepend = append(prepend, filepath.Dir(filepath.Join(root, provider.ExecutableRelPath())))
	}

	path := pathenv.Prepend(os.Getenv("PATH"), prepend...)
	return replacePathInEnv(os.Environ(), path), nil
}

func (e *Executor) runBypass(binName string, rest []string) int {
	l := e.sess.Layout()
	strippedPath := pathenv.Remove(os.Getenv("PATH"), l.Bin)

	for _, dir := range pathenv.Split(strippedPath) {
		candidate := filepath.Join(dir, binName)
		if goruntime.GOOS == constants.OSWindows {
			candidate += constants.ExtExe
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			env := replacePathInEnv(os.Environ(), strippedPath)
			return execReplace(candidate, append([]string{candidate}, rest...), env)
		}
	}

	err := errs.New(errs.BypassToolNotFound, "bypass dispatch", fmt.Errorf("%s not found outside Volta's PATH entries", binName)).WithTool(binName, "")
	ui.Error("%v", err)
	return err.Kind.ExitCode()
}

func replacePathInEnv(env []string, path string) []string {
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			out = append(out, "PATH="+path)
			found = true
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, "PATH="+path)
	}
	return out
}

func shimBaseName(arg0 string) string {
	name := filepath.Base(arg0)
	if goruntime.GOOS == constants.OSWindows {
		name = strings.TrimSuffix(name, constants.ExtExe)
	}
	return name
}
