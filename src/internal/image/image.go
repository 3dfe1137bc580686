// Package image implements Volta's effective-platform model and resolver
// combining a per-invocation override, a binary-origin pin, the
// project manifest, and the user default into one Image, tagging each field
// with the Source that won.
package image

import (
	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/project"
	"github.com/voltajs/volta/src/internal/source"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/version"
)

// Image is the effective platform: the runtime plus whichever package
// managers are pinned alongside it. Every present field's version is
// materialized in the inventory by the time the Executor consumes it.
type Image struct {
	Runtime source.Sourced[version.Version]
	Npm     *source.Sourced[version.Version]
	Pnpm    *source.Sourced[version.Version]
	Yarn    *source.Sourced[version.Version]
}

// Get returns the sourced version for kind, if present in the image.
func (img Image) Get(kind toolkind.Kind) (source.Sourced[version.Version], bool) {
	switch kind {
	case toolkind.Runtime:
		return img.Runtime, true
	case toolkind.Npm:
		if img.Npm != nil {
			return *img.Npm, true
		}
	case toolkind.Pnpm:
		if img.Pnpm != nil {
			return *img.Pnpm, true
		}
	case toolkind.Yarn:
		if img.Yarn != nil {
			return *img.Yarn, true
		}
	}
	return source.Sourced[version.Version]{}, false
}

// Override is a per-invocation platform override (the highest
// precedence layer), e.g. from a `--node <version>`-equivalent flag.
type Override struct {
	Runtime *version.Version
	Npm     *version.Version
	Pnpm    *version.Version
	Yarn    *version.Version
}

func (o Override) isZero() bool {
	return o.Runtime == nil && o.Npm == nil && o.Pnpm == nil && o.Yarn == nil
}

// Resolver combines the four precedence layers into an Image. Each layer is
// optional; Resolve fills any missing slot from the next layer down.
type Resolver struct {
	// BinaryOrigin is the image a packaged CLI was installed with, if the
	// binary being executed is such a package. Nil outside that context.
	BinaryOrigin *project.Platform
	// Default is the user-scoped default platform, read from
	// tools/user/default.json.
	Default project.Platform
}

// Resolve builds the effective Image for proj (may be nil) and override
// (may be zero), per the precedence: CommandLine > Binary > Project
// > Default.
func (r Resolver) Resolve(proj *project.Project, override Override) (Image, error) {
	var projPlatform project.Platform
	if proj != nil {
		projPlatform = proj.Platform
	}

	runtime, ok := r.resolveField(
		override.Runtime,
		fieldOf(r.BinaryOrigin, func(p project.Platform) string { return p.Node }),
		projPlatform.Node,
		r.Default.Node,
	)
	if !ok {
		return Image{}, errs.New(errs.NoPlatform, "resolve platform", errNoRuntime)
	}

	img := Image{Runtime: runtime}
	img.Npm = r.optionalField(override.Npm, fieldOf(r.BinaryOrigin, func(p project.Platform) string { return p.Npm }), projPlatform.Npm, r.Default.Npm)
	img.Pnpm = r.optionalField(override.Pnpm, fieldOf(r.BinaryOrigin, func(p project.Platform) string { return p.Pnpm }), projPlatform.Pnpm, r.Default.Pnpm)
	img.Yarn = r.optionalField(override.Yarn, fieldOf(r.BinaryOrigin, func(p project.Platform) string { return p.Yarn }), projPlatform.Yarn, r.Default.Yarn)

	return img, nil
}

func fieldOf(p *project.Platform, get func(project.Platform) string) string {
	if p == nil {
		return ""
	}
	return get(*p)
}

// resolveField applies the four-layer precedence to the runtime field,
// which is mandatory: returns ok=false if every layer is empty.
func (r Resolver) resolveField(override *version.Version, binary, proj, def string) (source.Sourced[version.Version], bool) {
	if override != nil {
		return source.Of(*override, source.CommandLine), true
	}
	if binary != "" {
		if v, err := version.Parse(binary); err == nil {
			return source.Of(v, source.Binary), true
		}
	}
	if proj != "" {
		if v, err := version.Parse(proj); err == nil {
			return source.Of(v, source.Project), true
		}
	}
	if def != "" {
		if v, err := version.Parse(def); err == nil {
			return source.Of(v, source.Default), true
		}
	}
	return source.Sourced[version.Version]{}, false
}

// optionalField is resolveField for the optional package-manager slots: a
// slot that every layer leaves unset simply stays absent from the Image.
func (r Resolver) optionalField(override *version.Version, binary, proj, def string) *source.Sourced[version.Version] {
	sourced, ok := r.resolveField(override, binary, proj, def)
	if !ok {
		return nil
	}
	return &sourced
}

var errNoRuntime = noPlatformError{}

type noPlatformError struct{}

func (noPlatformError) Error() string {
	return "no runtime platform resolved from override, binary origin, project, or default"
}
