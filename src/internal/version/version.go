// Package version implements Volta's Version and VersionSpec data model
// Version wraps a fully-qualified semver triple; VersionSpec is
// the closed sum type a user-facing version argument parses into.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a fully-qualified semver triple with optional pre-release and
// build metadata. Ordering follows standard semver precedence.
type Version struct {
	inner *semver.Version
}

// Parse parses a version string (with or without a leading "v") into a
// Version.
func Parse(raw string) (Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	return Version{inner: v}, nil
}

// MustParse panics on an invalid version; used for built-in constants only.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.inner == nil {
		return ""
	}
	return v.inner.String()
}

// Compare returns -1, 0, or 1 following standard semver precedence.
func (v Version) Compare(other Version) int {
	return v.inner.Compare(other.inner)
}

// LessThan reports whether v orders before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// IsZero reports whether this Version was never parsed.
func (v Version) IsZero() bool {
	return v.inner == nil
}

// IsPrerelease reports whether the version carries a pre-release component.
func (v Version) IsPrerelease() bool {
	return v.inner != nil && v.inner.Prerelease() != ""
}

// Highest returns the highest of the given versions, or a zero Version if
// the slice is empty.
func Highest(versions []Version) Version {
	var best Version
	for _, v := range versions {
		if best.IsZero() || v.Compare(best) > 0 {
			best = v
		}
	}
	return best
}

// Tag is the closed set of symbolic version tags.
type Tag struct {
	kind   tagKind
	custom string
}

type tagKind int

const (
	tagLatest tagKind = iota
	tagLTS
	tagCustom
)

var (
	Latest = Tag{kind: tagLatest}
	LTS    = Tag{kind: tagLTS}
)

// CustomTag constructs a Tag::Custom(label).
func CustomTag(label string) Tag {
	return Tag{kind: tagCustom, custom: label}
}

func (t Tag) IsLatest() bool { return t.kind == tagLatest }
func (t Tag) IsLTS() bool    { return t.kind == tagLTS }
func (t Tag) IsCustom() bool { return t.kind == tagCustom }
func (t Tag) Label() string  { return t.custom }

func (t Tag) String() string {
	switch t.kind {
	case tagLatest:
		return "latest"
	case tagLTS:
		return "lts"
	default:
		return t.custom
	}
}

// Spec is VersionSpec: None, Exact(v), Range(r), or Tag(t).
type Spec struct {
	kind  specKind
	exact Version
	rng   *semver.Constraints
	rngS  string
	tag   Tag
}

type specKind int

const (
	specNone specKind = iota
	specExact
	specRange
	specTag
)

// None is the unspecified VersionSpec.
var None = Spec{kind: specNone}

// Exact builds VersionSpec::Exact(v).
func Exact(v Version) Spec {
	return Spec{kind: specExact, exact: v}
}

// TagSpec builds VersionSpec::Tag(t).
func TagSpec(t Tag) Spec {
	return Spec{kind: specTag, tag: t}
}

// ParseSpec parses a user-facing version argument into a Spec. Accepts:
// empty string (None), an exact semver ("18.16.0"), a range predicate
// ("^18", "~18.16", ">=16 <19"), or a tag ("latest", "lts", or a custom
// label such as a dist-tag).
func ParseSpec(raw string) (Spec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return None, nil
	}

	switch strings.ToLower(raw) {
	case "latest":
		return TagSpec(Latest), nil
	case "lts":
		return TagSpec(LTS), nil
	}

	if v, err := Parse(raw); err == nil {
		return Exact(v), nil
	}

	if c, err := semver.NewConstraint(raw); err == nil {
		return Spec{kind: specRange, rng: c, rngS: raw}, nil
	}

	// Anything else is treated as a custom tag/dist-tag label (e.g. "next").
	return TagSpec(CustomTag(raw)), nil
}

func (s Spec) IsNone() bool  { return s.kind == specNone }
func (s Spec) IsExact() bool { return s.kind == specExact }
func (s Spec) IsRange() bool { return s.kind == specRange }
func (s Spec) IsTag() bool   { return s.kind == specTag }

// ExactVersion returns the exact version for an Exact spec.
func (s Spec) ExactVersion() Version { return s.exact }

// TagValue returns the tag for a Tag spec.
func (s Spec) TagValue() Tag { return s.tag }

// RangeString returns the original range predicate text.
func (s Spec) RangeString() string { return s.rngS }

// Satisfies reports whether v satisfies a Range spec's predicate.
func (s Spec) Satisfies(v Version) bool {
	if s.kind != specRange {
		return false
	}
	return s.rng.Check(v.inner)
}

// HighestSatisfying returns the highest version in candidates satisfying
// this Range spec, and whether any candidate matched.
func (s Spec) HighestSatisfying(candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, v := range candidates {
		if s.Satisfies(v) {
			if !found || v.Compare(best) > 0 {
				best = v
				found = true
			}
		}
	}
	return best, found
}

func (s Spec) String() string {
	switch s.kind {
	case specNone:
		return ""
	case specExact:
		return s.exact.String()
	case specRange:
		return s.rngS
	case specTag:
		return s.tag.String()
	default:
		return ""
	}
}
