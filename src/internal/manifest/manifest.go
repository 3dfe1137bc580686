package manifest

import (
	"encoding/json"
	"fmt"
)

// CurrentManifestVersion is the only manifest schema version this binary
// understands.
const CurrentManifestVersion = 1

// Download describes how to fetch one (version, platform) distribution.
type Download struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256,omitempty"`
}

// Availability is the tri-state result of checking whether a distribution
// exists for a given version/platform pair.
type Availability int

const (
	// AvailabilityUnknown means the version or platform key is simply not
	// present in the manifest.
	AvailabilityUnknown Availability = iota
	// AvailabilityAvailable means a non-null Download entry exists.
	AvailabilityAvailable
	// AvailabilityUnavailable means the platform key exists but is
	// explicitly null, i.e. the maintainers confirmed no build exists.
	AvailabilityUnavailable
)

// Manifest is a tool kind's remote version index: every known version,
// and per platform, either a Download or an explicit null meaning "known to
// not be built for this platform". Latest and LTS are optional maintainer
// annotations used by the version resolver's Tag(Latest)/Tag(LTS) fallback
// when no hook overrides the lookup. DistTags holds every other
// named dist-tag or codename (e.g. node's "iron", npm's "next") a maintainer
// has published, each mapping straight to a version already present in
// Versions.
type Manifest struct {
	Version  int                              `json:"version"`
	Versions map[string]map[string]*Download  `json:"versions"`
	Latest   string                           `json:"latest,omitempty"`
	LTS      map[string]bool                  `json:"lts,omitempty"`
	DistTags map[string]string                `json:"distTags,omitempty"`
}

// ParseManifest parses and validates a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw struct {
		Version  int                              `json:"version"`
		Versions map[string]map[string]*Download `json:"versions"`
		Latest   string                           `json:"latest,omitempty"`
		LTS      map[string]bool                  `json:"lts,omitempty"`
		DistTags map[string]string                `json:"distTags,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	if raw.Version != CurrentManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version: %d", raw.Version)
	}
	if raw.Versions == nil {
		raw.Versions = map[string]map[string]*Download{}
	}
	return &Manifest{Version: raw.Version, Versions: raw.Versions, Latest: raw.Latest, LTS: raw.LTS, DistTags: raw.DistTags}, nil
}

// DistTag returns the version a named dist-tag or codename points at, and
// whether the manifest declares that tag at all.
func (m *Manifest) DistTag(label string) (string, bool) {
	v, ok := m.DistTags[label]
	return v, ok
}

// AdvertisedLatest returns the maintainer-declared latest version and
// whether one was present in the manifest.
func (m *Manifest) AdvertisedLatest() (string, bool) {
	if m.Latest == "" {
		return "", false
	}
	return m.Latest, true
}

// LTSVersions returns every version explicitly marked LTS in the manifest.
func (m *Manifest) LTSVersions() []string {
	var out []string
	for v, ok := range m.LTS {
		if ok {
			out = append(out, v)
		}
	}
	return out
}

// GetDownload returns the Download for (version, platform), or nil if the
// version/platform is missing or explicitly marked unavailable.
func (m *Manifest) GetDownload(version, platform string) *Download {
	byPlatform, ok := m.Versions[version]
	if !ok {
		return nil
	}
	return byPlatform[platform]
}

// CheckAvailability reports whether a distribution is known to exist, known
// to not exist, or simply not mentioned in the manifest.
func (m *Manifest) CheckAvailability(version, platform string) Availability {
	byPlatform, ok := m.Versions[version]
	if !ok {
		return AvailabilityUnknown
	}
	d, ok := byPlatform[platform]
	if !ok {
		return AvailabilityUnknown
	}
	if d == nil {
		return AvailabilityUnavailable
	}
	return AvailabilityAvailable
}

// ListVersions returns every version key in the manifest, in no particular
// order.
func (m *Manifest) ListVersions() []string {
	versions := make([]string, 0, len(m.Versions))
	for v := range m.Versions {
		versions = append(versions, v)
	}
	return versions
}

// ListAvailableVersions returns every version that has a non-null Download
// entry for the given platform.
func (m *Manifest) ListAvailableVersions(platform string) []string {
	var versions []string
	for v, byPlatform := range m.Versions {
		if d, ok := byPlatform[platform]; ok && d != nil {
			versions = append(versions, v)
		}
	}
	return versions
}
