package pkginstall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/voltajs/volta/src/internal/hooks"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/version"
)

// registryDoc is the subset of an npm registry package document this binary
// reads: https://registry.npmjs.org/<name>.
type registryDoc struct {
	DistTags map[string]string        `json:"dist-tags"`
	Versions map[string]registryEntry `json:"versions"`
}

type registryEntry struct {
	Version string `json:"version"`
	Dist    struct {
		Tarball string `json:"tarball"`
		Shasum  string `json:"shasum"`
	} `json:"dist"`
}

// resolveVersion resolves name@spec to a concrete version, tarball URL, and
// npm-style sha1 checksum, consulting a configured Package index hook
// before falling back to the public registry.
func (in *Installer) resolveVersion(ctx context.Context, name string, spec version.Spec) (version.Version, string, string, error) {
	base := registryBase
	if th := in.packageHooks(); th != nil && th.Index != nil {
		resolved, err := hooks.Resolve(th.Index, hooks.Placeholders{})
		if err == nil {
			base = resolved
		}
	}
	return in.resolveVersionFromBase(ctx, base, name, spec)
}

// resolveVersionFromBase is resolveVersion with the registry base URL
// supplied explicitly, split out so tests can point it at an httptest
// server instead of the public registry.
func (in *Installer) resolveVersionFromBase(ctx context.Context, base, name string, spec version.Spec) (version.Version, string, string, error) {
	doc, err := in.fetchRegistryDoc(ctx, base, name)
	if err != nil {
		return version.Version{}, "", "", err
	}

	raw, ok := in.pickVersion(doc, spec)
	if !ok {
		return version.Version{}, "", "", fmt.Errorf("no version of %s satisfies %s", name, spec.String())
	}
	entry, ok := doc.Versions[raw]
	if !ok {
		return version.Version{}, "", "", fmt.Errorf("registry entry for %s@%s is missing its version record", name, raw)
	}

	v, err := version.Parse(entry.Version)
	if err != nil {
		return version.Version{}, "", "", fmt.Errorf("registry returned unparseable version %q for %s: %w", entry.Version, name, err)
	}
	return v, entry.Dist.Tarball, entry.Dist.Shasum, nil
}

func (in *Installer) pickVersion(doc *registryDoc, spec version.Spec) (string, bool) {
	if spec.IsNone() {
		spec = version.TagSpec(version.Latest)
	}

	switch {
	case spec.IsExact():
		return spec.ExactVersion().String(), true

	case spec.IsTag():
		tag := spec.TagValue()
		if tag.IsLatest() {
			if raw, ok := doc.DistTags["latest"]; ok {
				return raw, true
			}
		} else if raw, ok := doc.DistTags[tag.String()]; ok {
			return raw, true
		}

	case spec.IsRange():
		raws := make([]string, 0, len(doc.Versions))
		for raw := range doc.Versions {
			raws = append(raws, raw)
		}
		sort.Strings(raws)
		var best version.Version
		var bestRaw string
		found := false
		for _, raw := range raws {
			v, err := version.Parse(raw)
			if err != nil {
				continue
			}
			if spec.Satisfies(v) && (!found || v.Compare(best) > 0) {
				best, bestRaw, found = v, raw, true
			}
		}
		if found {
			return bestRaw, true
		}
	}
	return "", false
}

func (in *Installer) fetchRegistryDoc(ctx context.Context, base, name string) (*registryDoc, error) {
	url := base + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := in.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry lookup for %s: unexpected status %d", name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var doc registryDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse registry document for %s: %w", name, err)
	}
	return &doc, nil
}

func (in *Installer) packageHooks() *hooks.ToolHooks {
	if in.hooks == nil {
		return nil
	}
	return in.hooks.For(toolkind.Package)
}
