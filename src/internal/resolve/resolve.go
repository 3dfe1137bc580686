// Package resolve implements Volta's version resolver: mapping
// a user-facing VersionSpec to one concrete Version per tool kind, consulting
// the local Inventory before any network lookup, and honoring Hooks
// overrides for where a remote index is fetched from.
package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/hooks"
	"github.com/voltajs/volta/src/internal/inventory"
	"github.com/voltajs/volta/src/internal/manifest"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/voltajs/volta/src/internal/version"
)

// Resolver maps a VersionSpec to a concrete Version for one tool kind,
// caching each kind's default manifest for the lifetime of the Session that
// owns it. Hook index documents are fetched again on every lookup.
type Resolver struct {
	inv    *inventory.Store
	hooks  *hooks.Config
	source manifest.Source
	client *http.Client

	mu    sync.Mutex
	cache map[toolkind.Kind]*manifest.Manifest
}

// New builds a Resolver over the given inventory, hooks, and default
// manifest source (consulted when no hook overrides the lookup).
func New(inv *inventory.Store, hc *hooks.Config, source manifest.Source) *Resolver {
	return &Resolver{
		inv:    inv,
		hooks:  hc,
		source: source,
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  map[toolkind.Kind]*manifest.Manifest{},
	}
}

// Resolve maps spec to a concrete Version for kind.
func (r *Resolver) Resolve(ctx context.Context, kind toolkind.Kind, spec version.Spec) (version.Version, error) {
	if spec.IsNone() {
		spec = version.TagSpec(version.Latest)
	}

	switch {
	case spec.IsExact():
		return spec.ExactVersion(), nil

	case spec.IsRange():
		return r.resolveRange(ctx, kind, spec)

	case spec.IsTag():
		tag := spec.TagValue()
		switch {
		case tag.IsLatest():
			return r.resolveLatest(ctx, kind)
		case tag.IsLTS():
			return r.resolveLTS(ctx, kind)
		default:
			return r.resolveCustomTag(ctx, kind, tag.Label())
		}
	}

	return version.Version{}, errs.New(errs.NoSuchVersion, "resolve version", fmt.Errorf("unrecognized version spec %q", spec.String())).WithTool(kind.String(), spec.String())
}

func (r *Resolver) resolveRange(ctx context.Context, kind toolkind.Kind, spec version.Spec) (version.Version, error) {
	local := r.parseAll(r.inv.ListVersions(kind))
	if v, ok := spec.HighestSatisfying(local); ok {
		ui.Debug("resolved %s %s to %s from local inventory", kind, spec, v)
		return v, nil
	}

	m, err := r.manifestFor(ctx, kind)
	if err != nil {
		return version.Version{}, err
	}
	remote := r.parseAll(m.ListVersions())
	if v, ok := spec.HighestSatisfying(remote); ok {
		ui.Debug("resolved %s %s to %s from remote index", kind, spec, v)
		return v, nil
	}

	return version.Version{}, errs.New(errs.NoSuchVersion, "resolve version", fmt.Errorf("no version satisfies %s", spec)).WithTool(kind.String(), spec.String())
}

func (r *Resolver) resolveLatest(ctx context.Context, kind toolkind.Kind) (version.Version, error) {
	if h := r.toolHooks(kind); h != nil && h.Latest != nil {
		v, err := r.resolveFromHookIndex(ctx, kind, h.Latest, func(m *manifest.Manifest) (string, bool) {
			return m.AdvertisedLatest()
		})
		if err == nil {
			return v, nil
		}
		ui.Debug("latest hook for %s failed, falling back to default index: %v", kind, err)
	}

	m, err := r.manifestFor(ctx, kind)
	if err != nil {
		return version.Version{}, err
	}
	if raw, ok := m.AdvertisedLatest(); ok {
		if v, err := version.Parse(raw); err == nil {
			return v, nil
		}
	}

	all := r.parseAll(m.ListVersions())
	hi := version.Highest(all)
	if hi.IsZero() {
		return version.Version{}, errs.New(errs.NoSuchVersion, "resolve latest", fmt.Errorf("remote index has no versions")).WithTool(kind.String(), "latest")
	}
	return hi, nil
}

func (r *Resolver) resolveLTS(ctx context.Context, kind toolkind.Kind) (version.Version, error) {
	if h := r.toolHooks(kind); h != nil && h.LTS != nil {
		v, err := r.resolveFromHookIndex(ctx, kind, h.LTS, func(m *manifest.Manifest) (string, bool) {
			return highestOf(m.LTSVersions())
		})
		if err == nil {
			return v, nil
		}
		ui.Debug("lts hook for %s failed, falling back to default index: %v", kind, err)
	}

	m, err := r.manifestFor(ctx, kind)
	if err != nil {
		return version.Version{}, err
	}
	ltsVersions := r.parseAll(m.LTSVersions())
	hi := version.Highest(ltsVersions)
	if hi.IsZero() {
		return version.Version{}, errs.New(errs.NoSuchVersion, "resolve lts", fmt.Errorf("remote index has no LTS-marked versions")).WithTool(kind.String(), "lts")
	}
	return hi, nil
}

func (r *Resolver) resolveCustomTag(ctx context.Context, kind toolkind.Kind, label string) (version.Version, error) {
	if h := r.toolHooks(kind); h != nil && h.Index != nil {
		v, err := r.resolveFromHookIndex(ctx, kind, h.Index, func(m *manifest.Manifest) (string, bool) {
			return m.DistTag(label)
		})
		if err == nil {
			return v, nil
		}
		ui.Debug("index hook for %s failed resolving tag %q, falling back to default index: %v", kind, label, err)
	}

	m, err := r.manifestFor(ctx, kind)
	if err != nil {
		return version.Version{}, err
	}
	if raw, ok := m.DistTag(label); ok {
		if v, err := version.Parse(raw); err == nil {
			return v, nil
		}
	}
	return version.Version{}, errs.New(errs.NoSuchVersion, "resolve tag", fmt.Errorf("unknown tag %q", label)).WithTool(kind.String(), label)
}

// resolveFromHookIndex resolves a hook to a URL, fetches that URL as a
// manifest document, and extracts a version from it via pick.
func (r *Resolver) resolveFromHookIndex(ctx context.Context, kind toolkind.Kind, h *hooks.Hook, pick func(*manifest.Manifest) (string, bool)) (version.Version, error) {
	url, err := hooks.Resolve(h, hooks.Placeholders{})
	if err != nil {
		return version.Version{}, err
	}
	m, err := r.fetchManifestURL(ctx, url)
	if err != nil {
		return version.Version{}, err
	}
	raw, ok := pick(m)
	if !ok {
		return version.Version{}, errs.New(errs.NoSuchVersion, "resolve hook index", fmt.Errorf("hook index at %s has no matching entry", url)).WithTool(kind.String(), "")
	}
	return version.Parse(raw)
}

func (r *Resolver) fetchManifestURL(ctx context.Context, url string) (*manifest.Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.NetworkError, "fetch hook index", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errs.New(errs.NetworkError, "fetch hook index", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.NetworkError, "fetch hook index", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.NetworkError, "fetch hook index", err)
	}
	m, err := manifest.ParseManifest(body)
	if err != nil {
		return nil, errs.New(errs.BadManifest, "fetch hook index", err)
	}
	return m, nil
}

// manifestFor returns kind's remote manifest, fetched at most once per
// Resolver lifetime.
func (r *Resolver) manifestFor(ctx context.Context, kind toolkind.Kind) (*manifest.Manifest, error) {
	r.mu.Lock()
	if m, ok := r.cache[kind]; ok {
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	m, err := r.source.GetManifest(kind.String())
	if err != nil {
		return nil, errs.New(errs.BadManifest, "fetch manifest", err).WithTool(kind.String(), "")
	}

	r.mu.Lock()
	r.cache[kind] = m
	r.mu.Unlock()
	return m, nil
}

func (r *Resolver) toolHooks(kind toolkind.Kind) *hooks.ToolHooks {
	if r.hooks == nil {
		return nil
	}
	return r.hooks.For(kind)
}

func (r *Resolver) parseAll(raw []string) []version.Version {
	out := make([]version.Version, 0, len(raw))
	for _, s := range raw {
		v, err := version.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func highestOf(versions []string) (string, bool) {
	if len(versions) == 0 {
		return "", false
	}
	var best version.Version
	var bestRaw string
	for _, s := range versions {
		v, err := version.Parse(s)
		if err != nil {
			continue
		}
		if bestRaw == "" || best.LessThan(v) {
			best, bestRaw = v, s
		}
	}
	if bestRaw == "" {
		return "", false
	}
	return bestRaw, true
}
