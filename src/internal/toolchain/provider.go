// Package toolchain defines the per-ToolKind Provider interface and a
// thread-safe registry of them (grounded on dtvem's runtime provider
// registry), plus the Fetcher that materializes a (ToolKind, Version) into
// the Inventory.
package toolchain

import (
	"fmt"
	"sync"

	"github.com/voltajs/volta/src/internal/toolkind"
)

// Provider supplies the kind-specific knowledge the Fetcher and Executor
// need: where to download a version from absent any hook override, what
// archive format it ships in, where its executable lives once unpacked, and
// which shim names it exposes.
type Provider interface {
	// Kind identifies which ToolKind this Provider materializes.
	Kind() toolkind.Kind

	// Shims lists the binary names this tool exposes on PATH once its
	// Image is active (e.g. node provides "node"; pnpm provides "pnpm"
	// and "pnpx").
	Shims() []string

	// DefaultDownloadURL returns the built-in download URL and archive
	// extension (".tar.gz", ".zip", ...) for version on the current
	// platform, used when no distro hook is configured.
	DefaultDownloadURL(version string) (url, ext string, err error)

	// ExecutableRelPath returns the path, relative to the unpacked root,
	// of this tool's main executable.
	ExecutableRelPath() string

	// PostExtract runs any kind-specific fixup after extraction (e.g.
	// stripping the archive's top-level directory). unpackedDir is the
	// staging directory about to be published.
	PostExtract(unpackedDir string) error
}

// Registry is a thread-safe map of registered Providers, keyed by ToolKind.
type Registry struct {
	mu        sync.RWMutex
	providers map[toolkind.Kind]Provider
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[toolkind.Kind]Provider)}
}

// Register adds a Provider. It is an error to register the same Kind twice.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.Kind()]; exists {
		return fmt.Errorf("toolchain: provider for %s already registered", p.Kind())
	}
	r.providers[p.Kind()] = p
	return nil
}

// Get returns the Provider for kind, or an error if none is registered.
func (r *Registry) Get(kind toolkind.Kind) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[kind]
	if !ok {
		return nil, fmt.Errorf("toolchain: no provider registered for %s", kind)
	}
	return p, nil
}

// Has reports whether a Provider is registered for kind.
func (r *Registry) Has(kind toolkind.Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[kind]
	return ok
}

// List returns every registered Kind.
func (r *Registry) List() []toolkind.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]toolkind.Kind, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	return out
}

// GetAll returns every registered Provider.
func (r *Registry) GetAll() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}

// Unregister removes the Provider for kind, if any.
func (r *Registry) Unregister(kind toolkind.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[kind]; !ok {
		return fmt.Errorf("toolchain: no provider registered for %s", kind)
	}
	delete(r.providers, kind)
	return nil
}

// defaultRegistry is the process-wide registry populated by each concrete
// provider package's init().
var defaultRegistry = NewRegistry()

// Register adds p to the process-wide default registry. Concrete provider
// packages call this from their own init().
func Register(p Provider) error {
	return defaultRegistry.Register(p)
}

// Default returns the process-wide default Registry.
func Default() *Registry {
	return defaultRegistry
}
