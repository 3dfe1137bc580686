package resolve

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/voltajs/volta/src/internal/hooks"
	"github.com/voltajs/volta/src/internal/inventory"
	"github.com/voltajs/volta/src/internal/manifest"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/version"
)

type stubSource struct {
	manifests map[string]*manifest.Manifest
	calls     int
}

func (s *stubSource) GetManifest(runtime string) (*manifest.Manifest, error) {
	s.calls++
	m, ok := s.manifests[runtime]
	if !ok {
		return nil, &manifest.ErrManifestNotFound{Runtime: runtime}
	}
	return m, nil
}

func (s *stubSource) ListRuntimes() ([]string, error) {
	var out []string
	for k := range s.manifests {
		out = append(out, k)
	}
	return out, nil
}

func newTestInventory(t *testing.T) *inventory.Store {
	t.Helper()
	root := t.TempDir()
	return inventory.New(
		filepath.Join(root, "inventory"),
		filepath.Join(root, "image"),
		filepath.Join(root, "tmp"),
	)
}

// publishLocal fabricates a ready unpacked entry without going through
// Stage/Publish, simulating a version already present in the inventory.
func publishLocal(t *testing.T, inv *inventory.Store, kind toolkind.Kind, v string) {
	t.Helper()
	dir := inv.UnpackedRoot(kind, v)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".ready"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveExactNeverTouchesNetwork(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{}}
	r := New(inv, nil, src)

	spec := version.Exact(version.MustParse("18.19.1"))
	got, err := r.Resolve(context.Background(), toolkind.Runtime, spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "18.19.1" {
		t.Errorf("got %s, want 18.19.1", got)
	}
	if src.calls != 0 {
		t.Errorf("exact resolution should not consult manifest source, got %d calls", src.calls)
	}
}

func TestResolveRangePrefersLocalInventory(t *testing.T) {
	inv := newTestInventory(t)
	publishLocal(t, inv, toolkind.Runtime, "18.19.1")
	publishLocal(t, inv, toolkind.Runtime, "20.11.1")

	src := &stubSource{manifests: map[string]*manifest.Manifest{}}
	r := New(inv, nil, src)

	spec, err := version.ParseSpec("^18.0.0")
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Resolve(context.Background(), toolkind.Runtime, spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "18.19.1" {
		t.Errorf("got %s, want 18.19.1", got)
	}
	if src.calls != 0 {
		t.Errorf("local inventory should satisfy the range without a remote fetch, got %d calls", src.calls)
	}
}

func TestResolveRangeFallsBackToRemoteIndex(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"node": {
			Version: 1,
			Versions: map[string]map[string]*manifest.Download{
				"20.11.1": {"linux-amd64": {URL: "https://example.com/node.tar.gz"}},
				"20.9.0":  {"linux-amd64": {URL: "https://example.com/node2.tar.gz"}},
			},
		},
	}}
	r := New(inv, nil, src)

	spec, err := version.ParseSpec("^20.0.0")
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Resolve(context.Background(), toolkind.Runtime, spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "20.11.1" {
		t.Errorf("got %s, want 20.11.1", got)
	}
	if src.calls != 1 {
		t.Errorf("want exactly 1 manifest fetch, got %d", src.calls)
	}

	// A second resolution for the same kind must hit the per-Resolver cache.
	if _, err := r.Resolve(context.Background(), toolkind.Runtime, spec); err != nil {
		t.Fatal(err)
	}
	if src.calls != 1 {
		t.Errorf("second resolve should reuse cached manifest, got %d calls", src.calls)
	}
}

func TestResolveLatestUsesAdvertisedLatest(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"node": {
			Version: 1,
			Latest:  "20.11.1",
			Versions: map[string]map[string]*manifest.Download{
				"20.11.1": {"linux-amd64": {URL: "https://example.com/a"}},
				"18.19.1": {"linux-amd64": {URL: "https://example.com/b"}},
			},
		},
	}}
	r := New(inv, nil, src)

	got, err := r.Resolve(context.Background(), toolkind.Runtime, version.TagSpec(version.Latest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "20.11.1" {
		t.Errorf("got %s, want 20.11.1", got)
	}
}

func TestResolveNoneIsTreatedAsLatest(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"node": {
			Version: 1,
			Latest:  "20.11.1",
			Versions: map[string]map[string]*manifest.Download{
				"20.11.1": {"linux-amd64": {URL: "https://example.com/a"}},
			},
		},
	}}
	r := New(inv, nil, src)

	got, err := r.Resolve(context.Background(), toolkind.Runtime, version.None)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "20.11.1" {
		t.Errorf("got %s, want 20.11.1", got)
	}
}

func TestResolveLTSPicksHighestMarkedVersion(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"node": {
			Version: 1,
			LTS:     map[string]bool{"18.19.1": true, "20.11.1": true},
			Versions: map[string]map[string]*manifest.Download{
				"20.11.1": {"linux-amd64": {URL: "https://example.com/a"}},
				"18.19.1": {"linux-amd64": {URL: "https://example.com/b"}},
				"21.0.0":  {"linux-amd64": {URL: "https://example.com/c"}},
			},
		},
	}}
	r := New(inv, nil, src)

	got, err := r.Resolve(context.Background(), toolkind.Runtime, version.TagSpec(version.LTS))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "20.11.1" {
		t.Errorf("got %s, want 20.11.1 (highest LTS-marked, not the highest overall)", got)
	}
}

func TestResolveCustomTagErrorsWhenAbsent(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"yarn": {Version: 1, Versions: map[string]map[string]*manifest.Download{}},
	}}
	r := New(inv, nil, src)

	_, err := r.Resolve(context.Background(), toolkind.Yarn, version.TagSpec(version.CustomTag("berry")))
	if err == nil {
		t.Fatal("expected error for unknown custom tag")
	}
}

func TestResolveCustomTagUsesDistTags(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"node": {
			Version:  1,
			DistTags: map[string]string{"iron": "20.11.1"},
			Versions: map[string]map[string]*manifest.Download{
				"20.11.1": {"linux-amd64": {URL: "https://example.com/a"}},
			},
		},
	}}
	r := New(inv, nil, src)

	got, err := r.Resolve(context.Background(), toolkind.Runtime, version.TagSpec(version.CustomTag("iron")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "20.11.1" {
		t.Errorf("got %s, want 20.11.1", got)
	}
}

func TestResolveCustomTagPrefersIndexHookOverDefault(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"node": {
			Version:  1,
			DistTags: map[string]string{"iron": "20.11.1"},
			Versions: map[string]map[string]*manifest.Download{
				"20.11.1": {"linux-amd64": {URL: "https://example.com/a"}},
			},
		},
	}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"version":1,"distTags":{"iron":"20.9.0"},"versions":{"20.9.0":{"linux-amd64":{"url":"https://example.com/b"}}}}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	projectPath := filepath.Join(dir, "hooks.json")
	contents := fmt.Sprintf(`{"node": {"index": {"prefix": "%s/"}}}`, srv.URL)
	if err := os.WriteFile(projectPath, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := hooks.Load(projectPath, "")
	if err != nil {
		t.Fatal(err)
	}

	r := New(inv, cfg, src)

	got, err := r.Resolve(context.Background(), toolkind.Runtime, version.TagSpec(version.CustomTag("iron")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "20.9.0" {
		t.Errorf("got %s, want 20.9.0 from the index hook, not the default source", got)
	}
	if src.calls != 0 {
		t.Errorf("index hook should short-circuit the default manifest source, got %d calls", src.calls)
	}
}

func TestResolveRangeNoSatisfyingVersionIsNoSuchVersion(t *testing.T) {
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"node": {Version: 1, Versions: map[string]map[string]*manifest.Download{
			"18.19.1": {"linux-amd64": {URL: "https://example.com/a"}},
		}},
	}}
	r := New(inv, nil, src)

	spec, err := version.ParseSpec("^99.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Resolve(context.Background(), toolkind.Runtime, spec); err == nil {
		t.Fatal("expected error when no version satisfies the range")
	}
}

func TestResolveNilHooksFallsThroughToDefaultSource(t *testing.T) {
	// A nil hooks.Config means no overrides are configured; the resolver
	// must fall through to the default manifest source without panicking.
	inv := newTestInventory(t)
	src := &stubSource{manifests: map[string]*manifest.Manifest{
		"node": {Version: 1, Latest: "20.11.1", Versions: map[string]map[string]*manifest.Download{
			"20.11.1": {"linux-amd64": {URL: "https://example.com/a"}},
		}},
	}}
	r := New(inv, (*hooks.Config)(nil), src)

	got, err := r.Resolve(context.Background(), toolkind.Runtime, version.TagSpec(version.Latest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "20.11.1" {
		t.Errorf("got %s, want 20.11.1", got)
	}
}
