package pkginstall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/voltajs/volta/src/internal/image"
	"github.com/voltajs/volta/src/internal/layout"
	"github.com/voltajs/volta/src/internal/source"
	"github.com/voltajs/volta/src/internal/version"
)

func newTestInstaller(t *testing.T) (*Installer, *layout.Layout) {
	t.Helper()
	l := layout.New(t.TempDir())
	if err := l.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	in := New(l, nil, nil, nil)
	return in, l
}

func TestPickVersionExact(t *testing.T) {
	in, _ := newTestInstaller(t)
	doc := &registryDoc{Versions: map[string]registryEntry{
		"1.2.3": {Version: "1.2.3"},
	}}
	spec, err := version.ParseSpec("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := in.pickVersion(doc, spec)
	if !ok || raw != "1.2.3" {
		t.Errorf("pickVersion = (%q, %v), want (1.2.3, true)", raw, ok)
	}
}

func TestPickVersionLatestTag(t *testing.T) {
	in, _ := newTestInstaller(t)
	doc := &registryDoc{
		DistTags: map[string]string{"latest": "3.0.0"},
		Versions: map[string]registryEntry{"3.0.0": {Version: "3.0.0"}},
	}
	spec, err := version.ParseSpec("")
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := in.pickVersion(doc, spec)
	if !ok || raw != "3.0.0" {
		t.Errorf("pickVersion = (%q, %v), want (3.0.0, true)", raw, ok)
	}
}

func TestPickVersionRange(t *testing.T) {
	in, _ := newTestInstaller(t)
	doc := &registryDoc{Versions: map[string]registryEntry{
		"1.0.0": {Version: "1.0.0"},
		"1.5.0": {Version: "1.5.0"},
		"2.0.0": {Version: "2.0.0"},
	}}
	spec, err := version.ParseSpec("^1")
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := in.pickVersion(doc, spec)
	if !ok || raw != "1.5.0" {
		t.Errorf("pickVersion = (%q, %v), want (1.5.0, true)", raw, ok)
	}
}

func TestResolveVersionFetchesFromRegistry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cowsay" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		doc := registryDoc{
			DistTags: map[string]string{"latest": "1.5.0"},
			Versions: map[string]registryEntry{
				"1.5.0": {
					Version: "1.5.0",
					Dist: struct {
						Tarball string `json:"tarball"`
						Shasum  string `json:"shasum"`
					}{Tarball: "http://example.test/cowsay-1.5.0.tgz", Shasum: "deadbeef"},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
	defer srv.Close()

	in, _ := newTestInstaller(t)
	v, tarball, shasum, err := in.resolveVersionFromBase(context.Background(), srv.URL, "cowsay", version.None)
	if err != nil {
		t.Fatalf("resolveVersion: %v", err)
	}
	if v.String() != "1.5.0" {
		t.Errorf("version = %q, want 1.5.0", v.String())
	}
	if tarball != "http://example.test/cowsay-1.5.0.tgz" {
		t.Errorf("tarball = %q", tarball)
	}
	if shasum != "deadbeef" {
		t.Errorf("shasum = %q", shasum)
	}
}

func TestReadExposedBinariesStringBin(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "lib", "node_modules", "cowsay")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	pkgJSON := `{"name":"cowsay","bin":"./cli.js"}`
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(pkgJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	bins, err := readExposedBinaries(dir, "cowsay")
	if err != nil {
		t.Fatalf("readExposedBinaries: %v", err)
	}
	if len(bins) != 1 || bins[0] != "cowsay" {
		t.Errorf("bins = %v, want [cowsay]", bins)
	}
}

func TestReadExposedBinariesMapBin(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "lib", "node_modules", "typescript")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	pkgJSON := `{"name":"typescript","bin":{"tsc":"./bin/tsc","tsserver":"./bin/tsserver"}}`
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(pkgJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	bins, err := readExposedBinaries(dir, "typescript")
	if err != nil {
		t.Fatalf("readExposedBinaries: %v", err)
	}
	want := map[string]bool{"tsc": false, "tsserver": false}
	for _, b := range bins {
		if _, ok := want[b]; ok {
			want[b] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing binary %q in %v", name, bins)
		}
	}
}

func TestWriteAndReadRecordRoundTrips(t *testing.T) {
	in, _ := newTestInstaller(t)
	record := &Record{
		Name:    "cowsay",
		Version: "1.5.0",
		Image:   RecordImage{Runtime: "18.16.0", Npm: "9.5.1"},
		Shims:   []string{"cowsay"},
	}
	if err := in.writeRecord(record); err != nil {
		t.Fatalf("writeRecord: %v", err)
	}

	got, err := in.ReadRecord("cowsay")
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if got == nil || got.Version != "1.5.0" || len(got.Shims) != 1 || got.Shims[0] != "cowsay" {
		t.Errorf("ReadRecord = %+v, want version 1.5.0 with shim cowsay", got)
	}
}

func TestReadRecordMissingIsNotError(t *testing.T) {
	in, _ := newTestInstaller(t)
	got, err := in.ReadRecord("never-installed")
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if got != nil {
		t.Errorf("ReadRecord = %+v, want nil", got)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"cowsay":       "cowsay",
		"@angular/cli": "-angular-cli",
		"@scope/pkg":   "-scope-pkg",
	}
	for in_, want := range cases {
		if got := sanitizeName(in_); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in_, got, want)
		}
	}
}

func TestDownloadTarballVerifiesShasum(t *testing.T) {
	in, l := newTestInstaller(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tarball contents"))
	}))
	defer srv.Close()

	// deliberately wrong so the checksum check fails
	const shasum = "0000000000000000000000000000000000000000"
	dest := filepath.Join(l.Tmp, "pkg.tgz")
	if err := in.downloadTarball(context.Background(), srv.URL, shasum, dest); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("partial file with bad checksum should have been removed")
	}
}

func TestDownloadTarballSkipsVerificationWhenShasumEmpty(t *testing.T) {
	in, l := newTestInstaller(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tarball contents"))
	}))
	defer srv.Close()

	dest := filepath.Join(l.Tmp, "pkg.tgz")
	if err := in.downloadTarball(context.Background(), srv.URL, "", dest); err != nil {
		t.Fatalf("downloadTarball: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "tarball contents" {
		t.Errorf("downloaded content = %q", data)
	}
}

func TestFindOwnerMatchesShim(t *testing.T) {
	in, _ := newTestInstaller(t)
	record := &Record{Name: "typescript", Version: "5.4.2", Shims: []string{"tsc", "tsserver"}}
	if err := in.writeRecord(record); err != nil {
		t.Fatalf("writeRecord: %v", err)
	}

	got, err := in.FindOwner("tsc")
	if err != nil {
		t.Fatalf("FindOwner: %v", err)
	}
	if got == nil || got.Name != "typescript" {
		t.Errorf("FindOwner(tsc) = %+v, want typescript", got)
	}
}

func TestFindOwnerNoMatch(t *testing.T) {
	in, _ := newTestInstaller(t)
	got, err := in.FindOwner("nonexistent")
	if err != nil {
		t.Fatalf("FindOwner: %v", err)
	}
	if got != nil {
		t.Errorf("FindOwner = %+v, want nil", got)
	}
}

func TestListInstalledReturnsAllRecords(t *testing.T) {
	in, _ := newTestInstaller(t)
	for _, name := range []string{"cowsay", "typescript"} {
		if err := in.writeRecord(&Record{Name: name, Version: "1.0.0"}); err != nil {
			t.Fatalf("writeRecord(%s): %v", name, err)
		}
	}

	records, err := in.ListInstalled()
	if err != nil {
		t.Fatalf("ListInstalled: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestListInstalledEmptyWhenNoPackages(t *testing.T) {
	in, _ := newTestInstaller(t)
	records, err := in.ListInstalled()
	if err != nil {
		t.Fatalf("ListInstalled: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestRecordImageOf(t *testing.T) {
	npmV, _ := version.Parse("9.5.1")
	nodeV, _ := version.Parse("18.16.0")
	img := image.Image{
		Runtime: source.Of(nodeV, source.Default),
		Npm:     sourcedPtr(npmV),
	}
	ri := recordImageOf(img)
	if ri.Runtime != "18.16.0" || ri.Npm != "9.5.1" {
		t.Errorf("recordImageOf = %+v", ri)
	}
}

func sourcedPtr(v version.Version) *source.Sourced[version.Version] {
	s := source.Of(v, source.Default)
	return &s
}
