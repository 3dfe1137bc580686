package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindLocatesNearestAncestor(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"name":"root-pkg","volta":{"node":"18.19.1"}}`)

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := Find(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected a project, got nil")
	}
	if p.Root != root {
		t.Errorf("Root = %q, want %q", p.Root, root)
	}
	if p.Platform.Node != "18.19.1" {
		t.Errorf("Platform.Node = %q, want 18.19.1", p.Platform.Node)
	}
}

func TestFindStopsAtNearestManifestNotFurthest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"volta":{"node":"18.19.1"}}`)

	inner := filepath.Join(root, "nested")
	if err := os.MkdirAll(inner, 0o755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, inner, `{"volta":{"node":"20.11.1"}}`)

	p, err := Find(inner)
	if err != nil {
		t.Fatal(err)
	}
	if p.Root != inner {
		t.Errorf("Root = %q, want nearest ancestor %q", p.Root, inner)
	}
	if p.Platform.Node != "20.11.1" {
		t.Errorf("Platform.Node = %q, want 20.11.1 from nearest manifest", p.Platform.Node)
	}
}

func TestFindReturnsNilWhenNoManifestExists(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "x", "y")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("expected nil project, got %+v", p)
	}
}

func TestPinPreservesUnrelatedKeysAndOrder(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, `{
  "name": "my-app",
  "version": "1.0.0",
  "scripts": {
    "build": "tsc"
  }
}`)

	if err := Pin(path, Platform{Node: "20.11.1", Npm: "10.4.0"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	p, err := load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Platform.Node != "20.11.1" || p.Platform.Npm != "10.4.0" {
		t.Errorf("platform not pinned correctly: %+v", p.Platform)
	}

	for _, want := range []string{`"name"`, `"my-app"`, `"scripts"`, `"build"`, `"tsc"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("pinned manifest lost unrelated content %q:\n%s", want, data)
		}
	}
}

func TestPinRemovesKeyWhenPlatformIsEmpty(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, `{"name":"my-app","volta":{"node":"18.19.1"}}`)

	if err := Pin(path, Platform{}); err != nil {
		t.Fatal(err)
	}

	p, err := load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Platform.isEmpty() {
		t.Errorf("expected empty platform after unpin, got %+v", p.Platform)
	}
}
