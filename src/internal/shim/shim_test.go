package shim

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/voltajs/volta/src/internal/layout"
)

func newTestLayout(t *testing.T) *layout.Layout {
	t.Helper()
	l := layout.New(t.TempDir())
	if err := l.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return l
}

func newTestTarget(t *testing.T) string {
	t.Helper()
	target := filepath.Join(t.TempDir(), "volta-shim")
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write target: %v", err)
	}
	return target
}

func TestCreateLinksToTarget(t *testing.T) {
	l := newTestLayout(t)
	target := newTestTarget(t)
	m := NewManagerWithTarget(l, target)

	if err := m.Create("node"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	shimPath := l.ShimPath("node")
	info, err := os.Lstat(shimPath)
	if err != nil {
		t.Fatalf("Lstat: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		resolved, err := os.Readlink(shimPath)
		if err != nil {
			t.Fatalf("Readlink: %v", err)
		}
		if resolved != target {
			t.Errorf("symlink target = %q, want %q", resolved, target)
		}
	}
}

func TestCreateReplacesExistingShim(t *testing.T) {
	l := newTestLayout(t)
	target := newTestTarget(t)
	m := NewManagerWithTarget(l, target)

	if err := m.Create("npm"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if err := m.Create("npm"); err != nil {
		t.Fatalf("second Create: %v", err)
	}

	if _, err := os.Lstat(l.ShimPath("npm")); err != nil {
		t.Fatalf("shim missing after recreate: %v", err)
	}
}

func TestCreateAllAndList(t *testing.T) {
	l := newTestLayout(t)
	target := newTestTarget(t)
	m := NewManagerWithTarget(l, target)

	names := []string{"node", "npm", "npx"}
	if err := m.CreateAll(names); err != nil {
		t.Fatalf("CreateAll: %v", err)
	}

	got, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(got)
	sort.Strings(names)
	if len(got) != len(names) {
		t.Fatalf("List() = %v, want %v", got, names)
	}
	for i := range got {
		if got[i] != names[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], names[i])
		}
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	l := newTestLayout(t)
	target := newTestTarget(t)
	m := NewManagerWithTarget(l, target)

	if err := m.Remove("does-not-exist"); err != nil {
		t.Errorf("Remove of missing shim should not error, got %v", err)
	}

	if err := m.Create("yarn"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Remove("yarn"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Lstat(l.ShimPath("yarn")); !os.IsNotExist(err) {
		t.Errorf("shim still present after Remove: err=%v", err)
	}
}

func TestListEmptyBinDir(t *testing.T) {
	l := newTestLayout(t)
	m := NewManagerWithTarget(l, newTestTarget(t))

	got, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List() = %v, want empty", got)
	}
}
