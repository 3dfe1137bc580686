package pnpm

import (
	"testing"

	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/toolkind"
)

func TestKindIsPnpm(t *testing.T) {
	p := NewProvider()
	if p.Kind() != toolkind.Pnpm {
		t.Errorf("Kind() = %v, want Pnpm", p.Kind())
	}
}

func TestShimsIncludesPnpmAndPnpx(t *testing.T) {
	p := NewProvider()
	shims := p.Shims()
	want := map[string]bool{"pnpm": false, "pnpx": false}
	for _, s := range shims {
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Shims() missing %q, got %v", name, shims)
		}
	}
}

func TestDefaultDownloadURLReturnsBareExecutableExt(t *testing.T) {
	p := NewProvider()
	_, ext, err := p.DefaultDownloadURL("8.15.1")
	if err != nil {
		t.Fatal(err)
	}
	if ext != ".bin" {
		t.Errorf("ext = %q, want .bin", ext)
	}
}

func TestRegisteredInDefaultRegistry(t *testing.T) {
	if !toolchain.Default().Has(toolkind.Pnpm) {
		t.Error("pnpm provider should self-register via init()")
	}
}
