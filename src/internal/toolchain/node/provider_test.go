package node

import (
	"strings"
	"testing"

	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/toolkind"
)

func TestKindIsRuntime(t *testing.T) {
	p := NewProvider()
	if p.Kind() != toolkind.Runtime {
		t.Errorf("Kind() = %v, want Runtime", p.Kind())
	}
}

func TestShimsIncludesNode(t *testing.T) {
	p := NewProvider()
	shims := p.Shims()
	found := false
	for _, s := range shims {
		if s == "node" {
			found = true
		}
	}
	if !found {
		t.Errorf("Shims() = %v, want to include node", shims)
	}
}

func TestDefaultDownloadURLContainsVersion(t *testing.T) {
	p := NewProvider()
	url, ext, err := p.DefaultDownloadURL("20.11.1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(url, "20.11.1") {
		t.Errorf("url %q should contain the version", url)
	}
	if ext != ".tar.gz" && ext != ".zip" {
		t.Errorf("unexpected ext %q", ext)
	}
}

func TestRegisteredInDefaultRegistry(t *testing.T) {
	if !toolchain.Default().Has(toolkind.Runtime) {
		t.Error("node provider should self-register via init()")
	}
}
