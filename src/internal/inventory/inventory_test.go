package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/toolkind"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	return New(filepath.Join(root, "inventory"), filepath.Join(root, "image"), filepath.Join(root, "tmp"))
}

func TestHasBeforePublishIsFalse(t *testing.T) {
	s := newTestStore(t)
	if s.Has(toolkind.Runtime, "18.16.0") {
		t.Fatal("Has returned true before any stage/publish")
	}
}

func TestStagePublishRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.Stage(ctx, toolkind.Runtime, "18.16.0")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if h == nil {
		t.Fatal("Stage returned nil handle for a fresh key")
	}

	if err := os.WriteFile(filepath.Join(h.Dir(), "bin-marker"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write into staging dir: %v", err)
	}

	if s.Has(toolkind.Runtime, "18.16.0") {
		t.Fatal("Has returned true before publish")
	}

	if err := h.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if !s.Has(toolkind.Runtime, "18.16.0") {
		t.Fatal("Has returned false after publish")
	}

	if _, err := os.Stat(filepath.Join(s.UnpackedRoot(toolkind.Runtime, "18.16.0"), "bin-marker")); err != nil {
		t.Fatalf("published file missing: %v", err)
	}
}

func TestStageReturnsNilWhenAlreadyPublished(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.Stage(ctx, toolkind.Npm, "9.5.0")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := h.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	h2, err := s.Stage(ctx, toolkind.Npm, "9.5.0")
	if err != nil {
		t.Fatalf("second Stage: %v", err)
	}
	if h2 != nil {
		t.Fatal("Stage should return a nil handle once the entry is already published")
	}
}

func TestAbortReleasesLockForNextStager(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.Stage(ctx, toolkind.Pnpm, "8.6.0")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := h.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	h2, err := s.Stage(ctx, toolkind.Pnpm, "8.6.0")
	if err != nil {
		t.Fatalf("Stage after abort: %v", err)
	}
	if h2 == nil {
		t.Fatal("Stage after abort should not find a peer lock")
	}
}

func TestStageWaitsForPeerPublish(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.Stage(ctx, toolkind.Yarn, "1.22.19")
	if err != nil {
		t.Fatalf("first Stage: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		done <- h.Publish()
	}()

	h2, err := s.Stage(ctx, toolkind.Yarn, "1.22.19")
	if err != nil {
		t.Fatalf("second Stage: %v", err)
	}
	if h2 != nil {
		t.Fatal("waiting stager should observe the peer's publish and get a nil handle")
	}
	if err := <-done; err != nil {
		t.Fatalf("peer publish failed: %v", err)
	}
	if !s.Has(toolkind.Yarn, "1.22.19") {
		t.Fatal("entry should be published after waiting stager returns")
	}
}

func TestStageTimeoutIsConcurrentFetchTimeout(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Stage(ctx, toolkind.Runtime, "20.0.0"); err != nil {
		t.Fatalf("first Stage: %v", err)
	}
	// Never publish or abort: the lock stays held and the second stager
	// must give up once its deadline passes.
	prev := publishTimeout
	publishTimeout = 150 * time.Millisecond
	defer func() { publishTimeout = prev }()

	_, err := s.Stage(ctx, toolkind.Runtime, "20.0.0")
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !errs.As(err, errs.ConcurrentFetchTimeout) {
		t.Fatalf("expected ConcurrentFetchTimeout, got %v", err)
	}
}
