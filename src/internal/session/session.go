// Package session implements Volta's process-wide lazy context:
// hooks, project, default platform, and the inventory handle each initialize
// on first access and are cached for the remainder of the process. A Session
// is constructed once per process; nested operations share it.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/voltajs/volta/src/internal/event"
	"github.com/voltajs/volta/src/internal/hooks"
	"github.com/voltajs/volta/src/internal/inventory"
	"github.com/voltajs/volta/src/internal/layout"
	"github.com/voltajs/volta/src/internal/manifest"
	"github.com/voltajs/volta/src/internal/project"
	"github.com/voltajs/volta/src/internal/resolve"
)

// Session is the process-wide singleton shared across the run.
type Session struct {
	layout *layout.Layout

	hooksOnce sync.Once
	hooksVal  *hooks.Config
	hooksErr  error

	projectOnce sync.Once
	projectVal  *project.Project
	projectErr  error

	defaultOnce sync.Once
	defaultVal  project.Platform
	defaultErr  error

	inventoryOnce sync.Once
	inventoryVal  *inventory.Store

	resolverOnce sync.Once
	resolverVal  *resolve.Resolver

	manifestSource manifest.Source

	mu       sync.Mutex
	events   []event.Event
	emitter  event.Emitter
	wd       string
	finished bool
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithWorkingDir overrides the directory Project() searches from. Defaults
// to os.Getwd().
func WithWorkingDir(dir string) Option {
	return func(s *Session) { s.wd = dir }
}

// WithEmitter overrides the event.Emitter used at Teardown. Defaults to
// event.NoopEmitter{}.
func WithEmitter(e event.Emitter) Option {
	return func(s *Session) { s.emitter = e }
}

// WithManifestSource overrides the manifest.Source consulted by Resolver().
// Defaults to manifest.DefaultSource().
func WithManifestSource(src manifest.Source) Option {
	return func(s *Session) { s.manifestSource = src }
}

// New constructs a Session rooted at l. Every field is lazy; this call does
// no I/O beyond recording its options.
func New(l *layout.Layout, opts ...Option) *Session {
	s := &Session{layout: l, emitter: event.NoopEmitter{}}
	for _, opt := range opts {
		opt(s)
	}
	s.Record(event.Event{Kind: event.Start})
	return s
}

// Layout returns the Layout this Session was constructed with.
func (s *Session) Layout() *layout.Layout {
	return s.layout
}

// Hooks lazily loads and merges hooks.json (project < user), caching the
// result for the remainder of the process.
func (s *Session) Hooks() (*hooks.Config, error) {
	s.hooksOnce.Do(func() {
		proj, err := s.Project()
		if err != nil {
			s.hooksErr = err
			return
		}
		var projectHooksPath string
		if proj != nil {
			projectHooksPath = filepath.Join(proj.Root, "hooks.json")
		}
		s.hooksVal, s.hooksErr = hooks.Load(projectHooksPath, s.layout.HooksFile)
	})
	return s.hooksVal, s.hooksErr
}

// Project lazily locates the nearest package.json from the working
// directory, caching the result (including the "not found" case, which is
// not an error).
func (s *Session) Project() (*project.Project, error) {
	s.projectOnce.Do(func() {
		dir := s.wd
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				s.projectErr = err
				return
			}
		}
		s.projectVal, s.projectErr = project.Find(dir)
	})
	return s.projectVal, s.projectErr
}

// DefaultPlatform lazily reads tools/user/default.json, the user-scoped
// platform pinned outside of any project.
func (s *Session) DefaultPlatform() (project.Platform, error) {
	s.defaultOnce.Do(func() {
		data, err := os.ReadFile(s.layout.DefaultImageFile)
		if err != nil {
			if os.IsNotExist(err) {
				s.defaultVal = project.Platform{}
				return
			}
			s.defaultErr = err
			return
		}
		var p project.Platform
		if err := json.Unmarshal(data, &p); err != nil {
			s.defaultErr = err
			return
		}
		s.defaultVal = p
	})
	return s.defaultVal, s.defaultErr
}

// SetDefaultPlatform writes the user-scoped default platform atomically and
// refreshes the cached value.
func (s *Session) SetDefaultPlatform(p project.Platform) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := layout.WriteFileAtomic(s.layout.DefaultImageFile, append(data, '\n'), 0o644); err != nil {
		return err
	}
	s.defaultOnce = sync.Once{}
	s.defaultVal = p
	s.defaultErr = nil
	return nil
}

// Inventory lazily constructs the Store over this Session's Layout.
func (s *Session) Inventory() *inventory.Store {
	s.inventoryOnce.Do(func() {
		s.inventoryVal = inventory.New(s.layout.ToolsInventory, s.layout.ToolsImage, s.layout.Tmp)
	})
	return s.inventoryVal
}

// Resolver lazily constructs the version Resolver over this Session's
// Inventory, Hooks, and manifest source.
func (s *Session) Resolver() (*resolve.Resolver, error) {
	var outerErr error
	s.resolverOnce.Do(func() {
		hc, err := s.Hooks()
		if err != nil {
			outerErr = err
			return
		}
		src := s.manifestSource
		if src == nil {
			src = manifest.DefaultSource()
		}
		s.resolverVal = resolve.New(s.Inventory(), hc, src)
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return s.resolverVal, nil
}

// Record buffers an event for later Teardown flush.
func (s *Session) Record(e event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Teardown flushes every buffered event to the configured Emitter. It is
// idempotent; calling it twice only flushes once.
func (s *Session) Teardown(exitCode int) error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return nil
	}
	s.finished = true
	s.events = append(s.events, event.Event{Kind: event.End, ExitCode: exitCode})
	events := s.events
	emitter := s.emitter
	s.mu.Unlock()

	return emitter.Emit(events)
}
