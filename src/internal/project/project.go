// Package project implements Volta's project detection and pinned-platform
// manifest: locating the nearest package.json by walking from
// the current directory to the filesystem root, and performing minimal,
// order-preserving edits to its reserved "volta" key.
package project

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/layout"
)

// ManifestFileName is the file Volta looks for in each ancestor directory.
const ManifestFileName = "package.json"

// reservedKey is the field within package.json that carries the pinned
// platform.
const reservedKey = "volta"

// Platform is the persisted shape of the reserved key: only Exact versions
// are ever written; VersionSpecs are resolved at pin time.
type Platform struct {
	Node string `json:"node,omitempty"`
	Npm  string `json:"npm,omitempty"`
	Pnpm string `json:"pnpm,omitempty"`
	Yarn string `json:"yarn,omitempty"`
}

func (p Platform) isEmpty() bool {
	return p.Node == "" && p.Npm == "" && p.Pnpm == "" && p.Yarn == ""
}

// Project is a located package.json and the platform pinned inside it, if
// any.
type Project struct {
	ManifestPath string
	Root         string
	Platform     Platform
}

// Find walks from dir (typically the current working directory) upward to
// the filesystem root, returning the nearest ancestor containing a
// package.json. Returns (nil, nil) if none is found; this is not an error,
// since most invocations run outside any project.
func Find(dir string) (*Project, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errs.New(errs.Filesystem, "locate project", err)
	}

	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			p, err := load(candidate)
			if err != nil {
				return nil, err
			}
			return p, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func load(manifestPath string) (*Project, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errs.New(errs.Filesystem, "read project manifest", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.New(errs.Filesystem, "parse project manifest", err)
	}

	var platform Platform
	if rawPlatform, ok := raw[reservedKey]; ok {
		if err := json.Unmarshal(rawPlatform, &platform); err != nil {
			return nil, errs.New(errs.Filesystem, "parse project manifest", err)
		}
	}

	return &Project{
		ManifestPath: manifestPath,
		Root:         filepath.Dir(manifestPath),
		Platform:     platform,
	}, nil
}

// Pin writes platform into the project's reserved key, preserving every
// other key's ordering and content via a minimal edit, then writes the file
// atomically via temp-file + rename.
func Pin(manifestPath string, platform Platform) error {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return errs.New(errs.Filesystem, "pin project platform", err)
	}

	info, err := os.Stat(manifestPath)
	if err != nil {
		return errs.New(errs.Filesystem, "pin project platform", err)
	}

	updated, err := setReservedKey(data, platform)
	if err != nil {
		return errs.New(errs.Filesystem, "pin project platform", err)
	}

	return layout.WriteFileAtomic(manifestPath, updated, info.Mode().Perm())
}

// setReservedKey replaces (or removes) the "volta" key in raw JSON text
// while keeping every other key's order and value text unchanged. The
// top-level object itself is re-emitted with one key per line and two-space
// indentation, so the original top-level whitespace is not kept.
// It operates by decoding into an ordered key list via json.RawMessage, not
// by round-tripping through a plain map (which would not preserve order).
func setReservedKey(data []byte, platform Platform) ([]byte, error) {
	keys, values, err := decodeOrdered(data)
	if err != nil {
		return nil, err
	}

	platformJSON, err := json.Marshal(platform)
	if err != nil {
		return nil, err
	}

	replaced := false
	out := make([]string, 0, len(keys)+1)
	for i, k := range keys {
		if k == reservedKey {
			if platform.isEmpty() {
				continue // drop the key entirely
			}
			out = append(out, encodeEntry(k, platformJSON))
			replaced = true
			continue
		}
		out = append(out, encodeEntry(k, values[i]))
	}
	if !replaced && !platform.isEmpty() {
		out = append(out, encodeEntry(reservedKey, platformJSON))
	}

	result := "{\n"
	for i, entry := range out {
		result += "  " + entry
		if i != len(out)-1 {
			result += ","
		}
		result += "\n"
	}
	result += "}\n"
	return []byte(result), nil
}

func encodeEntry(key string, value json.RawMessage) string {
	keyJSON, _ := json.Marshal(key)
	return string(keyJSON) + ": " + string(value)
}

// decodeOrdered returns the top-level keys of a JSON object in file order
// alongside their raw values, using json.Decoder's token stream rather than
// a map, which Go does not guarantee an order for.
func decodeOrdered(data []byte) ([]string, []json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // consume '{'
		return nil, nil, err
	}

	var keys []string
	var values []json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, val)
	}
	return keys, values, nil
}
