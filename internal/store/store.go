// Package store persists triage batch reports as markdown documents with
// YAML frontmatter, suitable for committing alongside the reviewed code.
package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// DefaultLockTimeout bounds how long a writer waits for a report lock.
const DefaultLockTimeout = 5 * time.Second

// Store writes and reads reports under a base directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the report directory.
func (s *Store) Dir() string {
	return s.dir
}

// document is a markdown file with YAML frontmatter.
type document struct {
	meta map[string]any
	body string
}

func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}

	var meta map[string]any
	body, err := frontmatter.Parse(strings.NewReader(string(data)), &meta)
	if err != nil {
		// plain markdown without frontmatter
		return &document{meta: make(map[string]any), body: string(data)}, nil
	}
	return &document{meta: meta, body: string(body)}, nil
}

// writeDocument writes the document atomically under an exclusive file lock,
// so concurrent triage runs against the same report path cannot interleave.
func writeDocument(path string, doc *document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	var buf bytes.Buffer
	if len(doc.meta) > 0 {
		buf.WriteString("---\n")
		fm, err := yaml.Marshal(doc.meta)
		if err != nil {
			return fmt.Errorf("marshaling frontmatter: %w", err)
		}
		buf.Write(fm)
		buf.WriteString("---\n\n")
	}
	buf.WriteString(doc.body)

	return withLock(path, DefaultLockTimeout, func() error {
		return atomicWriteFile(path, buf.Bytes(), 0644)
	})
}

// atomicWriteFile writes to a temp file then renames it into place, so a
// crash mid-write never leaves a truncated report.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// withLock acquires an exclusive lock on path.lock, runs fn, then releases.
func withLock(path string, timeout time.Duration, fn func() error) error {
	lockPath := path + ".lock"
	fileLock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring lock on %s", lockPath)
	}
	defer fileLock.Unlock()

	return fn()
}

func metaString(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

func metaInt(meta map[string]any, key string) int {
	switch n := meta[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func metaTime(meta map[string]any, key string) time.Time {
	switch v := meta[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
