package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"capycop/internal/diag"
	"capycop/internal/rule"
	"capycop/internal/source"
	"capycop/internal/version"
)

// Current schema version - increment when cachePayload format changes
const cacheSchemaVersion uint16 = 1

// Key identifies the result of running a rule set over some content.
type Key [sha256.Size]byte

// Cache хранит диагностики файла на диске по хешу содержимого и набора правил.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is what one entry holds. Spans are stored without their
// FileID, which is only meaningful within one run.
type cachePayload struct {
	Schema      uint16
	Diagnostics []diag.Diagnostic
}

// OpenCache opens the cache under $XDG_CACHE_HOME/app, falling back to
// ~/.cache/app.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCacheAt(filepath.Join(base, app))
}

// OpenCacheAt opens a cache rooted at dir, creating it if needed.
func OpenCacheAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// Key hashes content together with the rule set and the build version.
// Rule order matters since it decides the order of findings on a node.
func (c *Cache) Key(content []byte, rules []*rule.Rule) Key {
	h := sha256.New()
	_, _ = h.Write(content)
	fp := RulesFingerprint(rules)
	_, _ = h.Write(fp[:])
	_, _ = h.Write([]byte(version.Full()))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (c *Cache) pathFor(key Key) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не плодить огромный каталог
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes diagnostics for key.
func (c *Cache) Put(key Key, items []diag.Diagnostic) (err error) {
	if c == nil {
		return nil
	}
	payload := cachePayload{Schema: cacheSchemaVersion, Diagnostics: make([]diag.Diagnostic, len(items))}
	for i, d := range items {
		payload.Diagnostics[i] = rebase(d, 0)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads the entry for key into bag, pointing every span at file id.
// A missing entry or one of another schema is a miss, not an error.
func (c *Cache) Get(key Key, id source.FileID, bag *diag.Bag) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	if payload.Schema != cacheSchemaVersion {
		return false, nil
	}
	for _, d := range payload.Diagnostics {
		bag.Add(rebase(d, id))
	}
	return true, nil
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "results"))
}

// rebase returns a copy of d with every span moved to file id.
func rebase(d diag.Diagnostic, id source.FileID) diag.Diagnostic {
	d.Primary.File = id
	if len(d.Notes) > 0 {
		notes := make([]diag.Note, len(d.Notes))
		for i, n := range d.Notes {
			n.Span.File = id
			notes[i] = n
		}
		d.Notes = notes
	}
	if len(d.Fixes) > 0 {
		fixes := make([]diag.Fix, len(d.Fixes))
		for i, f := range d.Fixes {
			edits := make([]diag.TextEdit, len(f.Edits))
			for j, e := range f.Edits {
				e.Span.File = id
				edits[j] = e
			}
			f.Edits = edits
			fixes[i] = f
		}
		d.Fixes = fixes
	}
	return d
}
