package enroll

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kozaktomas/attendance/internal/facematch"
)

const cacheVersion = 1

// ErrCacheStale is returned when the cache does not describe the current
// known faces directory.
var ErrCacheStale = errors.New("enrollment cache is stale")

type cacheFile struct {
	Version     int
	Fingerprint string
	Encodings   [][]float32
	Names       []string
}

// Fingerprint hashes the relative path, size and modification time of every
// sample together with salt (settings that change the produced encodings).
func Fingerprint(samples []Sample, salt string) string {
	h := sha256.New()
	fmt.Fprintf(h, "v%d\x00%s\n", cacheVersion, salt)
	for _, s := range samples {
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", s.Rel, s.Size, s.ModTime.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SaveCache writes the gallery to path atomically.
func SaveCache(path, fingerprint string, g *Gallery) error {
	c := cacheFile{
		Version:     cacheVersion,
		Fingerprint: fingerprint,
		Encodings:   make([][]float32, len(g.Encodings)),
		Names:       g.Names,
	}
	for i, e := range g.Encodings {
		c.Encodings[i] = e
	}

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".enroll-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set cache permissions: %w", err)
	}

	if err := gob.NewEncoder(tmp).Encode(&c); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}

// LoadCache reads a gallery saved by SaveCache. It returns ErrCacheStale when
// the stored fingerprint differs, and an os.ErrNotExist error when there is
// no cache yet.
func LoadCache(path, fingerprint string) (*Gallery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c cacheFile
	if err := gob.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode cache: %w", err)
	}
	if c.Version != cacheVersion || c.Fingerprint != fingerprint {
		return nil, ErrCacheStale
	}
	if len(c.Encodings) != len(c.Names) {
		return nil, fmt.Errorf("corrupt cache: %d encodings, %d names", len(c.Encodings), len(c.Names))
	}

	g := &Gallery{}
	for i, e := range c.Encodings {
		g.Add(c.Names[i], facematch.Encoding(e))
	}
	return g, nil
}
