package enroll

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/kozaktomas/attendance/internal/facematch"
)

func TestFingerprint(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	base := []Sample{
		{Person: "alice", Rel: "alice/a.jpg", Size: 100, ModTime: now},
		{Person: "bob", Rel: "bob/1.jpg", Size: 200, ModTime: now},
	}

	fp := Fingerprint(base, "max=1600")

	tests := []struct {
		name    string
		samples []Sample
		salt    string
		same    bool
	}{
		{name: "identical tree", samples: base, salt: "max=1600", same: true},
		{name: "different salt", samples: base, salt: "max=800"},
		{name: "file touched", samples: []Sample{base[0], {Person: "bob", Rel: "bob/1.jpg", Size: 200, ModTime: now.Add(time.Second)}}, salt: "max=1600"},
		{name: "file resized", samples: []Sample{base[0], {Person: "bob", Rel: "bob/1.jpg", Size: 201, ModTime: now}}, salt: "max=1600"},
		{name: "file removed", samples: base[:1], salt: "max=1600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint(tt.samples, tt.salt)
			if (got == fp) != tt.same {
				t.Errorf("fingerprint equality = %v, want %v", got == fp, tt.same)
			}
		})
	}
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.gob")
	g := &Gallery{}
	g.Add("alice", facematch.Encoding{0.1, 0.2})
	g.Add("bob", facematch.Encoding{0.3, 0.4})

	if err := SaveCache(path, "fp-1", g); err != nil {
		t.Fatalf("SaveCache() error: %v", err)
	}

	loaded, err := LoadCache(path, "fp-1")
	if err != nil {
		t.Fatalf("LoadCache() error: %v", err)
	}
	if !reflect.DeepEqual(loaded, g) {
		t.Errorf("loaded gallery %+v, want %+v", loaded, g)
	}

	if _, err := LoadCache(path, "fp-2"); !errors.Is(err, ErrCacheStale) {
		t.Errorf("expected ErrCacheStale, got %v", err)
	}
}

func TestLoadCache_Missing(t *testing.T) {
	_, err := LoadCache(filepath.Join(t.TempDir(), "none.gob"), "fp")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadCache_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.gob")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadCache(path, "fp")
	if err == nil || errors.Is(err, ErrCacheStale) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestSaveCache_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.gob")
	g := &Gallery{}
	g.Add("alice", facematch.Encoding{0.1, 0.2})

	if err := SaveCache(path, "fp", g); err != nil {
		t.Fatalf("SaveCache() error: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := fi.Mode().Perm(); got != 0o644 {
		t.Errorf("new cache mode = %v, want %v", got, os.FileMode(0o644))
	}

	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatal(err)
	}
	if err := SaveCache(path, "fp", g); err != nil {
		t.Fatalf("SaveCache() error: %v", err)
	}
	if fi, err = os.Stat(path); err != nil {
		t.Fatal(err)
	}
	if got := fi.Mode().Perm(); got != 0o640 {
		t.Errorf("rewritten cache mode = %v, want %v", got, os.FileMode(0o640))
	}
}
