package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPath(t *testing.T) {
	root := "/tmp/store-root"

	tests := map[string]struct {
		segments []string
		want     string
	}{
		"no segments": {
			segments: nil,
			want:     root,
		},
		"single segment": {
			segments: []string{"foo-1.0"},
			want:     filepath.Join(root, "foo-1.0"),
		},
		"multiple segments": {
			segments: []string{"foo", "bar"},
			want:     filepath.Join(root, "foo", "bar"),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := New(root)
			got := s.Path(tc.segments...)
			if got != tc.want {
				t.Errorf("Path(%v) = %q, want %q", tc.segments, got, tc.want)
			}
		})
	}
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	existingDir := "existing-dir"
	os.MkdirAll(filepath.Join(root, existingDir), 0o755)

	existingFile := "existing-file"
	os.WriteFile(filepath.Join(root, existingFile), []byte("data"), 0o644)

	tests := map[string]struct {
		segments []string
		want     bool
	}{
		"existing directory": {
			segments: []string{existingDir},
			want:     true,
		},
		"existing file": {
			segments: []string{existingFile},
			want:     true,
		},
		"missing entry": {
			segments: []string{"nope"},
			want:     false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := s.Exists(tc.segments...)
			if err != nil {
				t.Fatalf("Exists(%v) error: %v", tc.segments, err)
			}
			if got != tc.want {
				t.Errorf("Exists(%v) = %v, want %v", tc.segments, got, tc.want)
			}
		})
	}
}

func TestEnsureRootAndRemove(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "cache")
	s := New(root)

	if err := s.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot() error: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("cache root not created: %v", err)
	}

	entry := "pkg-1.0"
	os.MkdirAll(filepath.Join(root, entry, "sub"), 0o755)
	s.Remove(entry)
	if _, err := os.Stat(filepath.Join(root, entry)); !os.IsNotExist(err) {
		t.Errorf("Remove(%q) left the entry behind", entry)
	}
}

func TestHashFile(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	os.WriteFile(filepath.Join(root, "a"), []byte("hello"), 0o644)
	os.WriteFile(filepath.Join(root, "b"), []byte("hello"), 0o644)
	os.WriteFile(filepath.Join(root, "c"), []byte("world"), 0o644)

	hashA, err := s.HashFile("a")
	if err != nil {
		t.Fatalf("HashFile(a) error: %v", err)
	}
	if !strings.HasPrefix(hashA, "sha256:") {
		t.Errorf("HashFile(a) = %q, want sha256: prefix", hashA)
	}

	hashB, err := s.HashFile("b")
	if err != nil {
		t.Fatalf("HashFile(b) error: %v", err)
	}
	if hashA != hashB {
		t.Errorf("identical contents hashed differently: %q vs %q", hashA, hashB)
	}

	hashC, err := s.HashFile("c")
	if err != nil {
		t.Fatalf("HashFile(c) error: %v", err)
	}
	if hashA == hashC {
		t.Errorf("different contents hashed identically: %q", hashA)
	}
}

func TestHashDirDeterministic(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	write := func(rel, content string) {
		path := filepath.Join(root, "entry", rel)
		os.MkdirAll(filepath.Dir(path), 0o755)
		os.WriteFile(path, []byte(content), 0o644)
	}
	write("a.txt", "alpha")
	write("sub/b.txt", "beta")

	first, err := s.HashDir("entry")
	if err != nil {
		t.Fatalf("HashDir() error: %v", err)
	}
	if !strings.HasPrefix(first, "sha256:") {
		t.Errorf("HashDir() = %q, want sha256: prefix", first)
	}

	second, err := s.HashDir("entry")
	if err != nil {
		t.Fatalf("second HashDir() error: %v", err)
	}
	if first != second {
		t.Errorf("HashDir() not deterministic: %q vs %q", first, second)
	}

	write("sub/b.txt", "changed")
	third, err := s.HashDir("entry")
	if err != nil {
		t.Fatalf("third HashDir() error: %v", err)
	}
	if third == first {
		t.Errorf("HashDir() ignored a content change")
	}
}
