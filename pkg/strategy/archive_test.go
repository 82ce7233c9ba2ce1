package strategy

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/srcforge/srcforge/pkg/store"
)

// writeTarGz creates a .tar.gz at path containing the given relative
// file entries. Directories are implied by the entry names.
func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("writing tar entry %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
}

func TestArchiveCacheFileName(t *testing.T) {
	tests := map[string]struct {
		origin Origin
		want   string
	}{
		"key plus url extension": {
			origin: Origin{URL: "https://example.com/dist/wget-1.21.tar.gz", Name: "wget", Version: "1.21"},
			want:   "wget-1.21.tar.gz",
		},
		"github tarball forces tgz": {
			origin: Origin{URL: "https://github.com/owner/repo/tarball/v2", Name: "repo", Version: "2"},
			want:   "repo-2.tgz",
		},
		"github zipball forces zip": {
			origin: Origin{URL: "https://github.com/owner/repo/zipball/v2", Name: "repo", Version: "2"},
			want:   "repo-2.zip",
		},
		"no name falls back to url basename": {
			origin: Origin{URL: "https://example.com/dist/mystery.tgz"},
			want:   "mystery.tgz",
		},
		"unknown sentinel falls back to url basename": {
			origin: Origin{URL: "https://example.com/dist/mystery.tgz", Name: UnknownName, Version: "1"},
			want:   "mystery.tgz",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			a := NewArchive(tc.origin, newTestRunner())
			if got := a.cacheFileName(); got != tc.want {
				t.Errorf("cacheFileName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestArchiveFetchDownloads(t *testing.T) {
	logFile := fakeTool(t, "curl", `echo "payload" > "$3"`)

	s := store.New(t.TempDir())
	a := NewArchive(Origin{URL: "https://example.com/pkg-1.0.tar.gz", Name: "pkg", Version: "1.0"}, newTestRunner())

	resolved, err := a.Fetch(context.Background(), s)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if resolved.Cached {
		t.Error("first Fetch() reported a cached copy")
	}
	if want := s.Path("pkg-1.0.tar.gz"); resolved.CachePath != want {
		t.Errorf("CachePath = %q, want %q", resolved.CachePath, want)
	}
	if !strings.HasPrefix(resolved.Integrity, "sha256:") {
		t.Errorf("Integrity = %q, want sha256: prefix", resolved.Integrity)
	}
	if _, err := os.Stat(resolved.CachePath); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}

	args := loggedArgs(t, logFile)
	if len(args) != 1 {
		t.Fatalf("curl invoked %d times, want 1", len(args))
	}
	want := "https://example.com/pkg-1.0.tar.gz -o " + resolved.CachePath
	if args[0] != want {
		t.Errorf("curl argv = %q, want %q", args[0], want)
	}
}

func TestArchiveFetchIdempotent(t *testing.T) {
	logFile := fakeTool(t, "curl", `echo "payload" > "$3"`)

	s := store.New(t.TempDir())
	a := NewArchive(Origin{URL: "https://example.com/pkg-1.0.tar.gz", Name: "pkg", Version: "1.0"}, newTestRunner())

	first, err := a.Fetch(context.Background(), s)
	if err != nil {
		t.Fatalf("first Fetch() error: %v", err)
	}
	second, err := a.Fetch(context.Background(), s)
	if err != nil {
		t.Fatalf("second Fetch() error: %v", err)
	}

	if first.CachePath != second.CachePath {
		t.Errorf("CachePath changed between fetches: %q vs %q", first.CachePath, second.CachePath)
	}
	if !second.Cached {
		t.Error("second Fetch() did not report the cached copy")
	}
	if args := loggedArgs(t, logFile); len(args) != 1 {
		t.Errorf("curl invoked %d times across two fetches, want 1", len(args))
	}
}

func TestArchiveFetchCleansPartialDownload(t *testing.T) {
	fakeTool(t, "curl", `echo "trunc" > "$3"; exit 22`)

	s := store.New(t.TempDir())
	a := NewArchive(Origin{URL: "https://example.com/pkg-1.0.tar.gz", Name: "pkg", Version: "1.0"}, newTestRunner())

	_, err := a.Fetch(context.Background(), s)
	if err == nil {
		t.Fatal("Fetch() expected error, got nil")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Fetch() error = %v, want ErrNetwork", err)
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Fetch() error = %T, want *FetchError", err)
	}

	if exists, _ := s.Exists("pkg-1.0.tar.gz"); exists {
		t.Error("partial download left in cache")
	}
}

func TestArchiveStageTar(t *testing.T) {
	requireTool(t, "tar")

	s := store.New(t.TempDir())
	writeTarGz(t, s.Path("pkg-1.0.tar.gz"), map[string]string{
		"pkg-1.0/main.c":      "int main(){}",
		"pkg-1.0/doc/README":  "readme",
		"pkg-1.0/doc/HACKING": "hacking",
	})

	workDir := t.TempDir()
	chdir(t, workDir)

	a := NewArchive(Origin{URL: "https://example.com/pkg-1.0.tar.gz", Name: "pkg", Version: "1.0"}, newTestRunner())
	if err := a.Stage(context.Background(), s); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	// The single top-level directory was promoted away.
	for _, rel := range []string{"main.c", "doc/README", "doc/HACKING"} {
		if _, err := os.Stat(filepath.Join(workDir, rel)); err != nil {
			t.Errorf("expected %s in staged output: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(workDir, "pkg-1.0")); !os.IsNotExist(err) {
		t.Error("top-level directory was not promoted away")
	}

	// Extraction does not consume the cache entry.
	if exists, _ := s.Exists("pkg-1.0.tar.gz"); !exists {
		t.Error("cache file removed by Stage")
	}
}

func TestArchiveStageZip(t *testing.T) {
	requireTool(t, "unzip")

	s := store.New(t.TempDir())
	writeZip(t, s.Path("pkg-1.0.zip"), map[string]string{
		"pkg-1.0/lib.go": "package lib",
	})

	workDir := t.TempDir()
	chdir(t, workDir)

	a := NewArchive(Origin{URL: "https://example.com/pkg-1.0.zip", Name: "pkg", Version: "1.0"}, newTestRunner())
	if err := a.Stage(context.Background(), s); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(workDir, "lib.go")); err != nil {
		t.Errorf("expected lib.go in staged output: %v", err)
	}
}

func TestArchiveStageEmptyArchive(t *testing.T) {
	requireTool(t, "tar")

	s := store.New(t.TempDir())
	writeTarGz(t, s.Path("pkg-1.0.tar.gz"), nil)

	workDir := t.TempDir()
	chdir(t, workDir)

	a := NewArchive(Origin{URL: "https://example.com/pkg-1.0.tar.gz", Name: "pkg", Version: "1.0"}, newTestRunner())
	err := a.Stage(context.Background(), s)
	if !errors.Is(err, ErrEmptyArchive) {
		t.Fatalf("Stage() error = %v, want ErrEmptyArchive", err)
	}
}

func TestArchiveStageOpaqueFileMoves(t *testing.T) {
	s := store.New(t.TempDir())
	if err := os.WriteFile(s.Path("tool-2.0.bin"), []byte("#!exec payload"), 0o644); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	workDir := t.TempDir()
	chdir(t, workDir)

	a := NewArchive(Origin{URL: "https://example.com/dl/tool-installer.bin", Name: "tool", Version: "2.0"}, newTestRunner())
	if err := a.Stage(context.Background(), s); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	// Moved under the URL's basename, not the cache key name.
	data, err := os.ReadFile(filepath.Join(workDir, "tool-installer.bin"))
	if err != nil {
		t.Fatalf("expected staged file: %v", err)
	}
	if string(data) != "#!exec payload" {
		t.Errorf("staged content = %q", data)
	}
	if exists, _ := s.Exists("tool-2.0.bin"); exists {
		t.Error("opaque stage should move, not copy, the cache file")
	}
}

func TestNoExtractStageNeverExtracts(t *testing.T) {
	s := store.New(t.TempDir())
	// Zip magic, but the no-extract variant must not unpack it.
	writeZip(t, s.Path("blob-1.0.zip"), map[string]string{"inner.txt": "x"})

	workDir := t.TempDir()
	chdir(t, workDir)

	n := NewNoExtract(Origin{URL: "https://example.com/blob.zip", Name: "blob", Version: "1.0"}, newTestRunner())
	if err := n.Stage(context.Background(), s); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(workDir, "blob.zip")); err != nil {
		t.Errorf("expected blob.zip staged verbatim: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "inner.txt")); !os.IsNotExist(err) {
		t.Error("no-extract variant extracted the archive")
	}
}
