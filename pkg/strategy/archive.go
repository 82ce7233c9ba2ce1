package strategy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/srcforge/srcforge/pkg/run"
	"github.com/srcforge/srcforge/pkg/store"
)

// Archive downloads an origin URL with curl and stages it by sniffing the
// payload: zip and tar-family archives are extracted in place, anything else
// is moved into the working directory untouched.
type Archive struct {
	origin Origin
	run    *run.Runner
}

var _ Strategy = &Archive{}

func NewArchive(o Origin, r *run.Runner) *Archive {
	return &Archive{origin: o, run: r}
}

// cacheFileName is the cache entry name: "name-version" plus the archive
// extension, or the URL basename when no cache key is computable.
func (a *Archive) cacheFileName() string {
	key := a.origin.CacheKey()
	if key == "" {
		return urlBasename(a.origin.URL)
	}
	return key + archiveExt(a.origin.URL)
}

// Fetch downloads the archive into the cache. An existing cache file is
// trusted on presence alone and skipped; a failed or interrupted download
// removes the partial file before the error propagates, so a truncated
// artifact can never be mistaken for a complete one on a later run.
func (a *Archive) Fetch(ctx context.Context, s store.Store) (*Resolved, error) {
	name := a.cacheFileName()
	dest := s.Path(name)

	cached, err := s.Exists(name)
	if err != nil {
		return nil, &FetchError{URL: a.origin.URL, Err: fmt.Errorf("checking cache: %w", err)}
	}

	if cached {
		a.run.Status("Already downloaded: %s", dest)
	} else {
		if err := s.EnsureRoot(); err != nil {
			return nil, &FetchError{URL: a.origin.URL, Err: err}
		}
		a.run.Status("Downloading %s", a.origin.URL)
		if err := a.run.Run(ctx, "", "curl", a.origin.URL, "-o", dest); err != nil {
			s.Remove(name)
			return nil, fetchErr(a.origin.URL, ErrNetwork, err)
		}
	}

	integrity, err := s.HashFile(name)
	if err != nil {
		return nil, &FetchError{URL: a.origin.URL, Err: fmt.Errorf("hashing %s: %w", dest, err)}
	}

	return &Resolved{CachePath: dest, Integrity: integrity, Cached: cached}, nil
}

// Stage classifies the cached file and unpacks it into the working
// directory. Checksum verification of the cached file is the caller's
// concern and happens before Stage.
func (a *Archive) Stage(ctx context.Context, s store.Store) error {
	wd, err := os.Getwd()
	if err != nil {
		return &StageError{URL: a.origin.URL, Err: err}
	}

	cacheFile := s.Path(a.cacheFileName())
	kind, err := detectArchive(cacheFile)
	if err != nil {
		return stageErr(a.origin.URL, ErrExtraction, err)
	}

	switch kind {
	case archiveZip:
		var args []string
		if !a.run.Verbose() {
			args = append(args, "-qq")
		}
		args = append(args, cacheFile)
		if err := a.run.Run(ctx, wd, "unzip", args...); err != nil {
			return stageErr(a.origin.URL, ErrExtraction, err)
		}
	case archiveTar:
		if err := a.run.Run(ctx, wd, "tar", "xf", cacheFile); err != nil {
			return stageErr(a.origin.URL, ErrExtraction, err)
		}
	default:
		// Not an archive we know: hand the file to the build step as-is
		// (single-file installers, jars).
		if err := moveFile(cacheFile, filepath.Join(wd, urlBasename(a.origin.URL))); err != nil {
			return stageErr(a.origin.URL, ErrExtraction, err)
		}
		return nil
	}

	if err := promoteSingleEntry(wd); err != nil {
		return &StageError{URL: a.origin.URL, Err: err}
	}
	return nil
}

// NoExtract fetches like Archive but always stages the cached file verbatim,
// for artifacts meant to remain exactly as downloaded.
type NoExtract struct {
	Archive
}

var _ Strategy = &NoExtract{}

func NewNoExtract(o Origin, r *run.Runner) *NoExtract {
	return &NoExtract{Archive{origin: o, run: r}}
}

func (n *NoExtract) Stage(ctx context.Context, s store.Store) error {
	wd, err := os.Getwd()
	if err != nil {
		return &StageError{URL: n.origin.URL, Err: err}
	}

	cacheFile := s.Path(n.cacheFileName())
	if err := moveFile(cacheFile, filepath.Join(wd, urlBasename(n.origin.URL))); err != nil {
		return stageErr(n.origin.URL, ErrExtraction, err)
	}
	return nil
}
