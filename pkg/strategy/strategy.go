// Package strategy implements the fetch-and-stage engine: one interface over
// archive downloads and git/svn/cvs/hg checkouts. Fetch populates or updates
// a cache entry under the shared store; Stage materializes a clean,
// VCS-metadata-free copy of that entry into the current working directory.
package strategy

import (
	"context"
	"net/url"
	"path"

	"github.com/srcforge/srcforge/pkg/store"
)

// UnknownName is the sentinel for packages whose name could not be resolved.
// Origins carrying it fall back to URL-basename cache naming, so two such
// packages can alias the same cache entry.
const UnknownName = "unknown"

// PinKind selects which checkout target a Pin names.
type PinKind int

const (
	PinBranch PinKind = iota
	PinTag
	PinRevision
)

func (k PinKind) String() string {
	switch k {
	case PinBranch:
		return "branch"
	case PinTag:
		return "tag"
	case PinRevision:
		return "revision"
	}
	return "unknown"
}

// Pin requests a specific branch, tag, or revision instead of the default
// latest state. At most one pin is meaningful per origin; callers declaring
// several must pick one before constructing the Origin.
type Pin struct {
	Kind PinKind
	Ref  string
}

// Origin describes where a package's source comes from.
type Origin struct {
	URL     string
	Name    string
	Version string
	Pin     *Pin
}

// CacheKey returns the deterministic "name-version" identifier, or "" when
// the name is empty or the unknown sentinel.
func (o Origin) CacheKey() string {
	if o.Name == "" || o.Name == UnknownName {
		return ""
	}
	return o.Name + "-" + o.Version
}

// entryName is the cache entry name: the CacheKey when computable, otherwise
// the URL's file basename.
func (o Origin) entryName() string {
	if key := o.CacheKey(); key != "" {
		return key
	}
	return urlBasename(o.URL)
}

// Resolved reports what Fetch put (or found) in the cache.
type Resolved struct {
	// CachePath is the cache entry: a file for archive strategies, a
	// directory for VCS strategies.
	CachePath string
	// Ref is the pin ref that will be honored at stage time, if any.
	Ref string
	// Integrity is a "sha256:" digest of the cache entry contents.
	Integrity string
	// Cached reports that an existing entry was reused without a download.
	Cached bool
}

// Strategy fetches a package's source into the cache and stages it into the
// current working directory. Fetch is always called before Stage and is
// idempotent: when the cache entry already exists it becomes an
// update-in-place, never a re-download. Stage assumes Fetch has run in this
// process and writes into the process working directory; the caller is
// responsible for chdir'ing into an empty build directory first.
type Strategy interface {
	Fetch(ctx context.Context, s store.Store) (*Resolved, error)
	Stage(ctx context.Context, s store.Store) error
}

// urlBasename returns the final path element of the URL, ignoring query
// strings and fragments.
func urlBasename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}
