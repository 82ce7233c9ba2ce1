package strategy

import (
	"fmt"
	"strings"

	"github.com/srcforge/srcforge/pkg/run"
)

// Strategy kinds accepted by ForOrigin and usable as manifest hints.
const (
	KindArchive   = "archive"
	KindNoExtract = "noextract"
	KindGit       = "git"
	KindSvn       = "svn"
	KindCvs       = "cvs"
	KindHg        = "hg"
)

// Detect infers the strategy kind from the URL shape. Anything not
// recognizably a VCS URL downloads as an archive.
func Detect(rawURL string) string {
	switch {
	case strings.HasPrefix(rawURL, "cvs://"), strings.Contains(rawURL, ":pserver:"):
		return KindCvs
	case strings.HasPrefix(rawURL, "hg://"):
		return KindHg
	case strings.HasPrefix(rawURL, "git://"), strings.HasSuffix(strings.TrimSuffix(rawURL, "/"), ".git"):
		return KindGit
	case strings.HasPrefix(rawURL, "svn://"), strings.HasPrefix(rawURL, "svn+http"):
		return KindSvn
	default:
		return KindArchive
	}
}

// ValidKind reports whether kind names a known strategy.
func ValidKind(kind string) bool {
	switch kind {
	case KindArchive, KindNoExtract, KindGit, KindSvn, KindCvs, KindHg:
		return true
	}
	return false
}

// ForOrigin instantiates the strategy for an origin. kind overrides URL
// detection when non-empty (the formula layer's explicit choice).
func ForOrigin(o Origin, kind string, r *run.Runner) (Strategy, error) {
	if kind == "" {
		kind = Detect(o.URL)
	}

	switch kind {
	case KindArchive:
		return NewArchive(o, r), nil
	case KindNoExtract:
		return NewNoExtract(o, r), nil
	case KindGit:
		return NewGit(o, r), nil
	case KindSvn:
		return NewSvn(o, r), nil
	case KindCvs:
		return NewCvs(o, r), nil
	case KindHg:
		return NewHg(o, r), nil
	}
	return nil, fmt.Errorf("unknown strategy %q for %s", kind, o.URL)
}
