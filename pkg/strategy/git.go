package strategy

import (
	"context"
	"fmt"
	"os"

	"github.com/srcforge/srcforge/pkg/run"
	"github.com/srcforge/srcforge/pkg/store"
)

// Git maintains a clone in the cache and stages via checkout-index, which
// writes the tracked tree without the .git directory.
type Git struct {
	origin Origin
	run    *run.Runner
}

var _ Strategy = &Git{}

func NewGit(o Origin, r *run.Runner) *Git {
	return &Git{origin: o, run: r}
}

// Fetch clones on first use and fetches updates afterwards. The initial
// clone always streams its progress, even in quiet mode; updates are quiet
// unless verbose.
func (g *Git) Fetch(ctx context.Context, s store.Store) (*Resolved, error) {
	name := g.origin.entryName()
	dir := s.Path(name)

	cached, err := s.Exists(name)
	if err != nil {
		return nil, &FetchError{URL: g.origin.URL, Err: fmt.Errorf("checking cache: %w", err)}
	}

	if !cached {
		if err := s.EnsureRoot(); err != nil {
			return nil, &FetchError{URL: g.origin.URL, Err: err}
		}
		g.run.Status("Cloning %s", g.origin.URL)
		if err := g.run.Run(ctx, "", "git", "clone", g.origin.URL, dir); err != nil {
			s.Remove(name)
			return nil, fetchErr(g.origin.URL, ErrVCSCommand, err)
		}
	} else {
		g.run.Status("Updating %s", dir)
		if err := g.run.RunQuiet(ctx, dir, "git", "fetch", g.origin.URL); err != nil {
			return nil, fetchErr(g.origin.URL, ErrVCSCommand, err)
		}
	}

	integrity, err := s.HashDir(name)
	if err != nil {
		return nil, &FetchError{URL: g.origin.URL, Err: fmt.Errorf("hashing %s: %w", dir, err)}
	}

	return &Resolved{CachePath: dir, Ref: pinRef(g.origin.Pin), Integrity: integrity, Cached: cached}, nil
}

// Stage checks out the pinned ref, if any, then exports the checked-out tree
// into the working directory. Branch pins resolve against the remote-tracking
// namespace; tag and revision pins are checked out literally.
func (g *Git) Stage(ctx context.Context, s store.Store) error {
	wd, err := os.Getwd()
	if err != nil {
		return &StageError{URL: g.origin.URL, Err: err}
	}
	dir := s.Path(g.origin.entryName())

	if pin := g.origin.Pin; pin != nil {
		ref := pin.Ref
		if pin.Kind == PinBranch {
			ref = "origin/" + ref
		}
		if err := g.run.RunQuiet(ctx, dir, "git", "checkout", ref); err != nil {
			return stageErr(g.origin.URL, ErrVCSCommand, err)
		}
	}

	if err := g.run.Run(ctx, dir, "git", "checkout-index", "-af", "--prefix="+wd+string(os.PathSeparator)); err != nil {
		return stageErr(g.origin.URL, ErrVCSCommand, err)
	}
	return nil
}

func pinRef(p *Pin) string {
	if p == nil {
		return ""
	}
	return p.Ref
}
