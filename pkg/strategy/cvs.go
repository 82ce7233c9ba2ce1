package strategy

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/srcforge/srcforge/pkg/run"
	"github.com/srcforge/srcforge/pkg/store"
)

// cvsMetadataDir is the bookkeeping directory cvs plants in every checked-out
// directory; staging must remove all of them.
const cvsMetadataDir = "CVS"

// Cvs checks a module out of a pserver-style repository. The origin URL
// carries both the repository root and the module name; cvs has no export
// primitive that fits here, so staging copies the checkout and strips the
// metadata directories afterwards.
type Cvs struct {
	origin Origin
	run    *run.Runner
}

var _ Strategy = &Cvs{}

func NewCvs(o Origin, r *run.Runner) *Cvs {
	return &Cvs{origin: o, run: r}
}

// splitCvsURL splits "cvs://<root>:<module>" at the last colon. The root
// itself contains colons (":pserver:user@host:/path"), so only the final
// component is the module.
func splitCvsURL(rawURL string) (module, root string, err error) {
	trimmed := strings.TrimPrefix(rawURL, "cvs://")
	idx := strings.LastIndex(trimmed, ":")
	if idx <= 0 || idx == len(trimmed)-1 {
		return "", "", fmt.Errorf("cvs url %q has no module component", rawURL)
	}
	return trimmed[idx+1:], trimmed[:idx], nil
}

// Fetch logs in and checks the module out on first use; afterwards it
// updates the existing checkout in place. The update path does not re-run
// login: an expired session surfaces as a failed update.
func (c *Cvs) Fetch(ctx context.Context, s store.Store) (*Resolved, error) {
	module, root, err := splitCvsURL(c.origin.URL)
	if err != nil {
		return nil, &FetchError{URL: c.origin.URL, Err: err}
	}

	name := c.origin.entryName()
	dir := s.Path(name)

	cached, err := s.Exists(name)
	if err != nil {
		return nil, &FetchError{URL: c.origin.URL, Err: fmt.Errorf("checking cache: %w", err)}
	}

	if !cached {
		if err := s.EnsureRoot(); err != nil {
			return nil, &FetchError{URL: c.origin.URL, Err: err}
		}
		c.run.Status("Checking out %s", c.origin.URL)
		if err := c.run.Run(ctx, s.Root(), "cvs", "-d", root, "login"); err != nil {
			return nil, fetchErr(c.origin.URL, ErrVCSCommand, err)
		}
		if err := c.run.Run(ctx, s.Root(), "cvs", "-d", root, "checkout", "-d", name, module); err != nil {
			s.Remove(name)
			return nil, fetchErr(c.origin.URL, ErrVCSCommand, err)
		}
	} else {
		c.run.Status("Updating %s", dir)
		if err := c.run.Run(ctx, dir, "cvs", "up"); err != nil {
			return nil, fetchErr(c.origin.URL, ErrVCSCommand, err)
		}
	}

	integrity, err := s.HashDir(name)
	if err != nil {
		return nil, &FetchError{URL: c.origin.URL, Err: fmt.Errorf("hashing %s: %w", dir, err)}
	}

	return &Resolved{CachePath: dir, Integrity: integrity, Cached: cached}, nil
}

// Stage copies the whole checkout into the working directory, then deletes
// every directory literally named CVS, pruning descent below each one.
func (c *Cvs) Stage(ctx context.Context, s store.Store) error {
	wd, err := os.Getwd()
	if err != nil {
		return &StageError{URL: c.origin.URL, Err: err}
	}
	dir := s.Path(c.origin.entryName())

	if err := copyTree(dir, wd); err != nil {
		return stageErr(c.origin.URL, ErrExtraction, err)
	}
	if err := removeMetadataDirs(wd, cvsMetadataDir); err != nil {
		return stageErr(c.origin.URL, ErrExtraction, err)
	}
	return nil
}
