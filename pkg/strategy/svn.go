package strategy

import (
	"context"
	"fmt"
	"os"

	"github.com/srcforge/srcforge/pkg/run"
	"github.com/srcforge/srcforge/pkg/store"
)

// Svn maintains a checkout in the cache and stages with svn export, which
// writes file contents without the .svn bookkeeping.
type Svn struct {
	origin Origin
	run    *run.Runner
}

var _ Strategy = &Svn{}

func NewSvn(o Origin, r *run.Runner) *Svn {
	return &Svn{origin: o, run: r}
}

func (v *Svn) Fetch(ctx context.Context, s store.Store) (*Resolved, error) {
	name := v.origin.entryName()
	dir := s.Path(name)

	cached, err := s.Exists(name)
	if err != nil {
		return nil, &FetchError{URL: v.origin.URL, Err: fmt.Errorf("checking cache: %w", err)}
	}

	if !cached {
		if err := s.EnsureRoot(); err != nil {
			return nil, &FetchError{URL: v.origin.URL, Err: err}
		}
		v.run.Status("Checking out %s", v.origin.URL)
		if err := v.run.RunQuiet(ctx, "", "svn", "checkout", v.origin.URL, dir); err != nil {
			s.Remove(name)
			return nil, fetchErr(v.origin.URL, ErrVCSCommand, err)
		}
	} else {
		v.run.Status("Updating %s", dir)
		if err := v.run.RunQuiet(ctx, "", "svn", "up", dir); err != nil {
			return nil, fetchErr(v.origin.URL, ErrVCSCommand, err)
		}
	}

	integrity, err := s.HashDir(name)
	if err != nil {
		return nil, &FetchError{URL: v.origin.URL, Err: fmt.Errorf("hashing %s: %w", dir, err)}
	}

	return &Resolved{CachePath: dir, Ref: pinRef(v.origin.Pin), Integrity: integrity, Cached: cached}, nil
}

// Stage force-exports the checkout into the working directory. Only revision
// pins are meaningful for svn; branch and tag pins are ignored.
func (v *Svn) Stage(ctx context.Context, s store.Store) error {
	wd, err := os.Getwd()
	if err != nil {
		return &StageError{URL: v.origin.URL, Err: err}
	}
	dir := s.Path(v.origin.entryName())

	args := []string{"export", "--force", dir, wd}
	if pin := v.origin.Pin; pin != nil && pin.Kind == PinRevision {
		args = append(args, "-r", pin.Ref)
	}
	if err := v.run.RunQuiet(ctx, "", "svn", args...); err != nil {
		return stageErr(v.origin.URL, ErrVCSCommand, err)
	}
	return nil
}
