package strategy

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/srcforge/srcforge/pkg/run"
	"github.com/srcforge/srcforge/pkg/store"
)

// Hg maintains a mercurial clone in the cache and stages with hg archive,
// the backend's native clean-export. The hg CLI is commonly absent on a
// default install, so Fetch preflights for it and fails with remediation
// text instead of a generic command failure.
type Hg struct {
	origin Origin
	run    *run.Runner
}

var _ Strategy = &Hg{}

func NewHg(o Origin, r *run.Runner) *Hg {
	return &Hg{origin: o, run: r}
}

// cloneURL strips the hg:// routing prefix; mercurial itself speaks plain
// http(s)/ssh URLs.
func (h *Hg) cloneURL() string {
	return strings.TrimPrefix(h.origin.URL, "hg://")
}

func (h *Hg) Fetch(ctx context.Context, s store.Store) (*Resolved, error) {
	if _, err := exec.LookPath("hg"); err != nil {
		return nil, &FetchError{
			URL: h.origin.URL,
			Err: fmt.Errorf("%w: hg not found in PATH; install mercurial (e.g. apt install mercurial) and retry", ErrToolMissing),
		}
	}

	name := h.origin.entryName()
	dir := s.Path(name)

	cached, err := s.Exists(name)
	if err != nil {
		return nil, &FetchError{URL: h.origin.URL, Err: fmt.Errorf("checking cache: %w", err)}
	}

	if !cached {
		if err := s.EnsureRoot(); err != nil {
			return nil, &FetchError{URL: h.origin.URL, Err: err}
		}
		h.run.Status("Cloning %s", h.cloneURL())
		if err := h.run.Run(ctx, "", "hg", "clone", h.cloneURL(), dir); err != nil {
			s.Remove(name)
			return nil, fetchErr(h.origin.URL, ErrVCSCommand, err)
		}
	} else {
		h.run.Status("Updating %s", dir)
		if err := h.run.RunQuiet(ctx, dir, "hg", "update"); err != nil {
			return nil, fetchErr(h.origin.URL, ErrVCSCommand, err)
		}
	}

	integrity, err := s.HashDir(name)
	if err != nil {
		return nil, &FetchError{URL: h.origin.URL, Err: fmt.Errorf("hashing %s: %w", dir, err)}
	}

	return &Resolved{CachePath: dir, Ref: pinRef(h.origin.Pin), Integrity: integrity, Cached: cached}, nil
}

// Stage archive-exports the clone into the working directory, scoped to the
// pinned ref when one is present, otherwise the current tip.
func (h *Hg) Stage(ctx context.Context, s store.Store) error {
	wd, err := os.Getwd()
	if err != nil {
		return &StageError{URL: h.origin.URL, Err: err}
	}
	dir := s.Path(h.origin.entryName())

	args := []string{"archive", "-y"}
	if pin := h.origin.Pin; pin != nil {
		args = append(args, "-r", pin.Ref)
	}
	args = append(args, "-t", "files", wd)

	if err := h.run.Run(ctx, dir, "hg", args...); err != nil {
		return stageErr(h.origin.URL, ErrVCSCommand, err)
	}
	return nil
}
