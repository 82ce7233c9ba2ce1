package strategy

import (
	"errors"
	"fmt"
)

// Failure classes. Any external tool exiting nonzero is fatal to the current
// fetch or stage call; there are no retries.
var (
	// ErrNetwork marks a failed archive transfer.
	ErrNetwork = errors.New("download failed")
	// ErrToolMissing marks a required backend CLI that is not installed.
	ErrToolMissing = errors.New("required tool not installed")
	// ErrVCSCommand marks a version-control command that exited nonzero.
	ErrVCSCommand = errors.New("version control command failed")
	// ErrEmptyArchive marks an archive that extracted to zero entries.
	ErrEmptyArchive = errors.New("archive contained no files")
	// ErrExtraction marks a failed unpack or staging copy.
	ErrExtraction = errors.New("extraction failed")
)

// FetchError wraps any failure to populate or update a cache entry.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StageError wraps any failure to materialize fetched content into the
// working directory.
type StageError struct {
	URL string
	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("staging %s: %v", e.URL, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func fetchErr(url string, class, err error) error {
	return &FetchError{URL: url, Err: fmt.Errorf("%w: %w", class, err)}
}

func stageErr(url string, class, err error) error {
	return &StageError{URL: url, Err: fmt.Errorf("%w: %w", class, err)}
}
