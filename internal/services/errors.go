package services

import (
	"errors"
	"fmt"
)

var (
	ErrJobNotFound     = errors.New("import job not found")
	ErrJobNotCompleted = errors.New("import job has not completed")
	ErrArchiveDisabled = errors.New("snapshot archive is not configured")
)

// AcquisitionError means listings could not be fetched from a source.
// It fails the whole job.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire listings from %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ReHostError is a single image that could not be moved to the media host.
// The original URL is kept in its place.
type ReHostError struct {
	Source   string
	Listing  string
	Index    int
	ImageURL string
	Err      error
}

func (e *ReHostError) Error() string {
	return fmt.Sprintf("failed to re-host image %d of %q (%s): %v", e.Index, e.Listing, e.ImageURL, e.Err)
}

func (e *ReHostError) Unwrap() error { return e.Err }

// PersistenceError is a single listing the document store rejected.
type PersistenceError struct {
	Index int
	Title string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to import listing %d (%q): %v", e.Index, e.Title, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
