// Package storage defines the object-store contract shared by the API
// server and the user management tool. The backing store is modeled as a
// key→(value, version) map with compare-and-swap writes: every read carries
// a version tag, and every write is conditional on that tag, which is the
// only concurrency control the directory has.
package storage

import (
	"context"
	"errors"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
)

// Version identifies the revision of a stored document (the S3 ETag in
// production). It is opaque to callers.
type Version string

// NoVersion is the sentinel returned by Load when the backing document does
// not exist yet. Passing it to Save asserts the document must still be
// absent at write time.
const NoVersion Version = ""

var (
	// ErrConflict means the document changed between Load and Save; nothing
	// was written. The caller must reload, reapply its mutation and retry.
	ErrConflict = errors.New("document modified concurrently")

	// ErrTransient covers timeouts and store unavailability. Retryable, and
	// never to be confused with ErrConflict.
	ErrTransient = errors.New("object store unavailable")

	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrMalformedDocument means the stored document does not match the
	// expected schema. Never auto-repaired.
	ErrMalformedDocument = errors.New("malformed document")
)

// DirectoryStore reads and writes the user directory as one whole document.
// There is no partial-field update primitive.
type DirectoryStore interface {
	// Load returns the full directory and its version tag. A missing
	// backing document yields an empty directory and NoVersion, not an
	// error.
	Load(ctx context.Context) (domain.Directory, Version, error)

	// Save writes the full directory, conditional on the stored version
	// still matching expected. Returns the new version on success and
	// ErrConflict (with no write) when the condition fails.
	Save(ctx context.Context, dir domain.Directory, expected Version) (Version, error)
}

// CourseStore is the read-only boundary to the precomputed grading-progress
// documents produced by the external ingestion job.
type CourseStore interface {
	ListCourseIDs(ctx context.Context) ([]string, error)
	// CourseDocument returns the latest document for a course verbatim,
	// or ErrNotFound.
	CourseDocument(ctx context.Context, courseID string) ([]byte, error)
}

// Pinger reports whether the backing store is reachable, for readiness
// probes.
type Pinger interface {
	Ping(ctx context.Context) error
}
