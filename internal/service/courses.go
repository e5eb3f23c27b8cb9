package service

import (
	"context"
	"encoding/json"

	"github.com/gradeboard-dev/gradeboard/internal/storage"
)

// Courses is the read-only boundary to the grading-progress documents the
// external ingestion job precomputes. Documents pass through verbatim; the
// aggregation layer owns their shape.
type Courses struct {
	store storage.CourseStore
}

func NewCourses(store storage.CourseStore) *Courses {
	return &Courses{store: store}
}

func (c *Courses) List(ctx context.Context) ([]string, error) {
	return c.store.ListCourseIDs(ctx)
}

// Progress returns the latest document for a course, or
// storage.ErrNotFound.
func (c *Courses) Progress(ctx context.Context, courseID string) (json.RawMessage, error) {
	doc, err := c.store.CourseDocument(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(doc), nil
}
