package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gradeboard-dev/gradeboard/internal/storage"
	"github.com/gradeboard-dev/gradeboard/internal/utils"
)

type coursesResponse struct {
	Courses []string `json:"courses"`
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	ids, err := h.courses.List(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, coursesResponse{Courses: ids})
}

// CourseProgress serves the precomputed grading-progress document for one
// course verbatim.
func (h *Handler) CourseProgress(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "course")

	doc, err := h.courses.Progress(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "No data for this course", http.StatusNotFound)
			return
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}
