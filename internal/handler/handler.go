package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gradeboard-dev/gradeboard/internal/service"
	"github.com/gradeboard-dev/gradeboard/internal/storage"
)

type Handler struct {
	auth      *service.Auth
	directory *service.Directory
	courses   *service.Courses
	health    storage.Pinger
}

func New(auth *service.Auth, directory *service.Directory, courses *service.Courses, health storage.Pinger) *Handler {
	return &Handler{auth: auth, directory: directory, courses: courses, health: health}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
