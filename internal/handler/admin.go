package handler

import (
	"net/http"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
	"github.com/gradeboard-dev/gradeboard/internal/utils"
)

type usersResponse struct {
	Users []domain.PublicUser `json:"users"`
}

// ListUsers returns the directory without password hashes. Administrator
// only; bulk edits stay with the offline management tool.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.List(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, usersResponse{Users: users})
}
