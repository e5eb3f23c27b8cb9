package handler

import (
	"net/http"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
	"github.com/gradeboard-dev/gradeboard/internal/middleware"
	"github.com/gradeboard-dev/gradeboard/internal/utils"
)

type credentials struct {
	Email    string `validate:"required,email" json:"email"`
	Password string `validate:"required" json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := utils.DecodeValidate(r.Body, &creds); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	token, user, err := h.auth.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, loginResponse{Token: token, User: user})
}

// Me returns the principal asserted by the presented token. It reads
// nothing from the directory: the token is the whole session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	if p == nil {
		http.Error(w, "Please sign in", http.StatusUnauthorized)
		return
	}
	writeJSON(w, domain.PublicUser{Email: p.Email, Name: p.Name, Role: p.Role})
}

// Logout always succeeds; the server keeps no session state. The client is
// expected to discard its token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if p := middleware.GetPrincipal(r); p != nil {
		h.auth.Logout(r.Context(), *p)
	}
	writeJSON(w, map[string]string{"message": "Logged out successfully"})
}
