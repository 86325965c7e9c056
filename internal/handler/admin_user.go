package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"bankcards/internal/models"
	"bankcards/internal/service"
)

// AdminUserHandler handles the admin user management endpoints.
type AdminUserHandler struct {
	svc service.UserService
	log *logrus.Logger
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(svc service.UserService, log *logrus.Logger) *AdminUserHandler {
	return &AdminUserHandler{svc: svc, log: log}
}

type createUserRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Create handles POST /api/admin/users.
func (h *AdminUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondBadRequest(w, "username and password are required")
		return
	}
	if !req.Role.Valid() {
		respondBadRequest(w, "role must be ADMIN or USER")
		return
	}

	user, err := h.svc.Create(r.Context(), actor, req.Username, req.Password, req.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// List handles GET /api/admin/users.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	users, err := h.svc.FindAll(r.Context(), actor)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Get handles GET /api/admin/users/{id}.
func (h *AdminUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid user id")
		return
	}
	user, err := h.svc.FindByID(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/admin/users/{id}.
func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid user id")
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
