package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"bankcards/internal/models"
	"bankcards/internal/service"
)

// AdminCardHandler handles the admin card management endpoints.
type AdminCardHandler struct {
	svc service.CardService
	log *logrus.Logger
}

// NewAdminCardHandler creates a new AdminCardHandler.
func NewAdminCardHandler(svc service.CardService, log *logrus.Logger) *AdminCardHandler {
	return &AdminCardHandler{svc: svc, log: log}
}

type createCardRequest struct {
	UserID         int64       `json:"user_id"`
	CardNumber     string      `json:"card_number"`
	ExpirationDate models.Date `json:"expiration_date"`
}

// Create handles POST /api/admin/cards.
func (h *AdminCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.UserID == 0 || req.CardNumber == "" || req.ExpirationDate.IsZero() {
		respondBadRequest(w, "user_id, card_number and expiration_date are required")
		return
	}

	card, err := h.svc.CreateForUser(r.Context(), actor, req.UserID, req.CardNumber, req.ExpirationDate)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, card)
}

// Activate handles PATCH /api/admin/cards/{id}/activate.
func (h *AdminCardHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.svc.Activate)
}

// Block handles PATCH /api/admin/cards/{id}/block.
func (h *AdminCardHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.svc.Block)
}

func (h *AdminCardHandler) setStatus(w http.ResponseWriter, r *http.Request,
	op func(context.Context, *models.User, int64) (*models.CardView, error)) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid card id")
		return
	}
	card, err := op(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

// Delete handles DELETE /api/admin/cards/{id}.
func (h *AdminCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid card id")
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/admin/cards.
func (h *AdminCardHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListAll(r.Context(), actor, pageFrom(r))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}
