package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bankcards/internal/service"
)

// CardHandler handles the authenticated card endpoints.
type CardHandler struct {
	svc service.CardService
	log *logrus.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(svc service.CardService, log *logrus.Logger) *CardHandler {
	return &CardHandler{svc: svc, log: log}
}

// List handles GET /api/cards.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListOwn(r.Context(), actor, pageFrom(r))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Get handles GET /api/cards/{id}.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid card id")
		return
	}
	card, err := h.svc.GetOwn(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

// Balance handles GET /api/cards/balance/{id}.
func (h *CardHandler) Balance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid card id")
		return
	}
	balance, err := h.svc.GetBalance(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"card_id": id,
		"balance": balance,
	})
}

type transferRequest struct {
	FromCardID int64           `json:"from_card_id"`
	ToCardID   int64           `json:"to_card_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Transfer handles POST /api/cards/transfer.
func (h *CardHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.FromCardID == 0 || req.ToCardID == 0 {
		respondBadRequest(w, "from_card_id and to_card_id are required")
		return
	}
	// The documented minimum transferable unit; the engine itself only
	// requires a strictly positive amount.
	if req.Amount.LessThan(decimal.NewFromInt(1)) {
		respondBadRequest(w, "amount must be at least 1")
		return
	}

	if err := h.svc.Transfer(r.Context(), actor, req.FromCardID, req.ToCardID, req.Amount); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "transfer completed"})
}
