package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"bankcards/internal/middleware"
	"bankcards/internal/models"
	"bankcards/internal/utils"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps service errors to status codes and stable machine
// codes. Unrecognized errors are logged and reported as INTERNAL_ERROR
// without leaking detail.
func respondError(w http.ResponseWriter, log *logrus.Logger, err error) {
	switch {
	case utils.IsError(err, utils.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorBody{"UNAUTHORIZED", "invalid credentials"})
	case utils.IsError(err, utils.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{"NOT_FOUND", err.Error()})
	case utils.IsError(err, utils.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorBody{"FORBIDDEN", err.Error()})
	case utils.IsError(err, utils.ErrInvalidInput),
		utils.IsError(err, utils.ErrInsufficientFunds),
		utils.IsError(err, utils.ErrDuplicateEntry):
		respondJSON(w, http.StatusBadRequest, errorBody{"BAD_REQUEST", err.Error()})
	default:
		log.Errorf("Unhandled service error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{"INTERNAL_ERROR", "internal server error"})
	}
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorBody{"BAD_REQUEST", message})
}

// actorFrom returns the authenticated user. The auth middlewares make a
// missing identity unreachable on protected routes.
func actorFrom(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{"UNAUTHORIZED", "authentication required"})
		return nil, false
	}
	return user, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func pageFrom(r *http.Request) models.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		size = 10
	}
	return models.NewPageRequest(page, size)
}
