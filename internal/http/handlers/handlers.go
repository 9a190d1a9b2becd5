// Package handlers exposes the services over chi routers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/http/middleware"
	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/internal/service"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.WriteErrorWithDetail(w, http.StatusBadRequest, "invalid json", response.CodeInvalidInput, err.Error())
		return false
	}
	return true
}

// writeServiceError maps service and domain errors onto HTTP statuses.
// Anything unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate), errors.Is(err, domain.ErrInvalidTime):
		response.WriteErrorWithDetail(w, http.StatusBadRequest, "slot not offered", response.CodeSlotNotOffered, err.Error())
	case errors.Is(err, service.ErrValidation):
		response.WriteErrorWithDetail(w, http.StatusBadRequest, "invalid input", response.CodeInvalidInput, err.Error())
	case errors.Is(err, domain.ErrTokensExpired):
		response.WriteErrorWithDetail(w, http.StatusBadRequest, "tokens expired", response.CodeTokensExpired, "Your tokens have expired")
	case errors.Is(err, domain.ErrInsufficientTokens):
		response.WriteErrorWithDetail(w, http.StatusBadRequest, "insufficient tokens", response.CodeInsufficient, err.Error())
	case errors.Is(err, domain.ErrLedgerNotFound):
		response.WriteErrorWithDetail(w, http.StatusNotFound, "not found", response.CodeNotFound, "No token record found for this user")
	case errors.Is(err, service.ErrNotFound):
		response.WriteErrorWithDetail(w, http.StatusNotFound, "not found", response.CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrNotHost):
		response.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.WriteErrorWithDetail(w, http.StatusConflict, "conflict", response.CodeConflict, err.Error())
	case errors.Is(err, domain.ErrEmailExists):
		response.WriteError(w, http.StatusConflict, err.Error(), response.CodeEmailExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		response.InternalError(w, "internal server error")
	}
}

// identityOf rebuilds the caller's identity from verified token claims.
func identityOf(r *http.Request) *domain.Identity {
	claims := middleware.Claims(r)
	if claims == nil {
		return nil
	}
	return &domain.Identity{
		Username: claims.Username,
		Email:    claims.Email,
		Role:     domain.Role(claims.Role),
		UserID:   claims.Sub,
	}
}

// emailParam reads an address from the path. chi matches on the raw path
// when one is set, so an escaped "@" arrives as %40.
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
