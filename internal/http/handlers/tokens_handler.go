package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/http/middleware"
	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/internal/service"
)

type TokensHandler struct {
	tokens    service.TokenService
	jwtSecret string
}

func NewTokensHandler(tokens service.TokenService, jwtSecret string) *TokensHandler {
	return &TokensHandler{tokens: tokens, jwtSecret: jwtSecret}
}

func (h *TokensHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/packages", h.packages)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJWT(h.jwtSecret, ""))
		r.Post("/initialize", h.initialize)
		r.Get("/balance", h.balance)
		r.Post("/add", h.add)
		r.Post("/spend", h.spend)
	})
	return r
}

// userID resolves the ledger owner: the token subject, or ?user_id= when it
// names the caller. Admins may name any user.
func (h *TokensHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return "", false
	}
	id := r.URL.Query().Get("user_id")
	if id == "" {
		id = claims.Sub
	}
	if id != claims.Sub && claims.Role != string(domain.RoleAdmin) {
		response.Forbidden(w, "cannot access another user's tokens")
		return "", false
	}
	return id, true
}

func (h *TokensHandler) initialize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	res, err := h.tokens.Initialize(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *TokensHandler) balance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	snap, err := h.tokens.Balance(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *TokensHandler) add(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	// extend_expiry defaults to true when omitted
	in := domain.AddTokensRequest{ExtendExpiry: true}
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.tokens.Add(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *TokensHandler) spend(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var in domain.SpendTokensRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.tokens.Spend(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *TokensHandler) packages(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, domain.TokenPackages)
}
