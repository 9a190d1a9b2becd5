package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/internal/service"
)

type UsersHandler struct {
	users   service.UserService
	limiter func(http.Handler) http.Handler
}

// NewUsersHandler wires the account routes. limiter guards register and
// login; nil disables it.
func NewUsersHandler(users service.UserService, limiter func(http.Handler) http.Handler) *UsersHandler {
	return &UsersHandler{users: users, limiter: limiter}
}

func (h *UsersHandler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.limiter != nil {
		r.Use(h.limiter)
	}
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	return r
}

func (h *UsersHandler) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.users.Register(r.Context(), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    u,
	})
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	id, err := h.users.Login(r.Context(), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, id)
}
