package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/http/middleware"
	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/internal/service"
)

// AMAHandler serves both the AMA session catalogue and seat registration;
// Routes and RegistrationRoutes are mounted under different prefixes.
type AMAHandler struct {
	ama       service.AMAService
	jwtSecret string
}

func NewAMAHandler(ama service.AMAService, jwtSecret string) *AMAHandler {
	return &AMAHandler{ama: ama, jwtSecret: jwtSecret}
}

func (h *AMAHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJWT(h.jwtSecret, string(domain.RoleMentor)))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

func (h *AMAHandler) RegistrationRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.register)
	r.Get("/check/{sessionID}/{email}", h.check)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJWT(h.jwtSecret, string(domain.RoleMentor)))
		r.Get("/session/{sessionID}", h.listRegistrations)
	})
	return r
}

func (h *AMAHandler) list(w http.ResponseWriter, r *http.Request) {
	var womanTech *bool
	if raw := r.URL.Query().Get("is_woman_tech"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "is_woman_tech must be true or false")
			return
		}
		womanTech = &v
	}
	list, err := h.ama.ListSessions(r.Context(), womanTech)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *AMAHandler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.ama.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *AMAHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.AMASession
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.ama.CreateSession(r.Context(), middleware.Claims(r).Sub, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, a)
}

func (h *AMAHandler) update(w http.ResponseWriter, r *http.Request) {
	var in domain.AMASession
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.ama.UpdateSession(r.Context(), middleware.Claims(r).Sub, chi.URLParam(r, "id"), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *AMAHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ama.DeleteSession(r.Context(), middleware.Claims(r).Sub, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AMAHandler) register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegistrationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reg, err := h.ama.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, reg)
}

func (h *AMAHandler) check(w http.ResponseWriter, r *http.Request) {
	ok, err := h.ama.IsRegistered(r.Context(), chi.URLParam(r, "sessionID"), emailParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"is_registered": ok})
}

func (h *AMAHandler) listRegistrations(w http.ResponseWriter, r *http.Request) {
	list, err := h.ama.ListRegistrations(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}
