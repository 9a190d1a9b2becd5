package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/http/middleware"
	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/internal/service"
)

type SessionsHandler struct {
	sessions  service.SessionService
	jwtSecret string
}

func NewSessionsHandler(sessions service.SessionService, jwtSecret string) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, jwtSecret: jwtSecret}
}

func (h *SessionsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/mentor/{mentorID}", h.listByMentor)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJWT(h.jwtSecret, string(domain.RoleMentor)))
		r.Post("/create", h.create)
		r.Post("/update/{id}", h.update)
		r.Post("/delete/{id}", h.delete)
	})
	return r
}

func writeSession(w http.ResponseWriter, status int, s *domain.Session) {
	response.JSON(w, status, map[string]any{"status": "success", "session": s})
}

func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, s)
}

func (h *SessionsHandler) listByMentor(w http.ResponseWriter, r *http.Request) {
	list, err := h.sessions.ListMentorSessions(r.Context(), chi.URLParam(r, "mentorID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"status": "success", "sessions": list})
}

func (h *SessionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.Session
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.sessions.CreateSession(r.Context(), middleware.Claims(r).Sub, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSession(w, http.StatusCreated, s)
}

func (h *SessionsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in domain.Session
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.sessions.UpdateSession(r.Context(), middleware.Claims(r).Sub, chi.URLParam(r, "id"), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, s)
}

func (h *SessionsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.DeleteSession(r.Context(), middleware.Claims(r).Sub, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Session deleted"})
}
