package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/http/middleware"
	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/internal/service"
)

type MentorsHandler struct {
	mentors   service.MentorService
	jwtSecret string
}

func NewMentorsHandler(mentors service.MentorService, jwtSecret string) *MentorsHandler {
	return &MentorsHandler{mentors: mentors, jwtSecret: jwtSecret}
}

func (h *MentorsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/all", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJWT(h.jwtSecret, string(domain.RoleMentor)))
		r.Put("/profile", h.saveProfile)
	})
	return r
}

func (h *MentorsHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.mentors.ListMentors(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"status": "success", "mentors": list})
}

func (h *MentorsHandler) get(w http.ResponseWriter, r *http.Request) {
	m, err := h.mentors.GetMentor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"status": "success", "mentor": m})
}

func (h *MentorsHandler) saveProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.Mentor
	if !decodeJSON(w, r, &in) {
		return
	}
	m, err := h.mentors.SaveProfile(r.Context(), middleware.Claims(r).Sub, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"status": "success", "mentor": m})
}
