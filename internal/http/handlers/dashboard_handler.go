package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/http/middleware"
	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/internal/service"
)

type DashboardHandler struct {
	dashboard service.DashboardService
	jwtSecret string
}

func NewDashboardHandler(dashboard service.DashboardService, jwtSecret string) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, jwtSecret: jwtSecret}
}

func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireJWT(h.jwtSecret, ""))
	r.Get("/mentee/{email}", h.mentee)
	return r
}

// mentee only serves the caller's own dashboard; admins may read any.
func (h *DashboardHandler) mentee(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	claims := middleware.Claims(r)
	if claims.Role != string(domain.RoleAdmin) && !strings.EqualFold(strings.TrimSpace(email), claims.Email) {
		response.Forbidden(w, "dashboard belongs to another user")
		return
	}
	d, err := h.dashboard.MenteeDashboard(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, d)
}
