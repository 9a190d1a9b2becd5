package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/internal/service"
)

type BookingsHandler struct {
	bookings service.BookingService
}

func NewBookingsHandler(bookings service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create", h.create)
	r.Get("/", h.list)
	r.Get("/check/{sessionID}/{email}", h.check)
	r.Get("/{id}", h.get)
	return r
}

func (h *BookingsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.BookingRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	b, err := h.bookings.CreateBooking(r.Context(), &in, key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, b)
}

func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	list, err := h.bookings.ListBookings(r.Context(), q.Get("session_id"), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Booking{}
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *BookingsHandler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookings.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) check(w http.ResponseWriter, r *http.Request) {
	res, err := h.bookings.CheckBookings(r.Context(), chi.URLParam(r, "sessionID"), emailParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}
