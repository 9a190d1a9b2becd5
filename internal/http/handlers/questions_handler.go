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

type QuestionsHandler struct {
	questions service.QuestionService
	jwtSecret string
}

func NewQuestionsHandler(questions service.QuestionService, jwtSecret string) *QuestionsHandler {
	return &QuestionsHandler{questions: questions, jwtSecret: jwtSecret}
}

func (h *QuestionsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.OptionalJWT(h.jwtSecret))
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/upvote", h.upvote)
		r.Post("/answer", h.answer)
		r.Get("/answers", h.answers)
		r.Post("/answers/{answerID}/upvote", h.upvoteAnswer)
	})
	return r
}

func (h *QuestionsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.QuestionFilter{
		CategoryID: q.Get("category_id"),
		SortBy:     domain.QuestionSort(q.Get("sort_by")),
	}
	f.Skip, _ = strconv.Atoi(q.Get("skip"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	list, err := h.questions.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *QuestionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.QuestionCreate
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := h.questions.Create(r.Context(), in, identityOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, q)
}

func (h *QuestionsHandler) get(w http.ResponseWriter, r *http.Request) {
	q, err := h.questions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, q)
}

func (h *QuestionsHandler) upvote(w http.ResponseWriter, r *http.Request) {
	q, err := h.questions.Upvote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, q)
}

func (h *QuestionsHandler) answer(w http.ResponseWriter, r *http.Request) {
	var in domain.AnswerCreate
	if !decodeJSON(w, r, &in) {
		return
	}
	if id := identityOf(r); id != nil {
		in.Author = domain.AuthorFromIdentity(*id)
	}
	a, err := h.questions.Answer(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, a)
}

func (h *QuestionsHandler) answers(w http.ResponseWriter, r *http.Request) {
	list, err := h.questions.Answers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *QuestionsHandler) upvoteAnswer(w http.ResponseWriter, r *http.Request) {
	a, err := h.questions.UpvoteAnswer(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "answerID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}
