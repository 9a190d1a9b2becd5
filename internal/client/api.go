package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mentorhood/mentorhood/internal/domain"
)

type userQuery struct {
	UserID string `url:"user_id"`
}

type sessionEnvelope struct {
	Status  string         `json:"status"`
	Session domain.Session `json:"session"`
}

type sessionsEnvelope struct {
	Status   string           `json:"status"`
	Sessions []domain.Session `json:"sessions"`
}

func (c *Client) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var env sessionEnvelope
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/sessions/" + url.PathEscape(id)}, &env)
	return env.Session, err
}

func (c *Client) ListMentorSessions(ctx context.Context, mentorID string) ([]domain.Session, error) {
	var env sessionsEnvelope
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/sessions/mentor/" + url.PathEscape(mentorID)}, &env)
	return env.Sessions, err
}

func (c *Client) CreateSession(ctx context.Context, s domain.Session) (domain.Session, error) {
	var env sessionEnvelope
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/sessions/create", body: s}, &env)
	return env.Session, err
}

func (c *Client) UpdateSession(ctx context.Context, id string, s domain.Session) (domain.Session, error) {
	var env sessionEnvelope
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/sessions/update/" + url.PathEscape(id), body: s}, &env)
	return env.Session, err
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/api/sessions/delete/" + url.PathEscape(id)}, nil)
}

// CreateBooking posts a booking; the server replays the first result for a
// repeated idempotency key.
func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest, idempotencyKey string) (domain.BookingResponse, error) {
	var out domain.BookingResponse
	in := call{method: http.MethodPost, path: "/api/bookings/create", body: req}
	if idempotencyKey != "" {
		in.headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	err := c.do(ctx, in, &out)
	return out, err
}

func (c *Client) CheckBookings(ctx context.Context, sessionID, email string) (domain.BookingCheck, error) {
	var out domain.BookingCheck
	path := "/api/bookings/check/" + url.PathEscape(sessionID) + "/" + url.PathEscape(email)
	err := c.do(ctx, call{method: http.MethodGet, path: path}, &out)
	return out, err
}

func (c *Client) InitializeTokens(ctx context.Context, userID string) (domain.TokenMutation, error) {
	var out domain.TokenMutation
	err := c.do(ctx, call{method: http.MethodPost, path: "/tokens/initialize", query: userQuery{userID}}, &out)
	return out, err
}

func (c *Client) GetTokenBalance(ctx context.Context, userID string) (domain.TokenLedgerSnapshot, error) {
	var out domain.TokenLedgerSnapshot
	err := c.do(ctx, call{method: http.MethodGet, path: "/tokens/balance", query: userQuery{userID}}, &out)
	return out, err
}

func (c *Client) AddTokens(ctx context.Context, userID string, req domain.AddTokensRequest) (domain.TokenMutation, error) {
	var out domain.TokenMutation
	err := c.do(ctx, call{method: http.MethodPost, path: "/tokens/add", query: userQuery{userID}, body: req}, &out)
	return out, err
}

func (c *Client) SpendTokens(ctx context.Context, userID string, req domain.SpendTokensRequest) (domain.TokenMutation, error) {
	var out domain.TokenMutation
	err := c.do(ctx, call{method: http.MethodPost, path: "/tokens/spend", query: userQuery{userID}, body: req}, &out)
	return out, err
}

func (c *Client) ListQuestions(ctx context.Context, f domain.QuestionFilter) ([]domain.Question, error) {
	var out []domain.Question
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/questionnaires", query: f}, &out)
	return out, err
}

func (c *Client) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	var out domain.Question
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/questionnaires/" + url.PathEscape(id)}, &out)
	return out, err
}

func (c *Client) CreateQuestion(ctx context.Context, q domain.QuestionCreate) (domain.Question, error) {
	var out domain.Question
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/questionnaires", body: q}, &out)
	return out, err
}

func (c *Client) UpvoteQuestion(ctx context.Context, id string) (domain.Question, error) {
	var out domain.Question
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/questionnaires/" + url.PathEscape(id) + "/upvote"}, &out)
	return out, err
}

// AnswerQuestion posts an answer and returns it; the question's answer
// count is bumped server side.
func (c *Client) AnswerQuestion(ctx context.Context, id string, a domain.AnswerCreate) (domain.Answer, error) {
	var out domain.Answer
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/questionnaires/" + url.PathEscape(id) + "/answer", body: a}, &out)
	return out, err
}

func (c *Client) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	var out []domain.Answer
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/questionnaires/" + url.PathEscape(questionID) + "/answers"}, &out)
	return out, err
}

func (c *Client) UpvoteAnswer(ctx context.Context, questionID, answerID string) (domain.Answer, error) {
	var out domain.Answer
	path := "/api/questionnaires/" + url.PathEscape(questionID) + "/answers/" + url.PathEscape(answerID) + "/upvote"
	err := c.do(ctx, call{method: http.MethodPost, path: path}, &out)
	return out, err
}

// Login exchanges credentials for the identity record the app keeps.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	var out domain.Identity
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/users/login",
		body:   domain.LoginRequest{Email: email, Password: password},
	}, &out)
	return out, err
}

type registerResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	var out registerResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/users/register", body: req}, &out)
	return out.User, err
}
