package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mentorhood/mentorhood/internal/domain"
)

type mentorEnvelope struct {
	Status string        `json:"status"`
	Mentor domain.Mentor `json:"mentor"`
}

type mentorsEnvelope struct {
	Status  string          `json:"status"`
	Mentors []domain.Mentor `json:"mentors"`
}

func (c *Client) ListMentors(ctx context.Context) ([]domain.Mentor, error) {
	var env mentorsEnvelope
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/mentors/all"}, &env)
	return env.Mentors, err
}

// GetMentor loads a profile by the owning user's id.
func (c *Client) GetMentor(ctx context.Context, userID string) (domain.Mentor, error) {
	var env mentorEnvelope
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/mentors/" + url.PathEscape(userID)}, &env)
	return env.Mentor, err
}

func (c *Client) SaveMentorProfile(ctx context.Context, m domain.Mentor) (domain.Mentor, error) {
	var env mentorEnvelope
	err := c.do(ctx, call{method: http.MethodPut, path: "/api/mentors/profile", body: m}, &env)
	return env.Mentor, err
}

type amaQuery struct {
	IsWomanTech *bool `url:"is_woman_tech,omitempty"`
}

func (c *Client) ListAMASessions(ctx context.Context, womanTech *bool) ([]domain.AMASession, error) {
	var out []domain.AMASession
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/ama-sessions", query: amaQuery{womanTech}}, &out)
	return out, err
}

func (c *Client) GetAMASession(ctx context.Context, id string) (domain.AMASession, error) {
	var out domain.AMASession
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/ama-sessions/" + url.PathEscape(id)}, &out)
	return out, err
}

func (c *Client) RegisterForAMA(ctx context.Context, req domain.RegistrationRequest) (domain.Registration, error) {
	var out domain.Registration
	err := c.do(ctx, call{method: http.MethodPost, path: "/registrations", body: req}, &out)
	return out, err
}

func (c *Client) IsRegisteredForAMA(ctx context.Context, sessionID, email string) (bool, error) {
	var out struct {
		IsRegistered bool `json:"is_registered"`
	}
	path := "/registrations/check/" + url.PathEscape(sessionID) + "/" + url.PathEscape(email)
	err := c.do(ctx, call{method: http.MethodGet, path: path}, &out)
	return out.IsRegistered, err
}

func (c *Client) MenteeDashboard(ctx context.Context, email string) (domain.MenteeDashboard, error) {
	var out domain.MenteeDashboard
	err := c.do(ctx, call{method: http.MethodGet, path: "/dashboard/mentee/" + url.PathEscape(email)}, &out)
	return out, err
}
