package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/auth"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserFixture() (UserService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour}}
	return NewUserService(repo, cfg), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.Register(ctx, &domain.RegisterRequest{
		Username: " ada ",
		Email:    "Ada@Example.com",
		Password: "correct horse",
		Role:     domain.RoleMentor,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))

	id, err := svc.Login(ctx, &domain.LoginRequest{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada", id.Username)
	assert.Equal(t, u.ID, id.UserID)
	assert.True(t, id.IsMentor())

	claims, err := auth.Parse(id.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Sub)
	assert.Equal(t, "mentor", claims.Role)

	_, err = svc.Login(ctx, &domain.LoginRequest{Email: "ada@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, &domain.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()
	req := func() *domain.RegisterRequest {
		return &domain.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "longenough", Role: domain.RoleMentee}
	}

	_, err := svc.Register(ctx, req())
	require.NoError(t, err)
	_, err = svc.Register(ctx, req())
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	bad := req()
	bad.Role = domain.RoleAdmin
	_, err = svc.Register(ctx, bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginUpgradesBcryptHash(t *testing.T) {
	svc, repo := newUserFixture()
	legacy, err := bcrypt.GenerateFromPassword([]byte("old password"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["u-old"] = &domain.User{
		ID: "u-old", Username: "grace", Email: "grace@example.com",
		PasswordHash: string(legacy), Role: domain.RoleMentee,
	}

	id, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "grace@example.com", Password: "old password"})
	require.NoError(t, err)
	assert.Equal(t, "u-old", id.UserID)
	assert.True(t, strings.HasPrefix(repo.users["u-old"].PasswordHash, "$argon2id$"))

	_, err = svc.Login(context.Background(), &domain.LoginRequest{Email: "grace@example.com", Password: "old password"})
	assert.NoError(t, err)
}
