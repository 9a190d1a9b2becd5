package service

import (
	"context"
	"testing"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTokenFixture() (*tokenService, *fakeTokenRepo, *recordingBus) {
	repo := newFakeTokenRepo()
	bus := &recordingBus{}
	cfg := &config.Config{Tokens: config.TokensConfig{WelcomeBonus: 500, Validity: 365 * 24 * time.Hour}}
	svc := NewTokenService(repo, bus, cfg).(*tokenService)
	svc.now = func() time.Time { return tokenNow }
	return svc, repo, bus
}

func TestInitializeGrantsWelcomeBonusOnce(t *testing.T) {
	svc, repo, bus := newTokenFixture()
	ctx := context.Background()

	res, err := svc.Initialize(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Tokens initialized successfully", res.Message)
	assert.Equal(t, 500, res.Tokens)
	require.NotNil(t, res.ExpiryDate)
	assert.Equal(t, tokenNow.AddDate(0, 0, 365), *res.ExpiryDate)

	res, err = svc.Initialize(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "User already has tokens initialized", res.Message)
	assert.Equal(t, 500, res.Tokens)

	l := repo.ledgers["u1"]
	require.Len(t, l.Transactions, 1)
	assert.Equal(t, "Welcome bonus for new user", l.Transactions[0].Description)
	assert.Equal(t, "welcome-bonus", l.PlanID)
	assert.Equal(t, []string{events.TokensCredited}, bus.subjects())
}

func TestBalanceSnapshot(t *testing.T) {
	svc, _, _ := newTokenFixture()
	ctx := context.Background()

	_, err := svc.Balance(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrLedgerNotFound)

	_, err = svc.Initialize(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.Spend(ctx, "u1", domain.SpendTokensRequest{Amount: 120, Description: "Session booking"})
	require.NoError(t, err)

	snap, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerActive, snap.Status)
	assert.Equal(t, 380, snap.Balance)
	assert.Equal(t, 500, snap.Purchased)
	assert.Equal(t, 120, snap.Used)
	assert.True(t, snap.Consistent())
	assert.Equal(t, domain.UsageBucket{Total: 500, Used: 120, Remaining: 380}, snap.Usage[domain.UsageMentoring])
	assert.Len(t, snap.Transactions, 2)
}

func TestBalanceExpiredReportsZero(t *testing.T) {
	svc, _, _ := newTokenFixture()
	ctx := context.Background()
	_, err := svc.Initialize(ctx, "u1")
	require.NoError(t, err)

	svc.now = func() time.Time { return tokenNow.AddDate(2, 0, 0) }
	snap, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerExpired, snap.Status)
	assert.Zero(t, snap.Balance)
}

func TestSpendRules(t *testing.T) {
	svc, repo, _ := newTokenFixture()
	ctx := context.Background()

	_, err := svc.Spend(ctx, "u1", domain.SpendTokensRequest{Amount: 10})
	assert.ErrorIs(t, err, domain.ErrLedgerNotFound)

	_, err = svc.Initialize(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.Spend(ctx, "u1", domain.SpendTokensRequest{Amount: 600})
	require.ErrorIs(t, err, domain.ErrInsufficientTokens)
	assert.Contains(t, err.Error(), "you have 500 tokens but need 600")

	_, err = svc.Spend(ctx, "u1", domain.SpendTokensRequest{Amount: 0})
	assert.ErrorIs(t, err, ErrValidation)

	svc.now = func() time.Time { return tokenNow.AddDate(2, 0, 0) }
	_, err = svc.Spend(ctx, "u1", domain.SpendTokensRequest{Amount: 10})
	assert.ErrorIs(t, err, domain.ErrTokensExpired)

	assert.Len(t, repo.ledgers["u1"].Transactions, 1)
}

func TestAddCreatesAndExtends(t *testing.T) {
	svc, repo, bus := newTokenFixture()
	ctx := context.Background()

	res, err := svc.Add(ctx, "u2", domain.AddTokensRequest{Amount: 400, Description: "Purchased Starter token package"})
	require.NoError(t, err)
	assert.Equal(t, "Token account created and tokens added successfully", res.Message)
	assert.Equal(t, 400, res.Balance)
	assert.Equal(t, "standard", repo.ledgers["u2"].PlanID)

	later := tokenNow.AddDate(0, 1, 0)
	svc.now = func() time.Time { return later }

	res, err = svc.Add(ctx, "u2", domain.AddTokensRequest{Amount: 100, PlanID: "premium", PlanType: "Pro"})
	require.NoError(t, err)
	assert.Equal(t, 500, res.Balance)
	assert.Equal(t, tokenNow.AddDate(0, 0, 365), *res.ExpiryDate, "expiry kept without extend_expiry")

	res, err = svc.Add(ctx, "u2", domain.AddTokensRequest{Amount: 100, ExtendExpiry: true})
	require.NoError(t, err)
	assert.Equal(t, later.AddDate(0, 0, 365), *res.ExpiryDate)
	assert.Equal(t, domain.UsageBucket{Total: 600, Remaining: 600}, res.Usage[domain.UsageMentoring])
	assert.Len(t, bus.subjects(), 3)
}

func TestAddRenewsLapsedLedger(t *testing.T) {
	svc, _, _ := newTokenFixture()
	ctx := context.Background()
	_, err := svc.Initialize(ctx, "u1")
	require.NoError(t, err)

	lapsed := tokenNow.AddDate(2, 0, 0)
	svc.now = func() time.Time { return lapsed }
	res, err := svc.Add(ctx, "u1", domain.AddTokensRequest{Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, lapsed.AddDate(0, 0, 365), *res.ExpiryDate)
}

func TestTokenOpsRequireUser(t *testing.T) {
	svc, _, _ := newTokenFixture()
	_, err := svc.Balance(context.Background(), " ")
	assert.ErrorIs(t, err, ErrValidation)
}
