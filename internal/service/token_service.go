package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

const (
	welcomePlanID      = "welcome-bonus"
	welcomePlanType    = "Free"
	welcomeDescription = "Welcome bonus for new user"

	defaultPlanID   = "standard"
	defaultPlanType = "Standard"

	subscriptionActive = "active"
)

type TokenService interface {
	Initialize(ctx context.Context, userID string) (*domain.TokenMutation, error)
	Balance(ctx context.Context, userID string) (*domain.TokenLedgerSnapshot, error)
	Add(ctx context.Context, userID string, req domain.AddTokensRequest) (*domain.TokenMutation, error)
	Spend(ctx context.Context, userID string, req domain.SpendTokensRequest) (*domain.TokenMutation, error)
}

type tokenService struct {
	tokenRepo postgres.TokenRepository
	eventBus  events.Publisher
	config    *config.Config
	now       func() time.Time
}

func NewTokenService(tokenRepo postgres.TokenRepository, eventBus events.Publisher, config *config.Config) TokenService {
	return &tokenService{
		tokenRepo: tokenRepo,
		eventBus:  eventBus,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid(errors.New("user_id is required"))
	}
	return nil
}

// Initialize grants the welcome bonus once. A second call reports the
// current remaining tokens and writes nothing.
func (s *tokenService) Initialize(ctx context.Context, userID string) (*domain.TokenMutation, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	now := s.now()
	bonus := s.config.Tokens.WelcomeBonus
	created := false
	ledger, err := s.tokenRepo.Mutate(ctx, userID, true, func(l *domain.TokenLedger, exists bool) (*domain.TokenTransaction, error) {
		if exists {
			return nil, nil
		}
		created = true
		l.PlanID = welcomePlanID
		l.PlanType = welcomePlanType
		l.SubscriptionStatus = subscriptionActive
		l.PurchasedDate = now
		l.ExpiryDate = now.Add(s.config.Tokens.Validity)
		l.Purchased = bonus
		l.Remaining = bonus
		l.Usage[domain.UsageMentoring] = domain.UsageBucket{Total: bonus, Remaining: bonus}
		return &domain.TokenTransaction{
			Type:        domain.TransactionCredit,
			Amount:      bonus,
			Description: welcomeDescription,
			Timestamp:   now,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokens: %w", err)
	}

	if !created {
		return &domain.TokenMutation{
			Status:  domain.LedgerActive,
			Message: "User already has tokens initialized",
			Balance: ledger.Remaining,
			Tokens:  ledger.Remaining,
		}, nil
	}

	s.publish(ctx, events.TokensCredited, ledger, bonus, domain.UsageMentoring)
	expiry := ledger.ExpiryDate
	return &domain.TokenMutation{
		Status:     domain.LedgerActive,
		Message:    "Tokens initialized successfully",
		Balance:    bonus,
		Tokens:     bonus,
		ExpiryDate: &expiry,
	}, nil
}

func (s *tokenService) Balance(ctx context.Context, userID string) (*domain.TokenLedgerSnapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ledger, err := s.tokenRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	if ledger == nil {
		return nil, domain.ErrLedgerNotFound
	}
	snap := ledger.Snapshot(s.now())
	return &snap, nil
}

// Add credits tokens, creating the ledger when missing. Expiry moves a full
// validity period forward when requested or when the ledger had lapsed.
func (s *tokenService) Add(ctx context.Context, userID string, req domain.AddTokensRequest) (*domain.TokenMutation, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, invalid(domain.ErrInvalidAmount)
	}
	if req.PlanID == "" {
		req.PlanID = defaultPlanID
	}
	if req.PlanType == "" {
		req.PlanType = defaultPlanType
	}
	if req.UsageType == "" {
		req.UsageType = domain.UsageMentoring
	}

	now := s.now()
	created := false
	ledger, err := s.tokenRepo.Mutate(ctx, userID, true, func(l *domain.TokenLedger, exists bool) (*domain.TokenTransaction, error) {
		if !exists {
			created = true
			l.PurchasedDate = now
			l.ExpiryDate = now.Add(s.config.Tokens.Validity)
		} else if req.ExtendExpiry || l.ExpiredAt(now) {
			l.ExpiryDate = now.Add(s.config.Tokens.Validity)
		}
		l.PlanID = req.PlanID
		l.PlanType = req.PlanType
		l.SubscriptionStatus = subscriptionActive
		l.Purchased += req.Amount
		l.Remaining += req.Amount

		bucket := l.Usage[req.UsageType]
		bucket.Total += req.Amount
		bucket.Remaining = bucket.Total - bucket.Used
		l.Usage[req.UsageType] = bucket

		return &domain.TokenTransaction{
			Type:        domain.TransactionCredit,
			Amount:      req.Amount,
			Description: req.Description,
			UsageType:   req.UsageType,
			PlanID:      req.PlanID,
			Timestamp:   now,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add tokens: %w", err)
	}

	s.publish(ctx, events.TokensCredited, ledger, req.Amount, req.UsageType)

	msg := "Tokens added successfully"
	if created {
		msg = "Token account created and tokens added successfully"
	}
	expiry := ledger.ExpiryDate
	return &domain.TokenMutation{
		Status:     domain.LedgerActive,
		Message:    msg,
		Balance:    ledger.Remaining,
		ExpiryDate: &expiry,
		Usage:      ledger.Usage,
	}, nil
}

// Spend debits tokens from an unexpired ledger holding enough balance.
func (s *tokenService) Spend(ctx context.Context, userID string, req domain.SpendTokensRequest) (*domain.TokenMutation, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, invalid(domain.ErrInvalidAmount)
	}
	if req.UsageType == "" {
		req.UsageType = domain.UsageMentoring
	}

	now := s.now()
	ledger, err := s.tokenRepo.Mutate(ctx, userID, false, func(l *domain.TokenLedger, _ bool) (*domain.TokenTransaction, error) {
		if l.ExpiredAt(now) {
			return nil, domain.ErrTokensExpired
		}
		if l.Remaining < req.Amount {
			return nil, fmt.Errorf("%w: you have %d tokens but need %d",
				domain.ErrInsufficientTokens, l.Remaining, req.Amount)
		}
		l.Remaining -= req.Amount
		l.Used += req.Amount

		bucket := l.Usage[req.UsageType]
		bucket.Used += req.Amount
		bucket.Remaining = bucket.Total - bucket.Used
		l.Usage[req.UsageType] = bucket

		return &domain.TokenTransaction{
			Type:        domain.TransactionDebit,
			Amount:      req.Amount,
			Description: req.Description,
			UsageType:   req.UsageType,
			Timestamp:   now,
		}, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrLedgerNotFound) || errors.Is(err, domain.ErrTokensExpired) || errors.Is(err, domain.ErrInsufficientTokens) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to spend tokens: %w", err)
	}

	s.publish(ctx, events.TokensDebited, ledger, req.Amount, req.UsageType)

	return &domain.TokenMutation{
		Status:  domain.LedgerActive,
		Message: "Tokens spent successfully",
		Balance: ledger.Remaining,
		Usage:   ledger.Usage,
	}, nil
}

func (s *tokenService) publish(ctx context.Context, subject string, l *domain.TokenLedger, amount int, usageType string) {
	event := events.TokensChangedEvent{
		UserID:    l.UserID,
		Amount:    amount,
		Balance:   l.Remaining,
		UsageType: usageType,
		PlanID:    l.PlanID,
		At:        s.now(),
	}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish tokens event", "error", err, "subject", subject, "user_id", l.UserID)
	}
}
