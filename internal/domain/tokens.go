package domain

import (
	"errors"
	"time"
)

const (
	LedgerActive  = "success"
	LedgerExpired = "expired"

	TransactionCredit = "credit"
	TransactionDebit  = "debit"

	// UsageMentoring is the usage bucket purchases and bookings draw on.
	UsageMentoring = "mentoring_sessions"
)

var (
	ErrLedgerNotFound     = errors.New("no token record found for this user")
	ErrTokensExpired      = errors.New("your tokens have expired")
	ErrInsufficientTokens = errors.New("insufficient token balance")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

type UsageBucket struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type TokenTransaction struct {
	Type        string    `json:"type"`
	Amount      int       `json:"amount"`
	Description string    `json:"description"`
	UsageType   string    `json:"usage_type,omitempty"`
	PlanID      string    `json:"plan_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// TokenLedgerSnapshot is the server's view of a user's tokens. Balance is the
// single authoritative remaining figure; RemainingTokens mirrors it on the
// wire for older readers and is never consulted.
type TokenLedgerSnapshot struct {
	Status          string                 `json:"status"`
	Balance         int                    `json:"balance"`
	RemainingTokens int                    `json:"remaining_tokens"`
	Purchased       int                    `json:"purchased"`
	Used            int                    `json:"used"`
	ExpiryDate      time.Time              `json:"expiry_date"`
	PlanID          string                 `json:"plan_id,omitempty"`
	PlanType        string                 `json:"plan_type,omitempty"`
	Usage           map[string]UsageBucket `json:"usage"`
	Transactions    []TokenTransaction     `json:"transactions"`
}

// Consistent reports whether balance == purchased - used.
func (s TokenLedgerSnapshot) Consistent() bool {
	return s.Balance == s.Purchased-s.Used
}

func (s TokenLedgerSnapshot) Expired() bool {
	return s.Status == LedgerExpired
}

type AddTokensRequest struct {
	Amount       int    `json:"amount"`
	Description  string `json:"description"`
	PlanID       string `json:"plan_id"`
	PlanType     string `json:"plan_type"`
	ExtendExpiry bool   `json:"extend_expiry"`
	UsageType    string `json:"usage_type"`
}

type SpendTokensRequest struct {
	Amount      int    `json:"amount"`
	Description string `json:"description"`
	UsageType   string `json:"usage_type"`
}

// TokenMutation is the reply to add, spend and initialize calls.
type TokenMutation struct {
	Status     string                 `json:"status"`
	Message    string                 `json:"message"`
	Balance    int                    `json:"balance"`
	Tokens     int                    `json:"tokens,omitempty"` // initialize only
	ExpiryDate *time.Time             `json:"expiry_date,omitempty"`
	Usage      map[string]UsageBucket `json:"usage,omitempty"`
}

type TokenPackage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tokens      int    `json:"tokens"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	Popular     bool   `json:"popular"`
}

var TokenPackages = []TokenPackage{
	{ID: "basic", Name: "Starter", Tokens: 400, Price: 299, Description: "Perfect for exploring mentorship with occasional sessions."},
	{ID: "premium", Name: "Pro", Tokens: 800, Price: 699, Description: "Best value for dedicated learning and frequent guidance.", Popular: true},
	{ID: "enterprise", Name: "Enterprise", Tokens: 1100, Price: 999, Description: "Complete solution for teams and intensive mentorship needs."},
}

func LookupTokenPackage(id string) (TokenPackage, bool) {
	for _, p := range TokenPackages {
		if p.ID == id {
			return p, true
		}
	}
	return TokenPackage{}, false
}

// TokenLedger is the stored per-user record behind a snapshot.
type TokenLedger struct {
	UserID             string
	PlanID             string
	PlanType           string
	SubscriptionStatus string
	Purchased          int
	Used               int
	Remaining          int
	Usage              map[string]UsageBucket
	PurchasedDate      time.Time
	ExpiryDate         time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Transactions       []TokenTransaction
}

func (l *TokenLedger) ExpiredAt(now time.Time) bool {
	return now.After(l.ExpiryDate)
}

// Snapshot renders the ledger as seen at now. An expired ledger reports a
// zero balance.
func (l *TokenLedger) Snapshot(now time.Time) TokenLedgerSnapshot {
	s := TokenLedgerSnapshot{
		Status:          LedgerActive,
		Balance:         l.Remaining,
		RemainingTokens: l.Remaining,
		Purchased:       l.Purchased,
		Used:            l.Used,
		ExpiryDate:      l.ExpiryDate,
		PlanID:          l.PlanID,
		PlanType:        l.PlanType,
		Usage:           l.Usage,
		Transactions:    l.Transactions,
	}
	if s.Usage == nil {
		s.Usage = map[string]UsageBucket{}
	}
	if s.Transactions == nil {
		s.Transactions = []TokenTransaction{}
	}
	if l.ExpiredAt(now) {
		s.Status = LedgerExpired
		s.Balance = 0
		s.RemainingTokens = 0
	}
	return s
}
