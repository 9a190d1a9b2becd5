// Package ledger turns server token snapshots into display values and runs
// the purchase flow. It never computes a balance of its own.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

var ErrNotLoaded = errors.New("token ledger not loaded")

type UsageBar struct {
	UsageType string
	Total     int
	Used      int
	Percent   float64
}

type View struct {
	Balance      int
	Purchased    int
	Used         int
	UsedPercent  float64
	ExpiryDate   time.Time
	Expired      bool
	Consistent   bool
	Usage        []UsageBar
	Transactions []domain.TokenTransaction
}

// Percent is part/whole*100 clamped to [0,100], and 0 for an empty whole.
func Percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	p := float64(part) / float64(whole) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Derive maps a snapshot to display values. Transactions are newest first.
func Derive(s domain.TokenLedgerSnapshot) View {
	v := View{
		Balance:     s.Balance,
		Purchased:   s.Purchased,
		Used:        s.Used,
		UsedPercent: Percent(s.Used, s.Purchased),
		ExpiryDate:  s.ExpiryDate,
		Expired:     s.Expired(),
		Consistent:  s.Consistent(),
	}

	for usageType, b := range s.Usage {
		v.Usage = append(v.Usage, UsageBar{
			UsageType: usageType,
			Total:     b.Total,
			Used:      b.Used,
			Percent:   Percent(b.Used, b.Total),
		})
	}
	sort.Slice(v.Usage, func(i, j int) bool { return v.Usage[i].UsageType < v.Usage[j].UsageType })

	v.Transactions = append([]domain.TokenTransaction(nil), s.Transactions...)
	sort.SliceStable(v.Transactions, func(i, j int) bool {
		return v.Transactions[i].Timestamp.After(v.Transactions[j].Timestamp)
	})
	return v
}

// Source is the server side of the ledger.
type Source interface {
	GetTokenBalance(ctx context.Context, userID string) (domain.TokenLedgerSnapshot, error)
	AddTokens(ctx context.Context, userID string, req domain.AddTokensRequest) (domain.TokenMutation, error)
}

type Options struct {
	// WarningThreshold is accepted for expiring-soon warnings; nothing
	// reads it yet.
	WarningThreshold int
}

type ViewModel struct {
	mu       sync.Mutex
	source   Source
	userID   string
	opts     Options
	snapshot *domain.TokenLedgerSnapshot
	lastErr  error
}

func NewViewModel(source Source, userID string, opts Options) *ViewModel {
	return &ViewModel{source: source, userID: userID, opts: opts}
}

func (vm *ViewModel) WarningThreshold() int {
	return vm.opts.WarningThreshold
}

// View derives the current snapshot; ok is false before the first load.
func (vm *ViewModel) View() (View, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.snapshot == nil {
		return View{}, false
	}
	return Derive(*vm.snapshot), true
}

func (vm *ViewModel) LastError() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.lastErr
}

// Load fetches the authoritative snapshot. On failure the prior snapshot
// stays in place.
func (vm *ViewModel) Load(ctx context.Context) error {
	s, err := vm.source.GetTokenBalance(ctx, vm.userID)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if err != nil {
		vm.lastErr = err
		logger.WarnContext(ctx, "Failed to load token balance", "user_id", vm.userID, "error", err)
		return fmt.Errorf("load token balance: %w", err)
	}
	vm.snapshot = &s
	vm.lastErr = nil
	return nil
}

// PurchaseRequest is the add call issued for a package.
func PurchaseRequest(pkg domain.TokenPackage) domain.AddTokensRequest {
	return domain.AddTokensRequest{
		Amount:       pkg.Tokens,
		Description:  fmt.Sprintf("Purchased %s token package", pkg.Name),
		PlanID:       pkg.ID,
		PlanType:     pkg.Name,
		ExtendExpiry: true,
		UsageType:    domain.UsageMentoring,
	}
}

// CompletePurchase credits the package then re-fetches. The add reply is
// not used for display.
func (vm *ViewModel) CompletePurchase(ctx context.Context, pkg domain.TokenPackage) error {
	if _, err := vm.source.AddTokens(ctx, vm.userID, PurchaseRequest(pkg)); err != nil {
		vm.mu.Lock()
		vm.lastErr = err
		vm.mu.Unlock()
		logger.ErrorContext(ctx, "Token purchase failed", "user_id", vm.userID, "plan_id", pkg.ID, "error", err)
		return fmt.Errorf("purchase %s: %w", pkg.ID, err)
	}
	logger.InfoContext(ctx, "Token purchase completed", "user_id", vm.userID, "plan_id", pkg.ID, "tokens", pkg.Tokens)
	return vm.Load(ctx)
}
