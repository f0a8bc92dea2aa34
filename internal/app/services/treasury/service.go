// Package treasury contributes tokens to the DAO treasury and tracks the
// treasury and user balances shown alongside the proposal list.
package treasury

import (
	"context"
	"fmt"
	"sync"

	"github.com/filmdao/daoclient/internal/allowance"
	"github.com/filmdao/daoclient/internal/apperr"
	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	"github.com/filmdao/daoclient/internal/app/domain/token"
	"github.com/filmdao/daoclient/internal/app/metrics"
	"github.com/filmdao/daoclient/internal/app/services/proposals"
	"github.com/filmdao/daoclient/internal/gateway"
	"github.com/filmdao/daoclient/internal/wallet"
	"github.com/filmdao/daoclient/pkg/logger"
)

// Service runs the treasury funding workflow.
type Service struct {
	gov     gateway.Governance
	tok     gateway.Token
	gate    *allowance.Gate
	store   *proposals.Store
	session *wallet.Session
	pending *proposal.PendingSet
	log     *logger.Logger

	mu              sync.RWMutex
	treasuryBalance token.Amount
	userBalance     token.Amount
}

// New wires the treasury service.
func New(gov gateway.Governance, tok gateway.Token, gate *allowance.Gate, store *proposals.Store, session *wallet.Session, pending *proposal.PendingSet, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("treasury")
	}
	if pending == nil {
		pending = proposal.NewPendingSet()
	}
	return &Service{
		gov:             gov,
		tok:             tok,
		gate:            gate,
		store:           store,
		session:         session,
		pending:         pending,
		log:             log,
		treasuryBalance: token.Zero(),
		userBalance:     token.Zero(),
	}
}

// Fund moves amount tokens from the user into the treasury via the
// allowance-gated transfer, then reloads balances and the proposal list.
// Funding cannot change proposal data, but the full reload keeps
// invalidation simple.
func (s *Service) Fund(ctx context.Context, amount token.Amount) (err error) {
	defer func() { metrics.RecordWorkflow("fund", err) }()
	if amount.Sign() <= 0 {
		return apperr.Validation("funding amount must be positive")
	}

	key := proposal.PendingKey{Kind: proposal.OpFund}
	if !s.pending.TryAcquire(key) {
		return apperr.Pending("a treasury funding is already in flight")
	}
	defer s.pending.Release(key)

	owner := s.session.Account()
	err = s.gate.EnsureAndSpend(ctx, owner, s.gov.Address(), amount, func(ctx context.Context) error {
		return s.gov.FundTreasury(ctx, amount)
	})
	if err != nil {
		return err
	}

	s.log.WithField("amount", amount.String()).Info("treasury funded")
	return s.Reload(ctx)
}

// Reload reads the treasury balance, the user balance, and the proposal list
// fresh from the ledger. Balances are never cached across a mutating call.
func (s *Service) Reload(ctx context.Context) error {
	treasury, err := s.tok.BalanceOf(ctx, s.gov.Address())
	if err != nil {
		return fmt.Errorf("read treasury balance: %w", err)
	}
	user := token.Zero()
	if account := s.session.Account(); account != "" {
		user, err = s.tok.BalanceOf(ctx, account)
		if err != nil {
			return fmt.Errorf("read user balance: %w", err)
		}
	}

	s.mu.Lock()
	s.treasuryBalance = treasury
	s.userBalance = user
	s.mu.Unlock()

	return s.store.Refresh(ctx)
}

// Balances returns the last-loaded treasury and user balances.
func (s *Service) Balances() (treasury, user token.Amount) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treasuryBalance, s.userBalance
}
