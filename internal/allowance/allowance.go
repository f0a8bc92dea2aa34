// Package allowance implements the two-phase approve-then-spend protocol
// shared by voting and treasury funding: make sure the spender's allowance
// covers the amount, then run the value-moving call.
package allowance

import (
	"context"
	"errors"
	"fmt"

	"github.com/filmdao/daoclient/internal/app/domain/token"
	"github.com/filmdao/daoclient/internal/chain"
	"github.com/filmdao/daoclient/internal/gateway"
	"github.com/filmdao/daoclient/pkg/logger"
)

// ErrAllowanceTooLow indicates the approval step itself failed, so the
// allowance could not be raised to cover the amount. Spend-step failures are
// propagated unchanged, never wrapped in this error.
var ErrAllowanceTooLow = errors.New("allowance could not be increased")

// Gate sequences allowance checks and approvals in front of spend calls.
type Gate struct {
	token gateway.Token
	log   *logger.Logger
}

// NewGate creates an allowance gate over the token contract.
func NewGate(tok gateway.Token, log *logger.Logger) *Gate {
	if log == nil {
		log = logger.NewDefault("allowance")
	}
	return &Gate{token: tok, log: log}
}

// EnsureAndSpend reads the current allowance(owner, spender) and, only if it
// is below amount, issues an approve and awaits its confirmation before
// invoking spend. The two steps are not atomic: if approve confirms and spend
// then fails, the elevated allowance remains in place on chain. Rolling it
// back would be another transaction the user must authorize, so it is left as
// a visible side effect.
func (g *Gate) EnsureAndSpend(ctx context.Context, owner, spender string, amount token.Amount, spend func(ctx context.Context) error) error {
	// Allowances can change out-of-band, so read fresh every time.
	current, err := g.token.Allowance(ctx, owner, spender)
	if err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}

	if current.Cmp(amount) < 0 {
		g.log.WithField("owner", owner).
			WithField("spender", spender).
			WithField("amount", amount.String()).
			Info("allowance below amount, approving")
		if err := g.token.Approve(ctx, spender, amount); err != nil {
			var revert *chain.RevertError
			if errors.As(err, &revert) {
				return fmt.Errorf("%w: %v", ErrAllowanceTooLow, err)
			}
			// Rejection or transport failure, not a failed approval.
			return err
		}
	}

	return spend(ctx)
}
