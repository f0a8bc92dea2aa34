// Package gateway is the typed read/write boundary to the two remote
// contracts: the governance contract (proposals, voting, finalization,
// treasury) and the token contract (balances, allowances, approvals). All
// other components interact with the ledger only through these interfaces.
package gateway

import (
	"context"

	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	"github.com/filmdao/daoclient/internal/app/domain/token"
)

// Governance exposes the governance contract's entry points. Write calls
// return only after on-chain confirmation.
type Governance interface {
	// Address returns the governance contract's address. It doubles as the
	// spender for allowance-gated transfers and as the treasury account.
	Address() string

	ProposalCount(ctx context.Context) (uint64, error)
	ProposalAt(ctx context.Context, id uint64) (proposal.Proposal, error)

	CreateProposal(ctx context.Context, reference string, amount token.Amount, recipient string) error
	Vote(ctx context.Context, id uint64, amount token.Amount) error
	FinalizeProposal(ctx context.Context, id uint64) error
	FundTreasury(ctx context.Context, amount token.Amount) error
}

// Token exposes the token contract's entry points.
type Token interface {
	BalanceOf(ctx context.Context, addr string) (token.Amount, error)
	Allowance(ctx context.Context, owner, spender string) (token.Amount, error)
	// Approve sets the spender's allowance and waits for confirmation.
	Approve(ctx context.Context, spender string, amount token.Amount) error
}
