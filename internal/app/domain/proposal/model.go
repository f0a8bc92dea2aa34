// Package proposal holds the local read model for governance proposals.
package proposal

import "github.com/filmdao/daoclient/internal/app/domain/token"

// Proposal is one funding request as read from the governance contract. The
// list of proposals is always rebuilt wholesale from ledger state; individual
// records are never patched in place.
type Proposal struct {
	ID        uint64       `json:"id"`
	Reference string       `json:"reference"`
	Amount    token.Amount `json:"amount"`
	Recipient string       `json:"recipient"`
	Votes     token.Amount `json:"votes"`
	Finalized bool         `json:"finalized"`
}

// CanFinalize reports whether the proposal is shown as finalizable. This is a
// display convention (at least one vote cast, not yet finalized); the
// contract's own finalize precondition is the real gate.
func (p Proposal) CanFinalize() bool {
	return !p.Finalized && p.Votes.Sign() > 0
}

// OperationKind identifies a mutating workflow for pending-operation
// bookkeeping.
type OperationKind string

const (
	OpCreate   OperationKind = "create"
	OpVote     OperationKind = "vote"
	OpFinalize OperationKind = "finalize"
	OpFund     OperationKind = "fund"
)
