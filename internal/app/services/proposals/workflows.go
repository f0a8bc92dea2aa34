package proposals

import (
	"context"

	"github.com/filmdao/daoclient/internal/allowance"
	"github.com/filmdao/daoclient/internal/apperr"
	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	"github.com/filmdao/daoclient/internal/app/domain/token"
	"github.com/filmdao/daoclient/internal/app/metrics"
	"github.com/filmdao/daoclient/internal/gateway"
	"github.com/filmdao/daoclient/internal/wallet"
	"github.com/filmdao/daoclient/pkg/logger"
)

// Workflows runs the mutating proposal operations. Every workflow validates
// locally first (fail fast, no gas spent on calls guaranteed to revert),
// holds a pending-operation key while the write is in flight, and triggers a
// store refresh after a confirmed success.
type Workflows struct {
	gov     gateway.Governance
	gate    *allowance.Gate
	store   *Store
	session *wallet.Session
	pending *proposal.PendingSet
	log     *logger.Logger

	// onVoteApplied clears locally held vote input for a proposal after its
	// vote confirms. Optional.
	onVoteApplied func(id uint64)
}

// NewWorkflows wires the proposal workflows.
func NewWorkflows(gov gateway.Governance, gate *allowance.Gate, store *Store, session *wallet.Session, pending *proposal.PendingSet, log *logger.Logger) *Workflows {
	if log == nil {
		log = logger.NewDefault("proposal-workflows")
	}
	if pending == nil {
		pending = proposal.NewPendingSet()
	}
	return &Workflows{
		gov:     gov,
		gate:    gate,
		store:   store,
		session: session,
		pending: pending,
		log:     log,
	}
}

// OnVoteApplied registers the vote-input clearing hook.
func (w *Workflows) OnVoteApplied(fn func(id uint64)) {
	w.onVoteApplied = fn
}

// Create submits a new funding proposal and refreshes the list once the
// creation confirms.
func (w *Workflows) Create(ctx context.Context, reference string, amount token.Amount, recipient string) (err error) {
	defer func() { metrics.RecordWorkflow("create", err) }()
	if reference == "" {
		return apperr.Validation("proposal reference is required")
	}
	if amount.Sign() <= 0 {
		return apperr.Validation("requested amount must be positive")
	}
	if !wallet.IsValidAddress(recipient) {
		return apperr.Validation("recipient %q is not a valid address", recipient)
	}

	key := proposal.PendingKey{Kind: proposal.OpCreate}
	if !w.pending.TryAcquire(key) {
		return apperr.Pending("a proposal creation is already in flight")
	}
	defer w.pending.Release(key)

	if err := w.gov.CreateProposal(ctx, reference, amount, recipient); err != nil {
		return err
	}

	w.log.WithField("reference", reference).Info("proposal created")
	return w.store.Refresh(ctx)
}

// Vote casts amount tokens on the proposal, approving the governance
// contract's allowance first when it is short. Votes on finalized or unknown
// proposals are rejected before any remote call.
func (w *Workflows) Vote(ctx context.Context, id uint64, amount token.Amount) (err error) {
	defer func() { metrics.RecordWorkflow("vote", err) }()
	if amount.Sign() <= 0 {
		return apperr.Validation("vote amount must be positive")
	}
	current, ok := w.store.Get(id)
	if !ok {
		return apperr.Validation("proposal %d is not in the current list", id)
	}
	if current.Finalized {
		return apperr.Validation("proposal %d is finalized and no longer accepts votes", id)
	}

	key := proposal.PendingKey{ID: id, Kind: proposal.OpVote}
	if !w.pending.TryAcquire(key) {
		return apperr.Pending("a vote for proposal %d is already in flight", id)
	}
	defer w.pending.Release(key)

	owner := w.session.Account()
	err = w.gate.EnsureAndSpend(ctx, owner, w.gov.Address(), amount, func(ctx context.Context) error {
		return w.gov.Vote(ctx, id, amount)
	})
	if err != nil {
		return err
	}

	if w.onVoteApplied != nil {
		w.onVoteApplied(id)
	}
	w.log.WithField("proposal", id).WithField("amount", amount.String()).Info("vote confirmed")
	return w.store.Refresh(ctx)
}

// Finalize seals the proposal. Once the remote call confirms the proposal
// never accepts further votes.
func (w *Workflows) Finalize(ctx context.Context, id uint64) (err error) {
	defer func() { metrics.RecordWorkflow("finalize", err) }()
	current, ok := w.store.Get(id)
	if !ok {
		return apperr.Validation("proposal %d is not in the current list", id)
	}
	if current.Finalized {
		return apperr.Validation("proposal %d is already finalized", id)
	}

	key := proposal.PendingKey{ID: id, Kind: proposal.OpFinalize}
	if !w.pending.TryAcquire(key) {
		return apperr.Pending("a finalization for proposal %d is already in flight", id)
	}
	defer w.pending.Release(key)

	if err := w.gov.FinalizeProposal(ctx, id); err != nil {
		return err
	}

	w.log.WithField("proposal", id).Info("proposal finalized")
	return w.store.Refresh(ctx)
}
