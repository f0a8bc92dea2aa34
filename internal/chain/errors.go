package chain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUserRejected indicates the user declined to sign in the wallet. Never
// retried automatically.
var ErrUserRejected = errors.New("user rejected the request")

// Wallet providers report a declined signing prompt with this code.
const codeUserRejected = 4001

// RevertReason classifies why a contract rejected a call, where the node
// surfaces enough detail to tell. Callers that cannot react differently treat
// everything as ReasonOther.
type RevertReason string

const (
	ReasonInsufficientAllowance RevertReason = "insufficient-allowance"
	ReasonUnknownProposal       RevertReason = "unknown-proposal"
	ReasonAlreadyFinalized      RevertReason = "already-finalized"
	ReasonOther                 RevertReason = "other"
)

// RevertError indicates the contract rejected the call during execution. The
// submission itself was valid; retrying without changing inputs will fail
// again.
type RevertError struct {
	Reason  RevertReason
	Message string
}

func (e *RevertError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("contract reverted (%s)", e.Reason)
	}
	return fmt.Sprintf("contract reverted (%s): %s", e.Reason, e.Message)
}

// NetworkError indicates a transport-level failure. The operation may or may
// not have reached the node; the user may retry manually.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ClassifyRevertReason maps a node-reported revert message onto a RevertReason.
// Nodes do not report reasons in a structured way, so this is a best-effort
// match on the conventional require() messages.
func ClassifyRevertReason(msg string) RevertReason {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "allowance"):
		return ReasonInsufficientAllowance
	case strings.Contains(lower, "finalized"):
		return ReasonAlreadyFinalized
	case strings.Contains(lower, "invalid proposal"), strings.Contains(lower, "unknown proposal"), strings.Contains(lower, "does not exist"):
		return ReasonUnknownProposal
	default:
		return ReasonOther
	}
}

// ClassifyRPCError maps a provider or node error into the client taxonomy:
// user rejection, contract revert, or generic RPC failure.
func ClassifyRPCError(err *RPCError) error {
	if err == nil {
		return nil
	}
	if err.Code == codeUserRejected {
		return ErrUserRejected
	}
	lower := strings.ToLower(err.Message)
	if strings.Contains(lower, "revert") || strings.Contains(lower, "execution failed") {
		return &RevertError{Reason: ClassifyRevertReason(err.Message), Message: err.Message}
	}
	return err
}
