package chain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var errReceiptPending = errors.New("receipt not available yet")

// DefaultTxWaitTimeout bounds how long WaitForReceipt callers wait for a
// confirmation before giving up locally. The transaction may still land on
// chain after the local wait is abandoned.
const DefaultTxWaitTimeout = 2 * time.Minute

// DefaultPollInterval is the default interval for polling receipt status.
const DefaultPollInterval = 2 * time.Second

// WaitForReceipt polls for a transaction receipt until it is available or the
// context is done. A missing receipt is treated as transient and retried. An
// abandoned wait is a network-class failure: the transaction may have landed,
// the client just stopped watching.
func (c *Client) WaitForReceipt(ctx context.Context, txHash string, pollInterval time.Duration) (*Receipt, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, &NetworkError{Op: "wait for receipt", Err: ctx.Err()}
		case <-ticker.C:
			receipt, err := c.GetReceipt(ctx, txHash)
			if err != nil {
				if isPendingError(err) {
					continue
				}
				return nil, err
			}
			return receipt, nil
		}
	}
}

func isPendingError(err error) bool {
	if errors.Is(err, errReceiptPending) {
		return true
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		lower := strings.ToLower(rpcErr.Message)
		return strings.Contains(lower, "not found") || strings.Contains(lower, "unknown transaction")
	}
	return false
}
