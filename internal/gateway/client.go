package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	"github.com/filmdao/daoclient/internal/app/domain/token"
	"github.com/filmdao/daoclient/internal/chain"
	"github.com/filmdao/daoclient/internal/wallet"
	"github.com/filmdao/daoclient/pkg/logger"
)

// Client implements Governance and Token over a ledger node and a wallet
// signer.
type Client struct {
	node   *chain.Client
	signer *wallet.Signer
	log    *logger.Logger

	governanceAddr string
	tokenAddr      string

	waitTimeout  time.Duration
	pollInterval time.Duration
}

var _ Governance = (*Client)(nil)
var _ Token = (*Client)(nil)

// Config holds the contract addresses and confirmation settings.
type Config struct {
	GovernanceAddress string
	TokenAddress      string
	// WaitTimeout bounds how long a write call waits for confirmation before
	// abandoning the local wait. Zero means chain.DefaultTxWaitTimeout.
	WaitTimeout  time.Duration
	PollInterval time.Duration
}

// NewClient creates a contract gateway. The signer is required for write
// calls; a read-only gateway may pass nil.
func NewClient(node *chain.Client, signer *wallet.Signer, cfg Config, log *logger.Logger) (*Client, error) {
	if node == nil {
		return nil, fmt.Errorf("ledger node client required")
	}
	if cfg.GovernanceAddress == "" || cfg.TokenAddress == "" {
		return nil, fmt.Errorf("governance and token contract addresses required")
	}
	if log == nil {
		log = logger.NewDefault("gateway")
	}
	waitTimeout := cfg.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = chain.DefaultTxWaitTimeout
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = chain.DefaultPollInterval
	}
	return &Client{
		node:           node,
		signer:         signer,
		log:            log,
		governanceAddr: cfg.GovernanceAddress,
		tokenAddr:      cfg.TokenAddress,
		waitTimeout:    waitTimeout,
		pollInterval:   pollInterval,
	}, nil
}

func (c *Client) Address() string { return c.governanceAddr }

// read performs a read-only contract call and returns the raw result.
func (c *Client) read(ctx context.Context, contract, method string, params ...interface{}) (json.RawMessage, error) {
	return c.node.CallContract(ctx, chain.CallMsg{
		To:     contract,
		Method: method,
		Params: params,
	})
}

// submit signs, broadcasts, and awaits confirmation of a write call. A
// receipt with reverted status is surfaced as *chain.RevertError.
func (c *Client) submit(ctx context.Context, contract, method string, params ...interface{}) error {
	if c.signer == nil {
		return fmt.Errorf("no signer: wallet not connected")
	}

	txHash, err := c.signer.SendTransaction(ctx, chain.TxMsg{
		To:     contract,
		Method: method,
		Params: params,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	wctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	receipt, err := c.node.WaitForReceipt(wctx, txHash, c.pollInterval)
	if err != nil {
		return fmt.Errorf("wait for %s confirmation: %w", method, err)
	}
	if receipt.Status != chain.StatusOK {
		return &chain.RevertError{
			Reason:  chain.ClassifyRevertReason(receipt.Revert),
			Message: receipt.Revert,
		}
	}

	c.log.WithField("method", method).WithField("tx", txHash).Info("transaction confirmed")
	return nil
}

// Governance reads ---------------------------------------------------------

func (c *Client) ProposalCount(ctx context.Context) (uint64, error) {
	result, err := c.read(ctx, c.governanceAddr, "proposalCount")
	if err != nil {
		return 0, err
	}
	var count uint64
	if err := json.Unmarshal(result, &count); err != nil {
		return 0, fmt.Errorf("decode proposalCount: %w", err)
	}
	return count, nil
}

func (c *Client) ProposalAt(ctx context.Context, id uint64) (proposal.Proposal, error) {
	result, err := c.read(ctx, c.governanceAddr, "proposals", id)
	if err != nil {
		return proposal.Proposal{}, err
	}
	return NormalizeProposal(result, id)
}

// Governance writes --------------------------------------------------------

func (c *Client) CreateProposal(ctx context.Context, reference string, amount token.Amount, recipient string) error {
	return c.submit(ctx, c.governanceAddr, "createProposal", reference, amount.UnitsString(), recipient)
}

func (c *Client) Vote(ctx context.Context, id uint64, amount token.Amount) error {
	return c.submit(ctx, c.governanceAddr, "vote", id, amount.UnitsString())
}

func (c *Client) FinalizeProposal(ctx context.Context, id uint64) error {
	return c.submit(ctx, c.governanceAddr, "finalizeProposal", id)
}

func (c *Client) FundTreasury(ctx context.Context, amount token.Amount) error {
	return c.submit(ctx, c.governanceAddr, "fundDAO", amount.UnitsString())
}

// Token --------------------------------------------------------------------

func (c *Client) BalanceOf(ctx context.Context, addr string) (token.Amount, error) {
	result, err := c.read(ctx, c.tokenAddr, "balanceOf", addr)
	if err != nil {
		return token.Amount{}, err
	}
	return decodeAmount(result, "balanceOf")
}

func (c *Client) Allowance(ctx context.Context, owner, spender string) (token.Amount, error) {
	result, err := c.read(ctx, c.tokenAddr, "allowance", owner, spender)
	if err != nil {
		return token.Amount{}, err
	}
	return decodeAmount(result, "allowance")
}

func (c *Client) Approve(ctx context.Context, spender string, amount token.Amount) error {
	return c.submit(ctx, c.tokenAddr, "approve", spender, amount.UnitsString())
}
