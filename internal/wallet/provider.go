package wallet

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/filmdao/daoclient/internal/chain"
)

// ErrProviderUnavailable indicates no wallet provider is reachable. The user
// must install or start one before any on-chain interaction is possible.
var ErrProviderUnavailable = errors.New("wallet provider unavailable")

// Provider supplies account access and transaction signing. It models an
// external wallet: every SendTransaction call may prompt the user and is
// answered only after the user approves or rejects.
type Provider interface {
	// Available reports whether the provider can currently be reached.
	Available() bool
	// RequestAccounts asks the provider for access to the user's accounts.
	// The first returned account is the active one.
	RequestAccounts(ctx context.Context) ([]string, error)
	// SendTransaction asks the provider to sign and submit the transaction,
	// returning the transaction hash once broadcast.
	SendTransaction(ctx context.Context, tx chain.TxMsg) (string, error)
}

// rpcCaller is the subset of chain.Client the provider needs. Narrowed for
// testability.
type rpcCaller interface {
	Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error)
}

// RPCProvider talks to a wallet exposed over JSON-RPC (a local signer daemon
// or a browser wallet bridge).
type RPCProvider struct {
	rpc rpcCaller
}

// NewRPCProvider wraps an RPC client as a wallet provider. A nil client
// yields a provider that reports itself unavailable.
func NewRPCProvider(rpc rpcCaller) *RPCProvider {
	return &RPCProvider{rpc: rpc}
}

func (p *RPCProvider) Available() bool { return p.rpc != nil }

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.rpc == nil {
		return nil, ErrProviderUnavailable
	}
	result, err := p.rpc.Call(ctx, "wallet_requestAccounts", nil)
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(result, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *RPCProvider) SendTransaction(ctx context.Context, tx chain.TxMsg) (string, error) {
	if p.rpc == nil {
		return "", ErrProviderUnavailable
	}
	result, err := p.rpc.Call(ctx, "wallet_sendTransaction", []interface{}{tx})
	if err != nil {
		return "", err
	}
	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return "", err
	}
	return txHash, nil
}
