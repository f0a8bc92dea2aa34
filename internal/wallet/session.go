// Package wallet obtains the active account and a transaction-capable signing
// handle from an externally supplied wallet provider.
package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/filmdao/daoclient/internal/chain"
	"github.com/filmdao/daoclient/pkg/logger"
)

// Session holds the connection to the wallet provider for the lifetime of the
// process. The account is fixed once connected; if the provider reports an
// account change the caller must run Connect again to re-derive it.
type Session struct {
	provider Provider
	log      *logger.Logger

	mu      sync.RWMutex
	account string
	signer  *Signer
}

// NewSession creates a session over the given provider.
func NewSession(provider Provider, log *logger.Logger) *Session {
	if log == nil {
		log = logger.NewDefault("wallet")
	}
	return &Session{provider: provider, log: log}
}

// Connect requests account access from the provider and binds a signer to the
// active account. Returns ErrProviderUnavailable when no provider is present
// and chain.ErrUserRejected when the user declines access.
func (s *Session) Connect(ctx context.Context) (string, error) {
	if s.provider == nil || !s.provider.Available() {
		return "", ErrProviderUnavailable
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("provider returned no accounts")
	}

	checksummed, err := ChecksumAddress(accounts[0])
	if err != nil {
		return "", fmt.Errorf("normalize account address: %w", err)
	}

	s.mu.Lock()
	s.account = checksummed
	s.signer = &Signer{provider: s.provider, account: checksummed}
	s.mu.Unlock()

	s.log.WithField("account", checksummed).Info("wallet connected")
	return checksummed, nil
}

// Account returns the connected account, or empty if not connected.
func (s *Session) Account() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Signer returns the signing handle bound to the connected account, or an
// error if Connect has not succeeded yet.
func (s *Session) Signer() (*Signer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.signer == nil {
		return nil, fmt.Errorf("wallet not connected")
	}
	return s.signer, nil
}

// Signer submits transactions on behalf of one account. It stays valid only
// while that account remains active in the provider.
type Signer struct {
	provider Provider
	account  string
}

// Account returns the address this signer submits from.
func (s *Signer) Account() string { return s.account }

// SendTransaction fills in the sender and hands the transaction to the
// provider for signing and broadcast.
func (s *Signer) SendTransaction(ctx context.Context, tx chain.TxMsg) (string, error) {
	tx.From = s.account
	return s.provider.SendTransaction(ctx, tx)
}
