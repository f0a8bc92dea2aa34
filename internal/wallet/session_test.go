package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/filmdao/daoclient/internal/chain"
)

type fakeProvider struct {
	available bool
	accounts  []string
	acctErr   error

	sentTx chain.TxMsg
	txHash string
	txErr  error
}

func (p *fakeProvider) Available() bool { return p.available }

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return p.accounts, p.acctErr
}

func (p *fakeProvider) SendTransaction(ctx context.Context, tx chain.TxMsg) (string, error) {
	p.sentTx = tx
	return p.txHash, p.txErr
}

func TestConnectChecksumsAccount(t *testing.T) {
	provider := &fakeProvider{
		available: true,
		accounts:  []string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"},
	}
	session := NewSession(provider, nil)

	account, err := session.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	want := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	if account != want {
		t.Fatalf("account = %s, want %s", account, want)
	}
	if session.Account() != want {
		t.Fatalf("session account = %s, want %s", session.Account(), want)
	}
}

func TestConnectProviderUnavailable(t *testing.T) {
	session := NewSession(&fakeProvider{available: false}, nil)
	if _, err := session.Connect(context.Background()); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}

	session = NewSession(nil, nil)
	if _, err := session.Connect(context.Background()); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable for nil provider, got %v", err)
	}
}

func TestConnectUserRejected(t *testing.T) {
	provider := &fakeProvider{available: true, acctErr: chain.ErrUserRejected}
	session := NewSession(provider, nil)
	if _, err := session.Connect(context.Background()); !errors.Is(err, chain.ErrUserRejected) {
		t.Fatalf("expected ErrUserRejected, got %v", err)
	}
}

func TestSignerRequiresConnect(t *testing.T) {
	session := NewSession(&fakeProvider{available: true}, nil)
	if _, err := session.Signer(); err == nil {
		t.Fatal("expected error from Signer before Connect")
	}
}

func TestSignerFillsSender(t *testing.T) {
	provider := &fakeProvider{
		available: true,
		accounts:  []string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"},
		txHash:    "0xdeadbeef",
	}
	session := NewSession(provider, nil)
	if _, err := session.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	signer, err := session.Signer()
	if err != nil {
		t.Fatalf("signer: %v", err)
	}

	hash, err := signer.SendTransaction(context.Background(), chain.TxMsg{To: "0xcontract", Method: "vote"})
	if err != nil {
		t.Fatalf("send transaction: %v", err)
	}
	if hash != "0xdeadbeef" {
		t.Fatalf("hash = %s", hash)
	}
	if provider.sentTx.From != session.Account() {
		t.Fatalf("sender = %s, want %s", provider.sentTx.From, session.Account())
	}
}
