package treasury

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/filmdao/daoclient/internal/allowance"
	"github.com/filmdao/daoclient/internal/apperr"
	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	"github.com/filmdao/daoclient/internal/app/domain/token"
	"github.com/filmdao/daoclient/internal/app/services/proposals"
	"github.com/filmdao/daoclient/internal/chain"
	"github.com/filmdao/daoclient/internal/wallet"
)

// fakeContracts serves both contract roles: the governance side receives
// fundDAO, the token side tracks balances and allowances.
type fakeContracts struct {
	mu        sync.Mutex
	balances  map[string]token.Amount
	allowance token.Amount
	fundErr   error

	approves int
	funded   token.Amount
}

func newFakeContracts() *fakeContracts {
	return &fakeContracts{
		balances:  make(map[string]token.Amount),
		allowance: token.Zero(),
		funded:    token.Zero(),
	}
}

func (f *fakeContracts) Address() string { return "0xgov" }

func (f *fakeContracts) ProposalCount(ctx context.Context) (uint64, error) { return 0, nil }

func (f *fakeContracts) ProposalAt(ctx context.Context, id uint64) (proposal.Proposal, error) {
	return proposal.Proposal{}, errors.New("no proposals")
}

func (f *fakeContracts) CreateProposal(ctx context.Context, reference string, amount token.Amount, recipient string) error {
	return nil
}

func (f *fakeContracts) Vote(ctx context.Context, id uint64, amount token.Amount) error { return nil }

func (f *fakeContracts) FinalizeProposal(ctx context.Context, id uint64) error { return nil }

func (f *fakeContracts) FundTreasury(ctx context.Context, amount token.Amount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fundErr != nil {
		return f.fundErr
	}
	f.funded = f.funded.Add(amount)
	f.balances["0xgov"] = f.balances["0xgov"].Add(amount)
	return nil
}

func (f *fakeContracts) BalanceOf(ctx context.Context, addr string) (token.Amount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[addr]
	if !ok {
		return token.Zero(), nil
	}
	return b, nil
}

func (f *fakeContracts) Allowance(ctx context.Context, owner, spender string) (token.Amount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allowance, nil
}

func (f *fakeContracts) Approve(ctx context.Context, spender string, amount token.Amount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approves++
	f.allowance = amount
	return nil
}

type autoProvider struct{}

func (autoProvider) Available() bool { return true }

func (autoProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, nil
}

func (autoProvider) SendTransaction(ctx context.Context, tx chain.TxMsg) (string, error) {
	return "0xhash", nil
}

func testService(t *testing.T, contracts *fakeContracts) *Service {
	t.Helper()
	session := wallet.NewSession(autoProvider{}, nil)
	if _, err := session.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	store := proposals.NewStore(contracts, nil)
	gate := allowance.NewGate(contracts, nil)
	return New(contracts, contracts, gate, store, session, proposal.NewPendingSet(), nil)
}

func TestFund(t *testing.T) {
	contracts := newFakeContracts()
	contracts.balances["0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"] = token.MustParse("100")
	svc := testService(t, contracts)

	if err := svc.Fund(context.Background(), token.MustParse("25")); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if contracts.approves != 1 {
		t.Fatalf("approve calls = %d, want 1", contracts.approves)
	}
	if contracts.funded.String() != "25" {
		t.Fatalf("funded = %s", contracts.funded.String())
	}

	treasury, user := svc.Balances()
	if treasury.String() != "25" {
		t.Fatalf("treasury balance = %s", treasury.String())
	}
	if user.String() != "100" {
		t.Fatalf("user balance = %s", user.String())
	}
}

func TestFundValidatesAmount(t *testing.T) {
	contracts := newFakeContracts()
	svc := testService(t, contracts)

	if err := svc.Fund(context.Background(), token.Zero()); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if contracts.approves != 0 || contracts.funded.Sign() != 0 {
		t.Fatal("validation failure must not reach the contracts")
	}
}

func TestFundDuplicateRejected(t *testing.T) {
	contracts := newFakeContracts()
	pending := proposal.NewPendingSet()

	session := wallet.NewSession(autoProvider{}, nil)
	if _, err := session.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	store := proposals.NewStore(contracts, nil)
	gate := allowance.NewGate(contracts, nil)
	svc := New(contracts, contracts, gate, store, session, pending, nil)

	if !pending.TryAcquire(proposal.PendingKey{Kind: proposal.OpFund}) {
		t.Fatal("acquire fund key")
	}
	if err := svc.Fund(context.Background(), token.MustParse("5")); !apperr.IsPending(err) {
		t.Fatalf("expected pending error, got %v", err)
	}
}

func TestFundRemoteFailureSurfaced(t *testing.T) {
	contracts := newFakeContracts()
	contracts.allowance = token.MustParse("100")
	contracts.fundErr = &chain.NetworkError{Op: "fundDAO", Err: errors.New("refused")}
	svc := testService(t, contracts)

	err := svc.Fund(context.Background(), token.MustParse("5"))
	var netErr *chain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected network error, got %v", err)
	}
	treasury, _ := svc.Balances()
	if treasury.Sign() != 0 {
		t.Fatal("failed funding must not change cached balances")
	}
}

func TestReloadReadsBothBalances(t *testing.T) {
	contracts := newFakeContracts()
	contracts.balances["0xgov"] = token.MustParse("500")
	contracts.balances["0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"] = token.MustParse("42")
	svc := testService(t, contracts)

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	treasury, user := svc.Balances()
	if treasury.String() != "500" || user.String() != "42" {
		t.Fatalf("balances = %s / %s", treasury.String(), user.String())
	}
}
