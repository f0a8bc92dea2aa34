package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/filmdao/daoclient/internal/app/domain/token"
	"github.com/filmdao/daoclient/internal/chain"
	"github.com/filmdao/daoclient/internal/wallet"
)

type stubProvider struct {
	account string
	txHash  string
	txErr   error
	sent    []chain.TxMsg
}

func (p *stubProvider) Available() bool { return true }

func (p *stubProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{p.account}, nil
}

func (p *stubProvider) SendTransaction(ctx context.Context, tx chain.TxMsg) (string, error) {
	p.sent = append(p.sent, tx)
	return p.txHash, p.txErr
}

// testNode answers contract_call by method name and serves one receipt for
// every chain_getReceipt.
func testNode(t *testing.T, reads map[string]interface{}, receipt *chain.Receipt) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chain.RPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp := chain.RPCResponse{JSONRPC: "2.0", ID: req.ID}
		switch req.Method {
		case "contract_call":
			msg, _ := json.Marshal(req.Params[0])
			var call chain.CallMsg
			json.Unmarshal(msg, &call)
			result, ok := reads[call.Method]
			if !ok {
				t.Fatalf("unexpected contract call: %s", call.Method)
			}
			resp.Result, _ = json.Marshal(result)
		case "chain_getReceipt":
			resp.Result, _ = json.Marshal(receipt)
		default:
			t.Fatalf("unexpected rpc method: %s", req.Method)
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testSigner(t *testing.T, provider *stubProvider) *wallet.Signer {
	t.Helper()
	session := wallet.NewSession(provider, nil)
	if _, err := session.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	signer, err := session.Signer()
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return signer
}

func newTestClient(t *testing.T, server *httptest.Server, signer *wallet.Signer) *Client {
	t.Helper()
	node, err := chain.NewClient(chain.Config{RPCURL: server.URL})
	if err != nil {
		t.Fatalf("node client: %v", err)
	}
	client, err := NewClient(node, signer, Config{
		GovernanceAddress: "0xgov",
		TokenAddress:      "0xtok",
		WaitTimeout:       2 * time.Second,
		PollInterval:      10 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("gateway client: %v", err)
	}
	return client
}

func TestProposalReads(t *testing.T) {
	server := testNode(t, map[string]interface{}{
		"proposalCount": 2,
		"proposals":     map[string]interface{}{"id": 1, "name": "Test", "amount": "100", "votes": "5"},
	}, nil)
	defer server.Close()

	client := newTestClient(t, server, nil)

	count, err := client.ProposalCount(context.Background())
	if err != nil {
		t.Fatalf("proposal count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d", count)
	}

	p, err := client.ProposalAt(context.Background(), 1)
	if err != nil {
		t.Fatalf("proposal at: %v", err)
	}
	if p.ID != 1 || p.Reference != "Test" || p.Votes.UnitsString() != "5" {
		t.Fatalf("unexpected proposal: %+v", p)
	}
}

func TestTokenReads(t *testing.T) {
	server := testNode(t, map[string]interface{}{
		"balanceOf": "1000",
		"allowance": "250",
	}, nil)
	defer server.Close()

	client := newTestClient(t, server, nil)

	balance, err := client.BalanceOf(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.UnitsString() != "1000" {
		t.Fatalf("balance = %s", balance.UnitsString())
	}

	allowance, err := client.Allowance(context.Background(), "0xabc", "0xgov")
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if allowance.UnitsString() != "250" {
		t.Fatalf("allowance = %s", allowance.UnitsString())
	}
}

func TestSubmitConfirms(t *testing.T) {
	server := testNode(t, nil, &chain.Receipt{TxHash: "0xhash", BlockNumber: 5, Status: chain.StatusOK})
	defer server.Close()

	provider := &stubProvider{account: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", txHash: "0xhash"}
	client := newTestClient(t, server, testSigner(t, provider))

	amount, _ := token.Parse("5")
	if err := client.Vote(context.Background(), 2, amount); err != nil {
		t.Fatalf("vote: %v", err)
	}

	if len(provider.sent) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(provider.sent))
	}
	tx := provider.sent[0]
	if tx.To != "0xgov" || tx.Method != "vote" {
		t.Fatalf("unexpected tx: %+v", tx)
	}
	if tx.Params[1] != "5000000000000000000" {
		t.Fatalf("amount param = %v", tx.Params[1])
	}
}

func TestSubmitRevertedReceipt(t *testing.T) {
	server := testNode(t, nil, &chain.Receipt{TxHash: "0xhash", Status: chain.StatusReverted, Revert: "Already finalized"})
	defer server.Close()

	provider := &stubProvider{account: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", txHash: "0xhash"}
	client := newTestClient(t, server, testSigner(t, provider))

	err := client.FinalizeProposal(context.Background(), 2)
	var revert *chain.RevertError
	if !errors.As(err, &revert) {
		t.Fatalf("expected *RevertError, got %v", err)
	}
	if revert.Reason != chain.ReasonAlreadyFinalized {
		t.Fatalf("reason = %s", revert.Reason)
	}
}

func TestSubmitUserRejected(t *testing.T) {
	server := testNode(t, nil, nil)
	defer server.Close()

	provider := &stubProvider{account: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", txErr: chain.ErrUserRejected}
	client := newTestClient(t, server, testSigner(t, provider))

	err := client.CreateProposal(context.Background(), "ipfs://Qm", token.MustParse("1"), "0xabc")
	if !errors.Is(err, chain.ErrUserRejected) {
		t.Fatalf("expected ErrUserRejected, got %v", err)
	}
	if len(provider.sent) != 1 {
		t.Fatal("transaction should have been attempted once")
	}
}

func TestSubmitWithoutSigner(t *testing.T) {
	server := testNode(t, nil, nil)
	defer server.Close()

	client := newTestClient(t, server, nil)
	if err := client.FundTreasury(context.Background(), token.MustParse("1")); err == nil {
		t.Fatal("expected error without signer")
	}
}
