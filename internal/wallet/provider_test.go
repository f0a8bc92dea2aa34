package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/filmdao/daoclient/internal/chain"
)

func walletServer(t *testing.T, handler func(req chain.RPCRequest) (interface{}, *chain.RPCError)) *chain.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chain.RPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		result, rpcErr := handler(req)
		resp := chain.RPCResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
		if rpcErr == nil {
			resp.Result, _ = json.Marshal(result)
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client, err := chain.NewClient(chain.Config{RPCURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestRPCProviderRequestAccounts(t *testing.T) {
	client := walletServer(t, func(req chain.RPCRequest) (interface{}, *chain.RPCError) {
		if req.Method != "wallet_requestAccounts" {
			t.Fatalf("method = %s", req.Method)
		}
		return []string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, nil
	})

	provider := NewRPCProvider(client)
	if !provider.Available() {
		t.Fatal("provider should be available")
	}

	accounts, err := provider.RequestAccounts(context.Background())
	if err != nil {
		t.Fatalf("request accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %v", accounts)
	}
}

func TestRPCProviderSendTransaction(t *testing.T) {
	client := walletServer(t, func(req chain.RPCRequest) (interface{}, *chain.RPCError) {
		if req.Method != "wallet_sendTransaction" {
			t.Fatalf("method = %s", req.Method)
		}
		return "0xhash", nil
	})

	provider := NewRPCProvider(client)
	hash, err := provider.SendTransaction(context.Background(), chain.TxMsg{To: "0xgov", Method: "vote"})
	if err != nil {
		t.Fatalf("send transaction: %v", err)
	}
	if hash != "0xhash" {
		t.Fatalf("hash = %s", hash)
	}
}

func TestRPCProviderRejection(t *testing.T) {
	client := walletServer(t, func(req chain.RPCRequest) (interface{}, *chain.RPCError) {
		return nil, &chain.RPCError{Code: 4001, Message: "User rejected the request."}
	})

	provider := NewRPCProvider(client)
	_, err := provider.SendTransaction(context.Background(), chain.TxMsg{To: "0xgov", Method: "vote"})
	if !errors.Is(err, chain.ErrUserRejected) {
		t.Fatalf("expected ErrUserRejected, got %v", err)
	}
}

func TestRPCProviderNilClient(t *testing.T) {
	provider := NewRPCProvider(nil)
	if provider.Available() {
		t.Fatal("nil client should report unavailable")
	}
	if _, err := provider.RequestAccounts(context.Background()); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if _, err := provider.SendTransaction(context.Background(), chain.TxMsg{}); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
