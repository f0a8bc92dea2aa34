// Package chain provides the JSON-RPC client used to talk to the ledger node
// hosting the governance and token contracts.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client provides JSON-RPC access to a ledger node.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	RPCURL  string
	Timeout time.Duration
}

// NewClient creates a new ledger node client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Call makes a raw JSON-RPC call to the node. Transport failures are reported
// as *NetworkError; node-reported errors pass through ClassifyRPCError.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: method, Err: err}
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		// Proxies answer with HTML error pages; keep those in the
		// network class rather than reporting a decode failure.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &NetworkError{Op: method, Err: fmt.Errorf("http status %d", resp.StatusCode)}
		}
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, ClassifyRPCError(rpcResp.Error)
	}

	return rpcResp.Result, nil
}

// BlockNumber returns the current block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := c.Call(ctx, "chain_blockNumber", nil)
	if err != nil {
		return 0, err
	}

	var height uint64
	if err := json.Unmarshal(result, &height); err != nil {
		return 0, err
	}
	return height, nil
}

// CallContract performs a read-only contract call and returns the raw result
// payload for the caller to decode.
func (c *Client) CallContract(ctx context.Context, msg CallMsg) (json.RawMessage, error) {
	return c.Call(ctx, "contract_call", []interface{}{msg})
}

// GetReceipt returns the confirmation receipt for a transaction, or an error
// if it is not yet included in a block.
func (c *Client) GetReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	result, err := c.Call(ctx, "chain_getReceipt", []interface{}{txHash})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || string(result) == "null" {
		return nil, errReceiptPending
	}

	var receipt Receipt
	if err := json.Unmarshal(result, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
