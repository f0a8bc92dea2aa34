package chain

import (
	"encoding/json"
	"fmt"
)

// RPCRequest is a JSON-RPC 2.0 request envelope.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      int             `json:"id"`
}

// RPCError is the error object returned by the node or the wallet provider.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// CallMsg describes a read-only contract call.
type CallMsg struct {
	To     string        `json:"to"`
	Method string        `json:"method"`
	Params []interface{} `json:"params,omitempty"`
}

// TxMsg describes a state-changing contract call to be signed and submitted
// by the wallet provider.
type TxMsg struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Method string        `json:"method"`
	Params []interface{} `json:"params,omitempty"`
}

// Receipt is the confirmation record for a submitted transaction. A
// transaction is confirmed once its receipt is available; Status reports
// whether execution succeeded.
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	Status      uint8  `json:"status"`
	Revert      string `json:"revertReason,omitempty"`
}

// Receipt status values.
const (
	StatusReverted uint8 = 0
	StatusOK       uint8 = 1
)
