package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url    string
	client *http.Client
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// IsRevert reports whether the node rejected the call because execution
// reverted, as opposed to a malformed request or a node-side failure.
func (e *RPCError) IsRevert() bool {
	if e.Code == 3 {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "revert")
}

// RevertData returns the raw revert payload attached to the error, if any.
func (e *RPCError) RevertData() []byte {
	if len(e.Data) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil
	}
	return b
}

// SimResult is the outcome of an eth_call dry-run.
type SimResult struct {
	OK         bool
	ReturnData []byte
	// Reason is the revert message reported by the node, when OK is false.
	Reason string
	// RevertData is the ABI-encoded revert payload, when the node provides it.
	RevertData []byte
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CallContract executes a read-only eth_call against the latest block.
func (c *EVMClient) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	var out string
	err := c.call(ctx, &out, "eth_call", map[string]string{
		"to":   to,
		"data": hexutil.Encode(data),
	}, "latest")
	if err != nil {
		return nil, err
	}
	return hexutil.Decode(normalizeHex(out))
}

// GetCode returns the deployed bytecode at address, empty for an EOA.
func (c *EVMClient) GetCode(ctx context.Context, address string) ([]byte, error) {
	var out string
	if err := c.call(ctx, &out, "eth_getCode", address, "latest"); err != nil {
		return nil, err
	}
	return hexutil.Decode(normalizeHex(out))
}

// SimulateCall dry-runs a state-changing call via eth_call with a from field.
// A revert is reported through SimResult; only transport or node failures
// are returned as errors.
func (c *EVMClient) SimulateCall(ctx context.Context, from, to string, data []byte, value *big.Int) (*SimResult, error) {
	var out string
	err := c.call(ctx, &out, "eth_call", txParams(from, to, data, value), "latest")
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && rpcErr.IsRevert() {
			return &SimResult{
				Reason:     extractRevertReason(rpcErr.Message),
				RevertData: rpcErr.RevertData(),
			}, nil
		}
		return nil, err
	}
	ret, _ := hexutil.Decode(normalizeHex(out))
	return &SimResult{OK: true, ReturnData: ret}, nil
}

// EstimateGas estimates gas for a transaction.
func (c *EVMClient) EstimateGas(ctx context.Context, from, to string, data []byte, value *big.Int) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_estimateGas", txParams(from, to, data, value), "latest"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// GasPrice returns the current gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, "eth_chainId"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// GetPendingNonce returns the transaction count including pending (queued)
// transactions, using the "pending" block tag.
func (c *EVMClient) GetPendingNonce(ctx context.Context, address string) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_getTransactionCount", address, "pending"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// SendRawTransaction broadcasts a signed raw transaction and returns its hash.
func (c *EVMClient) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	var hash string
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return "", err
	}
	return hash, nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	var out hexutil.Uint64
	err = c.call(ctx, &out, "eth_blockNumber")
	latency = time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	return latency, uint64(out), nil
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func (c *EVMClient) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("parsing result: %w", err)
	}
	return nil
}

func txParams(from, to string, data []byte, value *big.Int) map[string]string {
	params := map[string]string{
		"to": to,
	}
	if from != "" {
		params["from"] = from
	}
	if len(data) > 0 {
		params["data"] = hexutil.Encode(data)
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = hexutil.EncodeBig(value)
	}
	return params
}

// normalizeHex makes an odd-length or bare "0x" result decodable.
func normalizeHex(s string) string {
	if s == "" || s == "0x" {
		return "0x"
	}
	body := strings.TrimPrefix(s, "0x")
	if len(body)%2 != 0 {
		body = "0" + body
	}
	return "0x" + body
}

// extractRevertReason tries to pull the revert reason out of an RPC error message.
func extractRevertReason(errMsg string) string {
	// Common pattern: "execution reverted: <reason>"
	if idx := strings.Index(errMsg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx+len("execution reverted:"):])
	}
	if strings.TrimSpace(errMsg) == "execution reverted" {
		return ""
	}
	return errMsg
}
