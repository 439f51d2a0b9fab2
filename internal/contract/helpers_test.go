package contract

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
)

// rpcFail makes the mock answer with a JSON-RPC error.
type rpcFail struct {
	Code    int
	Message string
	Data    string
}

// rpcFunc computes a response from the request params.
type rpcFunc func(params []json.RawMessage) interface{}

// rpcServer serves fixed or computed responses per method and records
// the params of every request.
type rpcServer struct {
	mu    sync.Mutex
	calls map[string][][]json.RawMessage
	srv   *httptest.Server
}

func rpcMock(t *testing.T, responses map[string]interface{}) *rpcServer {
	t.Helper()
	m := &rpcServer{calls: map[string][][]json.RawMessage{}}
	m.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.calls[req.Method] = append(m.calls[req.Method], req.Params)
		m.mu.Unlock()

		v := responses[req.Method]
		if fn, ok := v.(rpcFunc); ok {
			v = fn(req.Params)
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch x := v.(type) {
		case nil:
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		case rpcFail:
			e := map[string]interface{}{"code": x.Code, "message": x.Message}
			if x.Data != "" {
				e["data"] = x.Data
			}
			resp["error"] = e
		default:
			resp["result"] = x
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *rpcServer) client() *chain.EVMClient { return chain.NewEVMClient(m.srv.URL) }

func (m *rpcServer) count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls[method])
}

func (m *rpcServer) params(method string, i int) []json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method][i]
}

// callArgs decodes the first param of an eth_call or eth_estimateGas.
func callArgs(raw json.RawMessage) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(raw, &out)
	return out
}

const (
	testKeyHex    = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSender    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testContract  = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testRecipient = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)
