package resolver_test

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/ethereum/go-ethereum/common"
)

const (
	contractAddr  = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	callerAddr    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	recipientAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

var errTransport = errors.New("dial tcp: connection refused")

func mintRequest(fee string) resolver.Request {
	return resolver.Request{
		Intent:      resolver.MintTo(recipientAddr),
		Contract:    contractAddr,
		Caller:      callerAddr,
		FeeOverride: fee,
	}
}

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad int " + s)
	}
	return v
}

func revert(reason string) error { return &resolver.RevertError{Reason: reason} }

// simKey identifies an invocation by signature and whether value is attached.
func simKey(inv resolver.Invocation) string {
	if inv.Value != nil && inv.Value.Sign() > 0 {
		return inv.Signature + "+value"
	}
	return inv.Signature
}

// fakeSim answers from a table keyed by simKey. Unlisted invocations
// revert with "unknown".
type fakeSim struct {
	mu      sync.Mutex
	results map[string]error
	calls   []resolver.Invocation
	hook    func(ctx context.Context, inv resolver.Invocation) error
}

func newSim(results map[string]error) *fakeSim {
	return &fakeSim{results: results}
}

func (f *fakeSim) Simulate(ctx context.Context, inv resolver.Invocation) error {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()
	if f.hook != nil {
		return f.hook(ctx, inv)
	}
	if err, ok := f.results[simKey(inv)]; ok {
		return err
	}
	return revert("unknown")
}

func (f *fakeSim) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeFees answers fee accessor reads. Missing accessors fail.
type fakeFees struct {
	mu     sync.Mutex
	values map[string]*big.Int
	calls  int
}

func (f *fakeFees) ReadUint(_ context.Context, _ common.Address, sig string) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if v, ok := f.values[sig]; ok {
		return new(big.Int).Set(v), nil
	}
	return nil, revert("")
}

func (f *fakeFees) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	hash common.Hash
	err  error
	sent []resolver.Invocation
}

func (f *fakeBroadcaster) Submit(_ context.Context, inv resolver.Invocation) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, inv)
	return f.hash, f.err
}
