package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/ethereum/go-ethereum/common"
)

// Backend dry-runs invocations and reads accessors over JSON-RPC. It
// satisfies resolver.SimulationBackend and resolver.FeeReader.
type Backend struct {
	client *chain.EVMClient
}

// NewBackend creates a Backend on client.
func NewBackend(client *chain.EVMClient) *Backend {
	return &Backend{client: client}
}

// Simulate runs inv through eth_call. A revert comes back as a
// *resolver.RevertError with a decoded reason.
func (b *Backend) Simulate(ctx context.Context, inv resolver.Invocation) error {
	data, err := Encode(inv.Signature, inv.Args...)
	if err != nil {
		return &resolver.RevertError{Reason: "cannot encode: " + err.Error()}
	}
	res, err := b.client.SimulateCall(ctx, inv.From.Hex(), inv.Contract.Hex(), data, inv.Value)
	if err != nil {
		return err
	}
	if !res.OK {
		return &resolver.RevertError{Reason: DecodeRevert(res.RevertData, res.Reason)}
	}
	return nil
}

// ReadUint calls a zero-argument uint256 accessor.
func (b *Backend) ReadUint(ctx context.Context, contract common.Address, signature string) (*big.Int, error) {
	return b.CallUint(ctx, contract, signature)
}

// CallUint calls a view function returning uint256.
func (b *Backend) CallUint(ctx context.Context, contract common.Address, signature string, args ...any) (*big.Int, error) {
	out, err := b.read(ctx, contract, signature, args...)
	if err != nil {
		return nil, err
	}
	return DecodeUint(out)
}

// CallString calls a view function returning string.
func (b *Backend) CallString(ctx context.Context, contract common.Address, signature string, args ...any) (string, error) {
	out, err := b.read(ctx, contract, signature, args...)
	if err != nil {
		return "", err
	}
	return DecodeString(out)
}

// HasCode reports whether contract has deployed bytecode.
func (b *Backend) HasCode(ctx context.Context, contract common.Address) (bool, error) {
	code, err := b.client.GetCode(ctx, contract.Hex())
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

func (b *Backend) read(ctx context.Context, contract common.Address, signature string, args ...any) ([]byte, error) {
	data, err := Encode(signature, args...)
	if err != nil {
		return nil, err
	}
	out, err := b.client.CallContract(ctx, contract.Hex(), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", signature, err)
	}
	return out, nil
}
