package resolver

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Invocation is a fully specified contract call, ready to simulate or submit.
type Invocation struct {
	Contract  common.Address
	From      common.Address
	Signature string // canonical form, e.g. "mint(address,uint256)"
	Args      []any
	Value     *big.Int // nil or zero means no native value attached
}

// SimulationBackend dry-runs an invocation against current chain state.
// It returns nil on success, *RevertError when execution reverted, and any
// other error when the simulation itself could not be performed.
type SimulationBackend interface {
	Simulate(ctx context.Context, inv Invocation) error
}

// FeeReader queries a zero-argument uint256 accessor on a contract.
type FeeReader interface {
	ReadUint(ctx context.Context, contract common.Address, signature string) (*big.Int, error)
}

// Broadcaster signs and broadcasts an invocation exactly once.
type Broadcaster interface {
	Submit(ctx context.Context, inv Invocation) (common.Hash, error)
}
