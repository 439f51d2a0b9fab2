package contract

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/ethereum/go-ethereum/common"
)

// ERC-20 signatures used by the token commands.
const (
	SigTransfer  = "transfer(address,uint256)"
	SigMint      = "mint(address,uint256)"
	SigBurn      = "burn(uint256)"
	SigBalanceOf = "balanceOf(address)"
	SigDecimals  = "decimals()"
	SigSymbol    = "symbol()"
)

// TokenInfo is the display metadata of an ERC-20 token.
type TokenInfo struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
}

// TokenInfo reads symbol and decimals, defaulting to "TOKEN" and 18 when
// the token does not implement the optional metadata accessors.
func (b *Backend) TokenInfo(ctx context.Context, token common.Address) (*TokenInfo, error) {
	info := &TokenInfo{Address: token, Symbol: "TOKEN", Decimals: 18}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if sym, err := b.CallString(ctx, token, SigSymbol); err == nil && sym != "" {
		info.Symbol = sym
	}
	if d, err := b.CallUint(ctx, token, SigDecimals); err == nil && d.IsUint64() && d.Uint64() <= 77 {
		info.Decimals = uint8(d.Uint64())
	}
	return info, nil
}

// BalanceOf returns owner's token balance in base units.
func (b *Backend) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return b.CallUint(ctx, token, SigBalanceOf, owner)
}

// TransferCandidate moves amount to to.
func TransferCandidate(to common.Address, amount *big.Int) resolver.Candidate {
	return tokenCandidate("transfer", []string{"address", "uint256"}, to, amount)
}

// MintCandidate mints amount to to. Only callers with minting rights succeed.
func MintCandidate(to common.Address, amount *big.Int) resolver.Candidate {
	return tokenCandidate("mint", []string{"address", "uint256"}, to, amount)
}

// BurnCandidate burns amount from the caller.
func BurnCandidate(amount *big.Int) resolver.Candidate {
	return resolver.Candidate{
		Function: "burn",
		Params:   []string{"uint256"},
		Args:     []any{amount},
		Payment:  resolver.PaymentNone,
	}
}

func tokenCandidate(fn string, params []string, to common.Address, amount *big.Int) resolver.Candidate {
	return resolver.Candidate{
		Function: fn,
		Params:   params,
		Args:     []any{to, amount},
		Payment:  resolver.PaymentNone,
	}
}
