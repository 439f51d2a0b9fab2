// Package ens resolves ENS names to addresses for recipient arguments.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Registry is the ENS registry, deployed at the same address on Ethereum
// mainnet and Sepolia.
var Registry = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// Chain is the registry chain name ENS lookups run against.
const Chain = "ethereum"

var (
	ErrNoResolver = errors.New("no resolver set")
	ErrNoAddress  = errors.New("no address record")
)

// Caller performs a read-only eth_call. chain.EVMClient satisfies it.
type Caller interface {
	CallContract(ctx context.Context, to string, data []byte) ([]byte, error)
}

// IsName reports whether s looks like an ENS name rather than a hex address
// or a local wallet name.
func IsName(s string) bool {
	s = strings.TrimSpace(s)
	return !strings.HasPrefix(s, "0x") && strings.Contains(s, ".") && !strings.HasSuffix(s, ".")
}

// Resolve returns the address record of name.
func Resolve(ctx context.Context, c Caller, name string) (common.Address, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	node := Namehash(name)

	res, err := resolverOf(ctx, c, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	addr, err := callAddress(ctx, c, res, "addr(bytes32)", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: addr: %w", name, err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s: %w", name, ErrNoAddress)
	}
	return addr, nil
}

// ReverseLookup returns the primary name of addr, or an error when none is set.
func ReverseLookup(ctx context.Context, c Caller, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(addr.Hex()[2:]) + ".addr.reverse")

	res, err := resolverOf(ctx, c, node)
	if err != nil {
		return "", fmt.Errorf("no reverse record for %s: %w", addr.Hex(), err)
	}
	data, err := contract.Encode("name(bytes32)", node)
	if err != nil {
		return "", err
	}
	out, err := c.CallContract(ctx, res.Hex(), data)
	if err != nil {
		return "", fmt.Errorf("name: %w", err)
	}
	name, err := contract.DecodeString(out)
	if err != nil || name == "" {
		return "", fmt.Errorf("no reverse record for %s", addr.Hex())
	}
	return name, nil
}

func resolverOf(ctx context.Context, c Caller, node [32]byte) (common.Address, error) {
	res, err := callAddress(ctx, c, Registry, "resolver(bytes32)", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("resolver: %w", err)
	}
	if res == (common.Address{}) {
		return common.Address{}, ErrNoResolver
	}
	return res, nil
}

func callAddress(ctx context.Context, c Caller, to common.Address, sig string, node [32]byte) (common.Address, error) {
	data, err := contract.Encode(sig, node)
	if err != nil {
		return common.Address{}, err
	}
	out, err := c.CallContract(ctx, to.Hex(), data)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) == 0 {
		return common.Address{}, nil
	}
	return contract.DecodeAddress(out)
}

// Namehash computes the EIP-137 node of name. Labels are hashed as given;
// callers normalise case.
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak([]byte(labels[i]))
		node = keccak(node[:], label[:])
	}
	return node
}

func keccak(parts ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
