package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// TxSigner signs transactions for one account.
type TxSigner interface {
	Address() string
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Sender signs and broadcasts invocations. It satisfies
// resolver.Broadcaster.
type Sender struct {
	client   *chain.EVMClient
	signer   TxSigner
	chainID  *big.Int
	gasLimit uint64
	logger   log.Logger
}

// NewSender creates a Sender. gasLimit is used when estimation fails. A
// nil chainID is fetched from the node on first use.
func NewSender(client *chain.EVMClient, signer TxSigner, chainID *big.Int, gasLimit uint64) *Sender {
	return &Sender{client: client, signer: signer, chainID: chainID, gasLimit: gasLimit, logger: log.Root()}
}

// Submit builds, signs and broadcasts inv once. A declined signature is
// reported as resolver.ErrUserRejected.
func (s *Sender) Submit(ctx context.Context, inv resolver.Invocation) (common.Hash, error) {
	calldata, err := Encode(inv.Signature, inv.Args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding call: %w", err)
	}

	from := s.signer.Address()
	if inv.From != (common.Address{}) && inv.From != common.HexToAddress(from) {
		return common.Hash{}, fmt.Errorf("invocation was resolved for %s but signer is %s", inv.From.Hex(), from)
	}
	to := inv.Contract

	gas, err := s.client.EstimateGas(ctx, from, to.Hex(), calldata, inv.Value)
	if err != nil {
		s.logger.Debug("Gas estimation failed, using default limit", "limit", s.gasLimit, "err", err)
		gas = s.gasLimit
	}

	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.client.GetPendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	chainID := s.chainID
	if chainID == nil {
		if chainID, err = s.client.ChainID(ctx); err != nil {
			return common.Hash{}, fmt.Errorf("getting chain id: %w", err)
		}
	}

	value := inv.Value
	if value == nil {
		value = new(big.Int)
	}
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      calldata,
	})

	raw, err := s.signer.SignTx(tx, chainID)
	if err != nil {
		if errors.Is(err, wallet.ErrSigningDeclined) {
			return common.Hash{}, fmt.Errorf("%w: %v", resolver.ErrUserRejected, err)
		}
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.client.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	s.logger.Debug("Broadcast transaction", "hash", hash, "nonce", nonce, "gas", gas)
	return common.HexToHash(hash), nil
}
