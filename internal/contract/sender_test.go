package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keySigner signs with a raw key, or fails with err when set.
type keySigner struct {
	err error
}

func (keySigner) Address() string { return testSender }

func (s keySigner) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	key, err := crypto.HexToECDSA(testKeyHex)
	if err != nil {
		return nil, err
	}
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), key)
	if err != nil {
		return nil, err
	}
	return signed.MarshalBinary()
}

const testTxHash = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"

func senderMock(t *testing.T, estimate interface{}) *rpcServer {
	return rpcMock(t, map[string]interface{}{
		"eth_estimateGas":         estimate,
		"eth_gasPrice":            "0x3b9aca00",
		"eth_getTransactionCount": "0x7",
		"eth_chainId":             "0x2105",
		"eth_sendRawTransaction":  testTxHash,
	})
}

func decodeSent(t *testing.T, m *rpcServer) *types.Transaction {
	t.Helper()
	require.Equal(t, 1, m.count("eth_sendRawTransaction"))
	var rawHex string
	require.NoError(t, json.Unmarshal(m.params("eth_sendRawTransaction", 0)[0], &rawHex))
	raw, err := hexutil.Decode(rawHex)
	require.NoError(t, err)
	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(raw))
	return tx
}

func TestSubmitBuildsDynamicFeeTx(t *testing.T) {
	m := senderMock(t, "0x15f90")
	s := NewSender(m.client(), keySigner{}, big.NewInt(8453), 250_000)

	inv := mintInvocation(big.NewInt(1_000_000))
	hash, err := s.Submit(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(testTxHash), hash)

	tx := decodeSent(t, m)
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, int64(8453), tx.ChainId().Int64())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(90_000), tx.Gas())
	assert.Equal(t, int64(1_000_000), tx.Value().Int64())
	assert.Equal(t, common.HexToAddress(testContract), *tx.To())
	assert.Equal(t, int64(2_000_000_000), tx.GasFeeCap().Int64())

	want, err := Encode(inv.Signature, inv.Args...)
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())

	from, err := types.Sender(types.NewLondonSigner(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSender), from)
}

func TestSubmitFallsBackToDefaultGas(t *testing.T) {
	m := senderMock(t, rpcFail{Code: 3, Message: "execution reverted"})
	s := NewSender(m.client(), keySigner{}, big.NewInt(8453), 250_000)

	_, err := s.Submit(context.Background(), mintInvocation(nil))
	require.NoError(t, err)

	tx := decodeSent(t, m)
	assert.Equal(t, uint64(250_000), tx.Gas())
	assert.Equal(t, int64(0), tx.Value().Int64())
}

func TestSubmitFetchesChainID(t *testing.T) {
	m := senderMock(t, "0x5208")
	_, err := NewSender(m.client(), keySigner{}, nil, 21_000).Submit(context.Background(), mintInvocation(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, m.count("eth_chainId"))
	assert.Equal(t, int64(0x2105), decodeSent(t, m).ChainId().Int64())
}

func TestSubmitSigningDeclinedIsUserRejection(t *testing.T) {
	m := senderMock(t, "0x5208")
	s := NewSender(m.client(), keySigner{err: fmt.Errorf("unlock: %w", wallet.ErrSigningDeclined)}, big.NewInt(1), 21_000)

	_, err := s.Submit(context.Background(), mintInvocation(nil))
	assert.ErrorIs(t, err, resolver.ErrUserRejected)
	assert.Zero(t, m.count("eth_sendRawTransaction"))
}

func TestSubmitSignerMismatch(t *testing.T) {
	m := senderMock(t, "0x5208")
	inv := mintInvocation(nil)
	inv.From = common.HexToAddress(testRecipient)

	_, err := NewSender(m.client(), keySigner{}, big.NewInt(1), 21_000).Submit(context.Background(), inv)
	require.Error(t, err)
	assert.Zero(t, m.count("eth_estimateGas"))
}

func TestSubmitBroadcastFailure(t *testing.T) {
	m := rpcMock(t, map[string]interface{}{
		"eth_estimateGas":         "0x5208",
		"eth_gasPrice":            "0x1",
		"eth_getTransactionCount": "0x0",
		"eth_sendRawTransaction":  rpcFail{Code: -32000, Message: "insufficient funds for gas * price + value"},
	})
	_, err := NewSender(m.client(), keySigner{}, big.NewInt(1), 21_000).Submit(context.Background(), mintInvocation(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient funds")
	assert.False(t, errors.Is(err, resolver.ErrUserRejected))
}

func TestSenderThroughSubmitter(t *testing.T) {
	m := senderMock(t, "0x5208")
	sub := resolver.NewSubmitter(NewSender(m.client(), keySigner{}, big.NewInt(8453), 21_000), nil, nil, nil)

	res := &resolver.Resolution{
		Contract:  common.HexToAddress(testContract),
		Caller:    common.HexToAddress(testSender),
		Candidate: MintCandidate(common.HexToAddress(testRecipient), big.NewInt(10)),
		Rationale: resolver.RationaleVerified,
	}
	out := sub.Execute(context.Background(), res)
	assert.Equal(t, resolver.StatusSubmitted, out.Status)
	assert.Equal(t, common.HexToHash(testTxHash), out.TxHash)
}
