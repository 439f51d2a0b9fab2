package contract

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintWord(v int64) string {
	b := make([]byte, 32)
	big.NewInt(v).FillBytes(b)
	return hexutil.Encode(b)
}

func mintInvocation(value *big.Int) resolver.Invocation {
	return resolver.Invocation{
		Contract:  common.HexToAddress(testContract),
		From:      common.HexToAddress(testSender),
		Signature: "mint(address)",
		Args:      []any{common.HexToAddress(testRecipient)},
		Value:     value,
	}
}

func TestSimulateSuccessSendsFromAndValue(t *testing.T) {
	m := rpcMock(t, map[string]interface{}{"eth_call": "0x"})
	err := NewBackend(m.client()).Simulate(context.Background(), mintInvocation(big.NewInt(255)))
	require.NoError(t, err)

	args := callArgs(m.params("eth_call", 0)[0])
	assert.Equal(t, common.HexToAddress(testSender).Hex(), args["from"])
	assert.Equal(t, "0xff", args["value"])
	assert.Equal(t, "0x6a627842", args["data"][:10])
}

func TestSimulateRevertDecodesReason(t *testing.T) {
	data, err := Encode("Error(string)", "Ownable: caller is not the owner")
	require.NoError(t, err)
	m := rpcMock(t, map[string]interface{}{
		"eth_call": rpcFail{Code: 3, Message: "execution reverted: Ownable: caller is not the owner", Data: hexutil.Encode(data)},
	})

	err = NewBackend(m.client()).Simulate(context.Background(), mintInvocation(nil))
	var rev *resolver.RevertError
	require.ErrorAs(t, err, &rev)
	assert.Equal(t, "Ownable: caller is not the owner", rev.Reason)
}

func TestSimulateTransportErrorIsNotRevert(t *testing.T) {
	m := rpcMock(t, map[string]interface{}{"eth_call": rpcFail{Code: -32005, Message: "rate limited"}})
	err := NewBackend(m.client()).Simulate(context.Background(), mintInvocation(nil))
	require.Error(t, err)
	var rev *resolver.RevertError
	assert.False(t, errors.As(err, &rev))
}

func TestSimulateEncodingFailureIsRejection(t *testing.T) {
	m := rpcMock(t, map[string]interface{}{"eth_call": "0x"})
	inv := mintInvocation(nil)
	inv.Args = nil
	err := NewBackend(m.client()).Simulate(context.Background(), inv)
	var rev *resolver.RevertError
	require.ErrorAs(t, err, &rev)
	assert.Zero(t, m.count("eth_call"))
}

func TestReadUint(t *testing.T) {
	m := rpcMock(t, map[string]interface{}{"eth_call": uintWord(5_000_000_000_000_000)})
	v, err := NewBackend(m.client()).ReadUint(context.Background(), common.HexToAddress(testContract), "mintFee()")
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000_000_000_000), v.Int64())

	args := callArgs(m.params("eth_call", 0)[0])
	sel := Selector("mintFee()")
	assert.Equal(t, "0x"+hex.EncodeToString(sel[:]), args["data"])
}

func TestReadUintMissingAccessor(t *testing.T) {
	m := rpcMock(t, map[string]interface{}{"eth_call": "0x"})
	_, err := NewBackend(m.client()).ReadUint(context.Background(), common.HexToAddress(testContract), "fee()")
	assert.ErrorIs(t, err, ErrEmptyReturn)
}

func TestBackendFeedsFeeDiscovery(t *testing.T) {
	mintFee, fee := Selector("mintFee()"), Selector("fee()")
	m := rpcMock(t, map[string]interface{}{
		"eth_call": rpcFunc(func(params []json.RawMessage) interface{} {
			switch callArgs(params[0])["data"] {
			case hexutil.Encode(mintFee[:]):
				return rpcFail{Code: 3, Message: "execution reverted"}
			case hexutil.Encode(fee[:]):
				return uintWord(77)
			}
			return "0x"
		}),
	})
	q, err := resolver.NewFeeDiscovery(NewBackend(m.client()), 0, nil).Discover(context.Background(), common.HexToAddress(testContract))
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, resolver.SourceFee, q.Source)
	assert.Equal(t, int64(77), q.Amount.Int64())
}

func TestHasCode(t *testing.T) {
	m := rpcMock(t, map[string]interface{}{"eth_getCode": "0x6080604052"})
	ok, err := NewBackend(m.client()).HasCode(context.Background(), common.HexToAddress(testContract))
	require.NoError(t, err)
	assert.True(t, ok)

	m = rpcMock(t, map[string]interface{}{"eth_getCode": "0x"})
	ok, err = NewBackend(m.client()).HasCode(context.Background(), common.HexToAddress(testRecipient))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenInfoDefaults(t *testing.T) {
	m := rpcMock(t, map[string]interface{}{"eth_call": "0x"})
	info, err := NewBackend(m.client()).TokenInfo(context.Background(), common.HexToAddress(testContract))
	require.NoError(t, err)
	assert.Equal(t, "TOKEN", info.Symbol)
	assert.Equal(t, uint8(18), info.Decimals)
}

func TestTokenInfoAndBalance(t *testing.T) {
	symSel, decSel := Selector(SigSymbol), Selector(SigDecimals)
	m := rpcMock(t, map[string]interface{}{
		"eth_call": rpcFunc(func(params []json.RawMessage) interface{} {
			data := callArgs(params[0])["data"]
			switch {
			case data == hexutil.Encode(symSel[:]):
				mm, _ := ParseSignature("f(string)")
				b, _ := mm.Inputs.Pack("USDC")
				return hexutil.Encode(b)
			case data == hexutil.Encode(decSel[:]):
				return uintWord(6)
			default:
				return uintWord(1_500_000)
			}
		}),
	})
	b := NewBackend(m.client())
	token := common.HexToAddress(testContract)

	info, err := b.TokenInfo(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "USDC", info.Symbol)
	assert.Equal(t, uint8(6), info.Decimals)

	bal, err := b.BalanceOf(context.Background(), token, common.HexToAddress(testSender))
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), bal.Int64())
}

func TestTokenCandidates(t *testing.T) {
	to := common.HexToAddress(testRecipient)
	assert.Equal(t, SigTransfer, TransferCandidate(to, big.NewInt(1)).Signature())
	assert.Equal(t, SigMint, MintCandidate(to, big.NewInt(1)).Signature())
	assert.Equal(t, SigBurn, BurnCandidate(big.NewInt(1)).Signature())

	_, err := Encode(SigBurn, BurnCandidate(big.NewInt(3)).Args...)
	assert.NoError(t, err)
}
