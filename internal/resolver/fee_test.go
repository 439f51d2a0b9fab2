package resolver_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManualFee(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0.05", "50000000000000000"},
		{"1", "1000000000000000000"},
		{" 0.000000000000000001 ", "1"},
		{"0", "0"},
		{"2.5", "2500000000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			q, err := resolver.ParseManualFee(tc.in, 18)
			require.NoError(t, err)
			require.NotNil(t, q)
			assert.Equal(t, tc.want, q.Amount.String())
			assert.True(t, q.Manual)
			assert.Equal(t, resolver.SourceManual, q.Source)
		})
	}
}

func TestParseManualFeeEmptyIsAbsent(t *testing.T) {
	q, err := resolver.ParseManualFee("   ", 18)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestParseManualFeeInvalid(t *testing.T) {
	for _, in := range []string{"abc", "-1", "0.0000000000000000001", "1,5", "0x10"} {
		t.Run(in, func(t *testing.T) {
			_, err := resolver.ParseManualFee(in, 18)
			var verr *resolver.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "fee", verr.Field)
		})
	}
}

func TestParseManualFeeOutOfRange(t *testing.T) {
	for _, in := range []string{
		"1e900000000",
		"1e-900000000",
		"1e60",
		"115792089237316195423570985008687907853269984665640564039458", // 2^256 wei / 1e18, rounded up
	} {
		t.Run(in, func(t *testing.T) {
			_, err := resolver.ParseManualFee(in, 18)
			var verr *resolver.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "out of range", verr.Reason)
		})
	}
}

func TestParseManualFeeUpperBound(t *testing.T) {
	q, err := resolver.ParseManualFee("1e59", 18)
	require.NoError(t, err)
	assert.Equal(t, 78, len(q.Amount.String()))

	q, err = resolver.ParseManualFee("0e900000000", 18)
	require.NoError(t, err)
	assert.Zero(t, q.Amount.Sign())
}

func TestActiveFee(t *testing.T) {
	discovered := &resolver.FeeQuote{Amount: big.NewInt(10), Source: resolver.SourceMintFee}
	manual := &resolver.FeeQuote{Amount: big.NewInt(0), Source: resolver.SourceManual, Manual: true}

	assert.Same(t, manual, resolver.ActiveFee(discovered, manual))
	assert.Same(t, discovered, resolver.ActiveFee(discovered, nil))
	assert.Nil(t, resolver.ActiveFee(nil, nil))
}

func TestFeeQuotePositive(t *testing.T) {
	var absent *resolver.FeeQuote
	assert.False(t, absent.Positive())
	assert.Nil(t, absent.Value())
	assert.False(t, (&resolver.FeeQuote{Amount: big.NewInt(0)}).Positive())
	assert.True(t, (&resolver.FeeQuote{Amount: big.NewInt(1)}).Positive())
}

func TestDiscoverPrecedence(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{
		"fee()":             big.NewInt(20),
		"mintPrice()":       big.NewInt(30),
		"publicMintPrice()": big.NewInt(40),
	}}
	d := resolver.NewFeeDiscovery(fees, 0, nil)

	q, err := d.Discover(context.Background(), common.HexToAddress(contractAddr))
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, resolver.SourceFee, q.Source)
	assert.Equal(t, int64(20), q.Amount.Int64())
	assert.Equal(t, len(resolver.FeeAccessors), fees.count())
}

func TestDiscoverSkipsZeroValues(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{
		"mintFee()":   big.NewInt(0),
		"mintPrice()": big.NewInt(7),
	}}
	q, err := resolver.NewFeeDiscovery(fees, 0, nil).Discover(context.Background(), common.HexToAddress(contractAddr))
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, resolver.SourceMintPrice, q.Source)
}

func TestDiscoverNothing(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"mintFee()": big.NewInt(0)}}
	q, err := resolver.NewFeeDiscovery(fees, 0, nil).Discover(context.Background(), common.HexToAddress(contractAddr))
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestDiscoverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := resolver.NewFeeDiscovery(&fakeFees{}, 0, nil).Discover(ctx, common.HexToAddress(contractAddr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFeeSourceSignature(t *testing.T) {
	assert.Equal(t, "publicMintPrice()", resolver.SourcePublicMintPrice.Signature())
}
