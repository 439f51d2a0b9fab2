package resolver_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVerifiedValueCandidate(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"mintFee()": wei("1000000000000000")}}
	sim := newSim(map[string]error{
		"mint(address,uint256)":     revert("wrong arguments"),
		"safeMint(address,uint256)": revert("wrong arguments"),
		"mint(address)+value":       nil,
	})
	e := resolver.NewEngine(fees, sim)

	res, err := e.Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)

	assert.Equal(t, resolver.RationaleVerified, res.Rationale)
	assert.Equal(t, "mint(address)", res.Candidate.Signature())
	assert.Equal(t, resolver.PaymentValue, res.Candidate.Payment)
	assert.Equal(t, wei("1000000000000000"), res.Candidate.Value)
	require.Len(t, res.Attempts, 3)
	assert.Equal(t, 3, sim.count(), "verification stops at the first success")
	assert.Len(t, res.Rejections(), 2)
	assert.Equal(t, resolver.SourceMintFee, res.Fee.Source)
}

func TestResolveVerifiedBeatsEarlierInconclusive(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"fee()": wei("5")}}
	sim := newSim(map[string]error{
		"mint(address,uint256)":     revert("insufficient payment"),
		"safeMint(address,uint256)": revert("Ownable: caller is not the owner"),
		"mint(address)+value":       revert("insufficient payment"),
		"safeMint(address)+value":   revert("insufficient payment"),
		"mint(address)":             nil,
	})
	res, err := resolver.NewEngine(fees, sim).Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)

	assert.Equal(t, resolver.RationaleVerified, res.Rationale)
	assert.Equal(t, "mint(address)", res.Candidate.Signature())
	assert.Equal(t, resolver.PaymentNone, res.Candidate.Payment)
	require.Len(t, res.Attempts, 5)
	assert.Equal(t, resolver.Inconclusive, res.Attempts[1].Outcome)
}

func TestResolveInconclusiveBestGuess(t *testing.T) {
	fees := &fakeFees{}
	sim := newSim(map[string]error{
		"mint(address)":     revert("invalid recipient"),
		"safeMint(address)": revert("AccessControl: account is missing role"),
	})
	res, err := resolver.NewEngine(fees, sim).Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)

	assert.Equal(t, resolver.RationaleBestGuess, res.Rationale)
	assert.Equal(t, "safeMint(address)", res.Candidate.Signature())
	assert.Len(t, res.Attempts, 2)
}

func TestResolveFirstInconclusiveWins(t *testing.T) {
	sim := newSim(map[string]error{
		"mint(address)":     revert("Ownable: caller is not the owner"),
		"safeMint(address)": revert("Ownable: caller is not the owner"),
	})
	res, err := resolver.NewEngine(nil, sim).Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)
	assert.Equal(t, resolver.RationaleBestGuess, res.Rationale)
	assert.Equal(t, "mint(address)", res.Candidate.Signature())
}

func TestResolveAllTransportFailuresFallBack(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"mintPrice()": wei("700")}}
	sim := newSim(nil)
	sim.hook = func(context.Context, resolver.Invocation) error { return errTransport }

	res, err := resolver.NewEngine(fees, sim).Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)

	assert.Equal(t, resolver.RationaleFallback, res.Rationale)
	assert.Equal(t, "mint(address,uint256)", res.Candidate.Signature())
	assert.Equal(t, resolver.PaymentArgument, res.Candidate.Payment)
	assert.Equal(t, []any{common.HexToAddress(recipientAddr), wei("700")}, res.Candidate.Args)
	assert.Len(t, res.Attempts, 6)
	assert.True(t, res.SimulationUnavailable())
	for _, a := range res.Attempts {
		assert.Equal(t, resolver.Rejected, a.Outcome)
		assert.Contains(t, a.Reason, "unavailable")
	}
}

func TestResolveAllRejectedNoFeeFallsBackToPlainMint(t *testing.T) {
	res, err := resolver.NewEngine(nil, newSim(nil)).Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)

	assert.Equal(t, resolver.RationaleFallback, res.Rationale)
	assert.Equal(t, "mint(address)", res.Candidate.Signature())
	assert.Nil(t, res.Candidate.Value)
	assert.False(t, res.SimulationUnavailable())
}

func TestResolveWithoutSimulator(t *testing.T) {
	res, err := resolver.NewEngine(nil, nil).Resolve(context.Background(), mintRequest("0.01"))
	require.NoError(t, err)

	assert.Equal(t, resolver.RationaleFallback, res.Rationale)
	assert.Equal(t, "mint(address,uint256)", res.Candidate.Signature())
	assert.Empty(t, res.Attempts)
	assert.Len(t, res.Candidates, 6)
}

func TestResolveManualFeeTakesPrecedence(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"mintFee()": wei("10000000000000000")}}
	sim := newSim(map[string]error{"mint(address,uint256)": nil})

	res, err := resolver.NewEngine(fees, sim).Resolve(context.Background(), mintRequest("0.05"))
	require.NoError(t, err)

	assert.True(t, res.Fee.Manual)
	assert.Equal(t, wei("50000000000000000"), res.Fee.Amount)
	assert.Equal(t, wei("50000000000000000"), res.Candidate.Args[1])
	assert.Zero(t, fees.count(), "discovery is skipped when a manual fee is supplied")
}

func TestResolveManualZeroFeeIsPresent(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"mintFee()": wei("42")}}
	res, err := resolver.NewEngine(fees, newSim(nil)).Resolve(context.Background(), mintRequest("0"))
	require.NoError(t, err)

	require.NotNil(t, res.Fee)
	assert.Equal(t, int64(0), res.Fee.Amount.Int64())
	assert.Len(t, res.Candidates, 2)
}

func TestResolveInvalidManualFee(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"mintFee()": wei("1")}}
	sim := newSim(nil)

	_, err := resolver.NewEngine(fees, sim).Resolve(context.Background(), mintRequest("abc"))

	var verr *resolver.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "fee", verr.Field)
	assert.Zero(t, fees.count())
	assert.Zero(t, sim.count())
}

func TestResolveInvalidAddresses(t *testing.T) {
	cases := []struct {
		name  string
		req   resolver.Request
		field string
	}{
		{"bad contract", resolver.Request{Intent: resolver.MintTo(recipientAddr), Contract: "0x123", Caller: callerAddr}, "contract"},
		{"missing caller", resolver.Request{Intent: resolver.MintTo(recipientAddr), Contract: contractAddr}, "caller"},
		{"bad recipient", resolver.Request{Intent: resolver.MintTo("vitalik.eth"), Contract: contractAddr, Caller: callerAddr}, "recipient"},
		{"zero recipient", resolver.Request{Intent: resolver.MintTo("0x0000000000000000000000000000000000000000"), Contract: contractAddr, Caller: callerAddr}, "recipient"},
		{"unknown intent", resolver.Request{Intent: resolver.Intent{Kind: "burn", Recipient: recipientAddr}, Contract: contractAddr, Caller: callerAddr}, "intent"},
		{"long uri", resolver.Request{Intent: resolver.MintTo(recipientAddr).WithTokenURI(strings.Repeat("x", 2049)), Contract: contractAddr, Caller: callerAddr}, "uri"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sim := newSim(nil)
			_, err := resolver.NewEngine(nil, sim).Resolve(context.Background(), tc.req)
			var verr *resolver.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, sim.count())
		})
	}
}

func TestResolveTokenURIForm(t *testing.T) {
	sim := newSim(map[string]error{"safeMint(address,string)": nil})
	req := mintRequest("")
	req.Intent = req.Intent.WithTokenURI("ipfs://bafy/1.json")

	res, err := resolver.NewEngine(nil, sim).Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, resolver.RationaleVerified, res.Rationale)
	assert.Equal(t, "safeMint(address,string)", res.Candidate.Signature())
	assert.Equal(t, []any{common.HexToAddress(recipientAddr), "ipfs://bafy/1.json"}, res.Invocation().Args)
	assert.Equal(t, 4, sim.count(), "uri forms come after the standard ones")
}

func TestResolveEndToEndSafeMintWithValue(t *testing.T) {
	// mintFee() is missing, fee() answers 0.001 ether.
	fees := &fakeFees{values: map[string]*big.Int{"fee()": wei("1000000000000000")}}
	sim := newSim(map[string]error{
		"safeMint(address)+value": nil,
	})
	res, err := resolver.NewEngine(fees, sim).Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)

	assert.Equal(t, resolver.SourceFee, res.Fee.Source)
	assert.Equal(t, resolver.RationaleVerified, res.Rationale)
	inv := res.Invocation()
	assert.Equal(t, "safeMint(address)", inv.Signature)
	assert.Equal(t, wei("1000000000000000"), inv.Value)
	assert.Equal(t, common.HexToAddress(contractAddr), inv.Contract)
	assert.Equal(t, common.HexToAddress(callerAddr), inv.From)
	assert.Equal(t, []any{common.HexToAddress(recipientAddr)}, inv.Args)
	assert.Len(t, res.Attempts, 4)
}

func TestResolveIsDeterministic(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"publicMintPrice()": wei("9")}}
	sim := newSim(map[string]error{"safeMint(address)": revert("Unauthorized")})
	e := resolver.NewEngine(fees, sim)

	first, err := e.Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)
	second, err := e.Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)

	assert.Equal(t, first.Candidate.Key(), second.Candidate.Key())
	assert.Equal(t, first.Rationale, second.Rationale)
	assert.Equal(t, first.Attempts, second.Attempts)
}

func TestResolveSimulationTimeout(t *testing.T) {
	sim := newSim(nil)
	sim.hook = func(ctx context.Context, _ resolver.Invocation) error {
		<-ctx.Done()
		return ctx.Err()
	}
	e := resolver.NewEngine(nil, sim, resolver.WithSimulationTimeout(10*time.Millisecond))

	res, err := e.Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)
	assert.Equal(t, resolver.RationaleFallback, res.Rationale)
	require.Len(t, res.Attempts, 2)
	assert.Equal(t, resolver.ReasonTimeout, res.Attempts[0].Reason)
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sim := newSim(nil)
	sim.hook = func(context.Context, resolver.Invocation) error {
		cancel()
		return context.Canceled
	}
	_, err := resolver.NewEngine(nil, sim).Resolve(ctx, mintRequest(""))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, sim.count())
}

func TestResolveLooseMatchingTreatsAnyRevertAsInconclusive(t *testing.T) {
	sim := newSim(map[string]error{
		"mint(address)":     revert("sale not active"),
		"safeMint(address)": revert("sale not active"),
	})
	e := resolver.NewEngine(nil, sim, resolver.WithClassifier(resolver.NewClassifier(nil, true)))

	res, err := e.Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)
	assert.Equal(t, resolver.RationaleBestGuess, res.Rationale)
	assert.Equal(t, "mint(address)", res.Candidate.Signature())
}

func TestResolveCandidateSingle(t *testing.T) {
	c := resolver.Candidate{
		Function: "transfer",
		Params:   []string{"address", "uint256"},
		Args:     []any{common.HexToAddress(recipientAddr), big.NewInt(1)},
		Payment:  resolver.PaymentNone,
	}
	sim := newSim(map[string]error{"transfer(address,uint256)": revert("ERC20: transfer amount exceeds balance")})
	e := resolver.NewEngine(nil, sim)

	res, err := e.ResolveCandidate(context.Background(), c, common.HexToAddress(contractAddr), common.HexToAddress(callerAddr))
	require.NoError(t, err)
	assert.Equal(t, resolver.RationaleFallback, res.Rationale)
	assert.False(t, res.SimulationUnavailable())
	assert.Equal(t, c.Key(), res.Candidate.Key())
	require.Len(t, res.Rejections(), 1)
	assert.Contains(t, res.Rejections()[0].Reason, "exceeds balance")
}

func TestFeeOnly(t *testing.T) {
	fees := &fakeFees{values: map[string]*big.Int{"mintFee()": wei("3")}}
	q, err := resolver.NewEngine(fees, nil).Fee(context.Background(), mintRequest(""))
	require.NoError(t, err)
	assert.Equal(t, wei("3"), q.Amount)
}

func TestResolveWithCustomPolicyAndLogger(t *testing.T) {
	sim := newSim(map[string]error{"publicMint(address)": nil})
	var buf bytes.Buffer
	logger := log.NewLogger(log.NewTerminalHandlerWithLevel(&buf, log.LevelDebug, false))

	e := resolver.NewEngine(nil, sim,
		resolver.WithPolicy(resolver.Policy{Functions: []string{"publicMint"}, FeeModes: []resolver.PaymentMode{resolver.PaymentValue}}),
		resolver.WithLogger(logger),
	)
	res, err := e.Resolve(context.Background(), mintRequest(""))
	require.NoError(t, err)

	assert.Equal(t, resolver.RationaleVerified, res.Rationale)
	assert.Equal(t, "publicMint(address)", res.Candidate.Signature())
	assert.Contains(t, buf.String(), "Resolved invocation")
}
