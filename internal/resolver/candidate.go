package resolver

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// PaymentMode says how the fee travels with an invocation.
type PaymentMode string

const (
	// PaymentArgument passes the fee as the trailing uint256 argument.
	PaymentArgument PaymentMode = "argument"
	// PaymentValue attaches the fee as the transaction's native value.
	PaymentValue PaymentMode = "value"
	// PaymentNone sends no fee.
	PaymentNone PaymentMode = "none"
)

// Candidate is one concrete way of invoking the contract to satisfy an
// intent.
type Candidate struct {
	Function string
	Params   []string
	Args     []any
	Payment  PaymentMode
	Value    *big.Int
}

// Signature returns the canonical function signature, e.g.
// "mint(address,uint256)".
func (c Candidate) Signature() string {
	return c.Function + "(" + strings.Join(c.Params, ",") + ")"
}

// Key identifies a candidate by function, argument shape and payment mode.
// Two candidates with the same key are the same candidate.
func (c Candidate) Key() string {
	return c.Signature() + "/" + string(c.Payment)
}

func (c Candidate) String() string {
	switch c.Payment {
	case PaymentArgument:
		return c.Signature() + " [fee as argument]"
	case PaymentValue:
		return fmt.Sprintf("%s [value %s]", c.Signature(), c.Value)
	default:
		return c.Signature()
	}
}

// Invocation binds c to a contract and caller.
func (c Candidate) Invocation(contract, from common.Address) Invocation {
	inv := Invocation{
		Contract:  contract,
		From:      from,
		Signature: c.Signature(),
		Args:      append([]any(nil), c.Args...),
	}
	if c.Value != nil {
		inv.Value = new(big.Int).Set(c.Value)
	}
	return inv
}

// Policy orders the candidate space. Function names are tried in order
// within each payment mode; fee-bearing modes come before PaymentNone.
type Policy struct {
	Functions []string
	// FeeModes lists the fee-bearing payment modes in the order tried.
	FeeModes []PaymentMode
}

// DefaultPolicy covers the common mint entry points.
var DefaultPolicy = Policy{
	Functions: []string{"mint", "safeMint"},
	FeeModes:  []PaymentMode{PaymentArgument, PaymentValue},
}

// Generate returns the ordered candidate list for intent. Fee-bearing
// candidates are included only when fee is present and positive. A token
// URI appends fn(address,string) forms last. The order is deterministic
// for the same inputs.
func (p Policy) Generate(intent Intent, fee *FeeQuote) []Candidate {
	if intent.Kind != IntentMint || len(p.Functions) == 0 {
		return nil
	}
	to := intent.recipient()
	var out []Candidate
	if fee.Positive() {
		for _, mode := range p.FeeModes {
			for _, fn := range p.Functions {
				out = append(out, mintCandidate(fn, to, fee.Value(), mode))
			}
		}
	}
	for _, fn := range p.Functions {
		out = append(out, mintCandidate(fn, to, nil, PaymentNone))
	}
	if intent.TokenURI != "" {
		for _, fn := range p.Functions {
			out = append(out, Candidate{
				Function: fn,
				Params:   []string{"address", "string"},
				Args:     []any{to, intent.TokenURI},
				Payment:  PaymentNone,
			})
		}
	}
	return out
}

// Fallback returns the invocation used when nothing could be verified:
// the first function with the fee as an argument if a positive fee is
// known, otherwise the first function with the recipient only.
func (p Policy) Fallback(intent Intent, fee *FeeQuote) Candidate {
	fn := "mint"
	if len(p.Functions) > 0 {
		fn = p.Functions[0]
	}
	if fee.Positive() {
		return mintCandidate(fn, intent.recipient(), fee.Value(), PaymentArgument)
	}
	return mintCandidate(fn, intent.recipient(), nil, PaymentNone)
}

func mintCandidate(fn string, to common.Address, fee *big.Int, mode PaymentMode) Candidate {
	c := Candidate{Function: fn, Params: []string{"address"}, Args: []any{to}, Payment: mode}
	switch mode {
	case PaymentArgument:
		c.Params = append(c.Params, "uint256")
		c.Args = append(c.Args, fee)
	case PaymentValue:
		c.Value = fee
	}
	return c
}
