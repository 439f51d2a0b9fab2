package resolver

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// FeeSource names where a FeeQuote came from.
type FeeSource string

const (
	SourceMintFee         FeeSource = "mintFee"
	SourceFee             FeeSource = "fee"
	SourceMintPrice       FeeSource = "mintPrice"
	SourcePublicMintPrice FeeSource = "publicMintPrice"
	SourceManual          FeeSource = "manual"
)

// FeeAccessors lists the read-only accessors probed by discovery, in
// precedence order.
var FeeAccessors = []FeeSource{SourceMintFee, SourceFee, SourceMintPrice, SourcePublicMintPrice}

// Signature returns the accessor's call signature.
func (s FeeSource) Signature() string { return string(s) + "()" }

// FeeQuote is a fee amount in base units. A nil *FeeQuote means absent,
// which is distinct from a present zero amount.
type FeeQuote struct {
	Amount *big.Int
	Source FeeSource
	Manual bool
}

// Positive reports whether q is present with an amount above zero.
func (q *FeeQuote) Positive() bool {
	return q != nil && q.Amount != nil && q.Amount.Sign() > 0
}

// Value returns a copy of the amount, or nil when q is absent.
func (q *FeeQuote) Value() *big.Int {
	if q == nil || q.Amount == nil {
		return nil
	}
	return new(big.Int).Set(q.Amount)
}

// ParseManualFee parses a user-entered fee expressed in display units with
// the given decimal precision. An empty string means no override. Anything
// that is not a non-negative finite decimal is a *ValidationError.
func ParseManualFee(s string, decimals int32) (*FeeQuote, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &ValidationError{Field: "fee", Value: s, Reason: "not a decimal number"}
	}
	if d.IsNegative() {
		return nil, &ValidationError{Field: "fee", Value: s, Reason: "must not be negative"}
	}
	if d.IsZero() {
		return &FeeQuote{Amount: new(big.Int), Source: SourceManual, Manual: true}, nil
	}
	// Bounded before Shift so an input like 1e900000000 never materialises.
	if exp := d.Exponent(); exp > maxFeeExponent || exp < -maxFeeExponent {
		return nil, &ValidationError{Field: "fee", Value: s, Reason: "out of range"}
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, &ValidationError{Field: "fee", Value: s, Reason: "too many decimal places"}
	}
	amount := scaled.BigInt()
	if amount.BitLen() > 256 {
		return nil, &ValidationError{Field: "fee", Value: s, Reason: "out of range"}
	}
	return &FeeQuote{Amount: amount, Source: SourceManual, Manual: true}, nil
}

// maxFeeExponent bounds the decimal exponent of a manual fee. Any uint256
// has at most 78 digits.
const maxFeeExponent = 80

// ActiveFee applies the override rule: a manual quote always wins.
func ActiveFee(discovered, manual *FeeQuote) *FeeQuote {
	if manual != nil {
		return manual
	}
	return discovered
}

// FeeDiscovery probes the fixed accessor set on a target contract.
type FeeDiscovery struct {
	reader  FeeReader
	timeout time.Duration
	logger  log.Logger
}

// NewFeeDiscovery creates a FeeDiscovery reading through r. A zero timeout
// leaves each query bounded only by the caller's context.
func NewFeeDiscovery(r FeeReader, timeout time.Duration, logger log.Logger) *FeeDiscovery {
	if logger == nil {
		logger = log.Root()
	}
	return &FeeDiscovery{reader: r, timeout: timeout, logger: logger}
}

// Discover queries every accessor concurrently and returns the first one,
// in FeeAccessors order, that answered with a non-zero amount. Failing
// accessors are logged and skipped. The result is nil when none answered.
// The only error returned is the context's, when it is cancelled.
func (d *FeeDiscovery) Discover(ctx context.Context, contract common.Address) (*FeeQuote, error) {
	if d == nil || d.reader == nil {
		return nil, nil
	}
	amounts := make([]*big.Int, len(FeeAccessors))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range FeeAccessors {
		g.Go(func() error {
			qctx := gctx
			if d.timeout > 0 {
				var cancel context.CancelFunc
				qctx, cancel = context.WithTimeout(gctx, d.timeout)
				defer cancel()
			}
			v, err := d.reader.ReadUint(qctx, contract, src.Signature())
			if err != nil {
				d.logger.Debug("Fee accessor unavailable", "contract", contract, "accessor", src, "err", err)
				return nil
			}
			d.logger.Debug("Fee accessor answered", "contract", contract, "accessor", src, "amount", v)
			amounts[i] = v
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, v := range amounts {
		if v != nil && v.Sign() > 0 {
			return &FeeQuote{Amount: new(big.Int).Set(v), Source: FeeAccessors[i]}, nil
		}
	}
	return nil, nil
}
