package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Rationale explains why a Resolution picked its candidate.
type Rationale string

const (
	RationaleVerified  Rationale = "verified"
	RationaleBestGuess Rationale = "inconclusive-best-guess"
	RationaleFallback  Rationale = "fallback-no-simulation-available"
)

// Resolution is the outcome of Resolve: exactly one invocation to submit,
// with the evidence that led to it.
type Resolution struct {
	Intent     Intent
	Contract   common.Address
	Caller     common.Address
	Candidate  Candidate
	Rationale  Rationale
	Fee        *FeeQuote
	Candidates []Candidate
	// Attempts holds every dry-run performed, in candidate order.
	Attempts []Verification
}

// Invocation returns the chosen candidate bound to the contract and caller.
func (r *Resolution) Invocation() Invocation {
	return r.Candidate.Invocation(r.Contract, r.Caller)
}

// Rejections returns the attempts that did not verify.
func (r *Resolution) Rejections() []Verification {
	return lo.Filter(r.Attempts, func(v Verification, _ int) bool {
		return v.Outcome != Verified
	})
}

// SimulationUnavailable reports whether every attempt failed for lack of a
// working simulation rather than because the contract reverted.
func (r *Resolution) SimulationUnavailable() bool {
	return len(r.Attempts) == 0 || lo.EveryBy(r.Attempts, func(v Verification) bool { return v.Unavailable })
}

// Engine turns an intent into a Resolution.
type Engine struct {
	discovery *FeeDiscovery
	verifier  *Verifier
	policy    Policy
	decimals  int32
	validate  *validator.Validate
	logger    log.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	classifier  *Classifier
	policy      Policy
	simTimeout  time.Duration
	feeTimeout  time.Duration
	feeDecimals int32
	logger      log.Logger
}

// WithClassifier sets the inconclusive-revert classifier.
func WithClassifier(c *Classifier) Option { return func(o *engineOptions) { o.classifier = c } }

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p Policy) Option { return func(o *engineOptions) { o.policy = p } }

// WithSimulationTimeout bounds each dry-run.
func WithSimulationTimeout(d time.Duration) Option {
	return func(o *engineOptions) { o.simTimeout = d }
}

// WithFeeTimeout bounds each fee accessor query.
func WithFeeTimeout(d time.Duration) Option { return func(o *engineOptions) { o.feeTimeout = d } }

// WithFeeDecimals sets the precision manual fees are entered in.
func WithFeeDecimals(n int32) Option { return func(o *engineOptions) { o.feeDecimals = n } }

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option { return func(o *engineOptions) { o.logger = l } }

// NewEngine creates an Engine. fees may be nil, in which case only manual
// fees are used. sim may be nil, in which case every resolution falls back.
func NewEngine(fees FeeReader, sim SimulationBackend, opts ...Option) *Engine {
	o := engineOptions{policy: DefaultPolicy, feeDecimals: 18, logger: log.Root()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		discovery: NewFeeDiscovery(fees, o.feeTimeout, o.logger),
		verifier:  NewVerifier(sim, o.classifier, o.simTimeout, o.logger),
		policy:    o.policy,
		decimals:  o.feeDecimals,
		validate:  validator.New(),
		logger:    o.logger,
	}
}

// Fee returns the active fee for req without generating candidates.
func (e *Engine) Fee(ctx context.Context, req Request) (*FeeQuote, error) {
	if err := e.check(req); err != nil {
		return nil, err
	}
	return e.activeFee(ctx, req)
}

// Resolve discovers the fee, generates candidates, dry-runs them in order
// and selects one. It fails only for invalid input, an empty candidate
// list, or cancellation of ctx.
func (e *Engine) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	if err := e.check(req); err != nil {
		return nil, err
	}
	fee, err := e.activeFee(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates := e.policy.Generate(req.Intent, fee)
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidateList
	}
	res := &Resolution{
		Intent:     req.Intent,
		Contract:   common.HexToAddress(req.Contract),
		Caller:     common.HexToAddress(req.Caller),
		Fee:        fee,
		Candidates: candidates,
	}
	if err := e.choose(ctx, res, e.policy.Fallback(req.Intent, fee)); err != nil {
		return nil, err
	}
	e.logger.Debug("Resolved invocation", "contract", res.Contract, "candidate", res.Candidate.String(),
		"rationale", res.Rationale, "attempts", len(res.Attempts))
	return res, nil
}

// ResolveCandidate dry-runs a single fixed candidate and wraps it in a
// Resolution. A rejected candidate is still returned with
// RationaleFallback so the caller can decide whether to proceed.
func (e *Engine) ResolveCandidate(ctx context.Context, c Candidate, contract, caller common.Address) (*Resolution, error) {
	res := &Resolution{Contract: contract, Caller: caller, Candidates: []Candidate{c}}
	if err := e.choose(ctx, res, c); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) choose(ctx context.Context, res *Resolution, fallback Candidate) error {
	if !e.verifier.Available() {
		e.logger.Warn("Simulation unavailable, using default invocation", "candidate", fallback.String())
		res.Candidate, res.Rationale = fallback, RationaleFallback
		return nil
	}
	for _, c := range res.Candidates {
		v, err := e.verifier.Verify(ctx, c, res.Contract, res.Caller)
		if err != nil {
			return err
		}
		res.Attempts = append(res.Attempts, v)
		if v.Outcome == Verified {
			res.Candidate, res.Rationale = c, RationaleVerified
			return nil
		}
	}
	if best, ok := lo.Find(res.Attempts, func(v Verification) bool { return v.Outcome == Inconclusive }); ok {
		res.Candidate, res.Rationale = best.Candidate, RationaleBestGuess
		return nil
	}
	res.Candidate, res.Rationale = fallback, RationaleFallback
	return nil
}

func (e *Engine) activeFee(ctx context.Context, req Request) (*FeeQuote, error) {
	manual, err := ParseManualFee(req.FeeOverride, e.decimals)
	if err != nil {
		return nil, err
	}
	if manual != nil {
		return manual, nil
	}
	return e.discovery.Discover(ctx, common.HexToAddress(req.Contract))
}

func (e *Engine) check(req Request) error {
	err := e.validate.Struct(req)
	if err == nil {
		if req.Intent.recipient() == (common.Address{}) {
			return &ValidationError{Field: "recipient", Value: req.Intent.Recipient, Reason: "zero address"}
		}
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		val, _ := fe.Value().(string)
		return &ValidationError{Field: fieldName(fe.Namespace()), Value: val, Reason: tagReason(fe.Tag())}
	}
	return &ValidationError{Field: "request", Reason: err.Error()}
}

func fieldName(ns string) string {
	switch ns {
	case "Request.Intent.Recipient":
		return "recipient"
	case "Request.Intent.Kind":
		return "intent"
	case "Request.Intent.TokenURI":
		return "uri"
	case "Request.Contract":
		return "contract"
	case "Request.Caller":
		return "caller"
	}
	return ns
}

func tagReason(tag string) string {
	switch tag {
	case "required":
		return "missing"
	case "eth_addr":
		return "not a hex address"
	case "oneof":
		return "unsupported"
	case "max":
		return "too long"
	}
	return tag
}
