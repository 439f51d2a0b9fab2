package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Outcome is the result of dry-running one candidate.
type Outcome string

const (
	Verified     Outcome = "verified"
	Rejected     Outcome = "rejected"
	Inconclusive Outcome = "inconclusive"
)

// Reasons recorded for rejections that did not come from the contract.
const (
	ReasonTimeout     = "timeout"
	reasonUnavailable = "unavailable"
	maxReasonLen      = 160
)

// DefaultInconclusivePatterns match revert reasons that suggest the caller
// lacks a permission the real sender may hold. Matching is
// case-insensitive substring.
var DefaultInconclusivePatterns = []string{
	"ownable",
	"not the owner",
	"not owner",
	"caller is not",
	"unauthorized",
	"not authorized",
	"accesscontrol",
	"access denied",
	"missing role",
	"only owner",
	"onlyowner",
	"not allowed",
	"not whitelisted",
	"not allowlisted",
}

// Verification records the dry-run of one candidate.
type Verification struct {
	Candidate Candidate
	Outcome   Outcome
	Reason    string
	// Unavailable is set when the dry-run could not be performed at all.
	Unavailable bool
}

// Classifier decides which revert reasons are inconclusive.
type Classifier struct {
	patterns []string
	loose    bool
}

// NewClassifier builds a Classifier. With loose set every revert is
// inconclusive. Nil patterns selects DefaultInconclusivePatterns.
func NewClassifier(patterns []string, loose bool) *Classifier {
	if patterns == nil {
		patterns = DefaultInconclusivePatterns
	}
	c := &Classifier{loose: loose}
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			c.patterns = append(c.patterns, p)
		}
	}
	return c
}

// Inconclusive reports whether a revert with the given reason should be
// treated as inconclusive rather than a rejection.
func (c *Classifier) Inconclusive(reason string) bool {
	if c == nil {
		return false
	}
	if c.loose {
		return true
	}
	r := strings.ToLower(reason)
	for _, p := range c.patterns {
		if strings.Contains(r, p) {
			return true
		}
	}
	return false
}

// Verifier dry-runs candidates against a SimulationBackend.
type Verifier struct {
	backend    SimulationBackend
	classifier *Classifier
	timeout    time.Duration
	logger     log.Logger
}

// NewVerifier creates a Verifier. A nil classifier uses the defaults; a
// zero timeout bounds each dry-run only by the caller's context.
func NewVerifier(backend SimulationBackend, classifier *Classifier, timeout time.Duration, logger log.Logger) *Verifier {
	if classifier == nil {
		classifier = NewClassifier(nil, false)
	}
	if logger == nil {
		logger = log.Root()
	}
	return &Verifier{backend: backend, classifier: classifier, timeout: timeout, logger: logger}
}

// Available reports whether the verifier has a backend to simulate on.
func (v *Verifier) Available() bool { return v != nil && v.backend != nil }

// Verify dry-runs c as caller against contract. The returned error is
// non-nil only if ctx itself was cancelled; every other failure becomes a
// Rejected verification.
func (v *Verifier) Verify(ctx context.Context, c Candidate, contract, caller common.Address) (Verification, error) {
	res := Verification{Candidate: c}
	if !v.Available() {
		res.Outcome, res.Reason, res.Unavailable = Rejected, reasonUnavailable, true
		return res, nil
	}

	callCtx := ctx
	if v.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	err := v.backend.Simulate(callCtx, c.Invocation(contract, caller))

	switch {
	case err == nil:
		res.Outcome = Verified
	case ctx.Err() != nil:
		return res, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil:
		res.Outcome, res.Reason = Rejected, ReasonTimeout
	default:
		var rev *RevertError
		if errors.As(err, &rev) {
			res.Reason = shortReason(rev.Error())
			if v.classifier.Inconclusive(rev.Reason) {
				res.Outcome = Inconclusive
			} else {
				res.Outcome = Rejected
			}
		} else {
			res.Outcome, res.Unavailable = Rejected, true
			res.Reason = shortReason(reasonUnavailable + ": " + err.Error())
		}
	}
	v.logger.Debug("Dry-run finished", "candidate", c.String(), "outcome", res.Outcome, "reason", res.Reason)
	return res, nil
}

func shortReason(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxReasonLen {
		s = s[:maxReasonLen-3] + "..."
	}
	return s
}
