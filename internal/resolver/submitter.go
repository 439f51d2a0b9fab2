package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// SubmissionStatus is the terminal state of one Execute call.
type SubmissionStatus string

const (
	StatusSubmitted    SubmissionStatus = "submitted"
	StatusUserRejected SubmissionStatus = "user-rejected"
	StatusFailed       SubmissionStatus = "submission-failed"
)

// Submission reports what happened to a resolved invocation.
type Submission struct {
	Status SubmissionStatus
	TxHash common.Hash
	Reason string
}

// OK reports whether the transaction was handed to the network.
func (s Submission) OK() bool { return s.Status == StatusSubmitted }

// ApproveFunc is asked once before submitting. Returning false declines.
type ApproveFunc func(*Resolution) bool

// Submitter sends a resolved invocation exactly once.
type Submitter struct {
	broadcaster Broadcaster
	approve     ApproveFunc
	tracker     *Tracker
	logger      log.Logger
}

// NewSubmitter creates a Submitter. approve and tracker may be nil. An idle
// or finished tracker is walked to Resolved on Execute, since the
// resolution passed in was produced elsewhere.
func NewSubmitter(b Broadcaster, approve ApproveFunc, tracker *Tracker, logger log.Logger) *Submitter {
	if logger == nil {
		logger = log.Root()
	}
	return &Submitter{broadcaster: b, approve: approve, tracker: tracker, logger: logger}
}

// Execute submits res. There is no retry and no fallback to another
// candidate; the first failure is final.
func (s *Submitter) Execute(ctx context.Context, res *Resolution) Submission {
	if res == nil {
		return s.finish(Submission{Status: StatusFailed, Reason: ErrNilResolution.Error()})
	}
	if s.tracker != nil {
		if err := s.enter(); err != nil {
			return Submission{Status: StatusFailed, Reason: err.Error()}
		}
	}
	if s.approve != nil && !s.approve(res) {
		return s.finish(Submission{Status: StatusUserRejected, Reason: ErrUserRejected.Error()})
	}
	if s.broadcaster == nil {
		return s.finish(Submission{Status: StatusFailed, Reason: "no signer configured"})
	}

	hash, err := s.broadcaster.Submit(ctx, res.Invocation())
	switch {
	case err == nil:
		s.logger.Info("Transaction submitted", "hash", hash, "candidate", res.Candidate.String())
		return s.finish(Submission{Status: StatusSubmitted, TxHash: hash})
	case isUserRejection(err):
		return s.finish(Submission{Status: StatusUserRejected, Reason: ErrUserRejected.Error()})
	default:
		s.logger.Warn("Submission failed", "candidate", res.Candidate.String(), "err", err)
		return s.finish(Submission{Status: StatusFailed, Reason: shortReason(err.Error())})
	}
}

// enter moves the tracker to Submitting. A tracker mid-run is busy.
func (s *Submitter) enter() error {
	switch st := s.tracker.State(); {
	case st == StateSimulating || st == StateSubmitting:
		return ErrBusy
	case st == StateIdle || st.Terminal():
		if err := s.tracker.Begin(); err != nil {
			return err
		}
		if err := s.tracker.To(StateResolved); err != nil {
			return err
		}
	}
	return s.tracker.To(StateSubmitting)
}

func (s *Submitter) finish(sub Submission) Submission {
	if s.tracker != nil {
		next := StateFailed
		if sub.OK() {
			next = StateSubmitted
		}
		if s.tracker.State() == StateSubmitting {
			_ = s.tracker.To(next)
		}
	}
	return sub
}

func isUserRejection(err error) bool {
	if errors.Is(err, ErrUserRejected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied")
}
