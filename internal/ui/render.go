package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/resolver"
)

// FeeLine formats a fee quote with its source.
func FeeLine(q *resolver.FeeQuote, symbol string) string {
	if q == nil {
		return "none found"
	}
	amount := chain.FormatUnits(q.Amount, 18) + " " + symbol
	if q.Manual {
		return amount + " (manual)"
	}
	return amount + " (" + q.Source.Signature() + ")"
}

// RationaleLabel describes why a candidate was picked.
func RationaleLabel(r resolver.Rationale) string {
	switch r {
	case resolver.RationaleVerified:
		return StyleSuccess.Render("verified by simulation")
	case resolver.RationaleBestGuess:
		return StyleWarning.Render("best guess (simulation inconclusive)")
	default:
		return StyleError.Render("fallback (nothing could be verified)")
	}
}

// OutcomeLabel renders a dry-run outcome.
func OutcomeLabel(o resolver.Outcome) string {
	switch o {
	case resolver.Verified:
		return "✓ verified"
	case resolver.Inconclusive:
		return "? inconclusive"
	default:
		return "✗ rejected"
	}
}

// InvocationLine describes a candidate the way it will be sent.
func InvocationLine(c resolver.Candidate, symbol string) string {
	switch c.Payment {
	case resolver.PaymentValue:
		return fmt.Sprintf("%s + %s %s", c.Signature(), chain.FormatUnits(c.Value, 18), symbol)
	case resolver.PaymentArgument:
		return c.Signature() + "  (fee as argument)"
	default:
		return c.Signature()
	}
}

// RenderResolution shows the chosen invocation and the evidence behind it.
func RenderResolution(res *resolver.Resolution, symbol string) string {
	pairs := [][2]string{{"Contract", res.Contract.Hex()}}
	if res.Intent.Recipient != "" {
		pairs = append(pairs, [2]string{"Recipient", res.Intent.Recipient})
	}
	if res.Intent.TokenURI != "" {
		pairs = append(pairs, [2]string{"Token URI", res.Intent.TokenURI})
	}
	if res.Intent.Kind == resolver.IntentMint {
		pairs = append(pairs, [2]string{"Fee", FeeLine(res.Fee, symbol)})
	}
	pairs = append(pairs,
		[2]string{"Invocation", InvocationLine(res.Candidate, symbol)},
		[2]string{"Decision", RationaleLabel(res.Rationale)},
	)

	var sb strings.Builder
	sb.WriteString(KeyValueBlock("Resolution", pairs))
	sb.WriteString("\n")
	if len(res.Attempts) > 0 {
		sb.WriteString(AttemptsTable(res.Attempts, symbol).Render())
	}
	if res.Rationale == resolver.RationaleFallback && res.SimulationUnavailable() {
		sb.WriteString(Warn("Simulation was unavailable; the default invocation will be sent unverified.") + "\n")
	}
	return sb.String()
}

// AttemptsTable lists every dry-run in candidate order.
func AttemptsTable(attempts []resolver.Verification, symbol string) *Table {
	t := NewTable([]Column{
		{Title: "#", Width: 3, Align: AlignRight},
		{Title: "Candidate", Width: 44},
		{Title: "Outcome", Width: 15},
		{Title: "Reason", Width: 50},
	})
	for i, a := range attempts {
		if a.Outcome == resolver.Verified {
			t.SelIdx = i
		}
		t.AddRow(Row{
			strconv.Itoa(i + 1),
			InvocationLine(a.Candidate, symbol),
			OutcomeLabel(a.Outcome),
			a.Reason,
		})
	}
	return t
}

// RenderSubmission reports what happened to a submitted transaction.
// explorerURL may be empty.
func RenderSubmission(sub resolver.Submission, explorerURL string) string {
	switch sub.Status {
	case resolver.StatusSubmitted:
		msg := Success("Transaction submitted: " + Addr(sub.TxHash.Hex()))
		if explorerURL != "" {
			msg += "\n  " + Meta(explorerURL)
		}
		return msg
	case resolver.StatusUserRejected:
		return Warn("Cancelled: " + sub.Reason)
	default:
		return Err("Submission failed: " + sub.Reason)
	}
}

// StateLabel is the spinner text for a lifecycle state.
func StateLabel(s resolver.State) string {
	switch s {
	case resolver.StateSimulating:
		return "Discovering fee and simulating candidates…"
	case resolver.StateResolved:
		return "Resolved"
	case resolver.StateSubmitting:
		return "Signing and broadcasting…"
	case resolver.StateSubmitted:
		return "Submitted"
	case resolver.StateFailed:
		return "Failed"
	default:
		return ""
	}
}
