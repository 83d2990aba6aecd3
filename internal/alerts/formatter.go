package alerts

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAlert renders one triggered alert as a plain-text subject and body
// shared by every delivery channel.
func FormatAlert(tr Triggered) (subject, body string) {
	subject = "FriendlyTicker alert: " + tr.Ticker

	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\n\n", tr.Ticker)

	if len(tr.Reasons) > 0 {
		b.WriteString("Triggered because:\n")
		for _, r := range tr.Reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	b.WriteString("Signals:\n")
	fmt.Fprintf(&b, "- regime: %s\n", orDash(regimeString(tr.Signals.Regime)))
	fmt.Fprintf(&b, "- trend_score: %s\n", intOrDash(tr.Signals.TrendScore))
	fmt.Fprintf(&b, "- delta_1d: %s\n", intOrDash(tr.Signals.Delta1D))
	fmt.Fprintf(&b, "- momentum_decay: %s", orDash(decayString(tr.Signals.MomentumDecay)))

	return subject, b.String()
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
