package draft

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Preview renders the draft as the plain-text order summary shown to the
// operator before submission.
func (d *Draft) Preview() string {
	var b strings.Builder
	b.WriteString("=== Order ===\n")
	fmt.Fprintf(&b, "Contract:    %s\n", d.Symbol)
	fmt.Fprintf(&b, "Direction:   %s\n", strings.ToUpper(string(d.Direction)))
	fmt.Fprintf(&b, "Quantity:    %d lots\n", d.Quantity)
	fmt.Fprintf(&b, "Total value: %s\n", d.TotalValue.StringFixed(2))
	fmt.Fprintf(&b, "Margin:      %s\n", d.Margin.StringFixed(2))
	fmt.Fprintf(&b, "Entry price: %s\n", d.EntryPrice.String())
	fmt.Fprintf(&b, "Face value:  %s\n", d.FaceValue.String())
	fmt.Fprintf(&b, "Leverage:    %dx\n", d.Leverage)
	b.WriteString("\n=== Stop loss ===\n")
	fmt.Fprintf(&b, "Price:       %s\n", d.StopLossPrice.StringFixed(4))
	fmt.Fprintf(&b, "Amount:      %s\n", d.StopLossAmount.StringFixed(2))
	fmt.Fprintf(&b, "Percentage:  %s%%\n", d.StopLossPercentage.StringFixed(2))
	b.WriteString("\n=== Take profit ===\n")
	if d.TakeProfitPrice.GreaterThan(decimal.Zero) {
		fmt.Fprintf(&b, "Price:       %s\n", d.TakeProfitPrice.StringFixed(4))
	} else {
		b.WriteString("Price:       not set\n")
	}
	if !d.TakeProfitDrawdown.IsZero() {
		fmt.Fprintf(&b, "Drawdown:    %s%%\n", d.TakeProfitDrawdown.StringFixed(2))
	}
	if !d.RiskAmount.IsZero() {
		fmt.Fprintf(&b, "\nRisk budget: %s\n", d.RiskAmount.StringFixed(2))
	}
	return b.String()
}
