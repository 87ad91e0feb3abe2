package tax

import "math"

// This file implements the tax-inclusive price decomposition shared by the
// interactive totals calculator and the static document renderer. The
// rounding order is a fixed policy, not an accident: each line's base/tax is
// rounded to 2 decimals independently, the rounded values are summed across
// lines, and the uniform discount ratio is applied to the summed totals and
// rounded again. Both consumers must reconcile to the same numbers.

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Decompose splits a tax-inclusive amount R with tax percentage g into the
// tax-exclusive base price and the GST amount:
//
//	base = R / (1 + g/100)
//	gst  = R - base
//
// both rounded to 2 decimals at the point of use. Inputs are a caller
// contract: R >= 0 and 0 <= g < 100 must be validated at the input boundary
// (see ValidateGSTPercent); the function itself performs no I/O and cannot
// fail at runtime.
func Decompose(amount, gstPercent float64) (base, gst float64) {
	base = Round2(amount / (1 + gstPercent/100))
	gst = Round2(amount - base)
	return base, gst
}

// LineItem is one invoice line. Rate is the tax-inclusive unit price; the
// base price is always derived via Decompose, never stored redundantly.
type LineItem struct {
	Quantity   float64 `json:"quantity"`
	Rate       float64 `json:"rate"`
	GSTPercent float64 `json:"gstPercent"`
}

// Amount returns the tax-inclusive line amount rounded to 2 decimals.
func (it LineItem) Amount() float64 { return Round2(it.Rate * it.Quantity) }

// Summary aggregates invoice totals under the fixed rounding policy.
type Summary struct {
	Subtotal       float64 `json:"subtotal"`       // Σ tax-inclusive line amounts
	BaseTotal      float64 `json:"baseTotal"`      // Σ per-line rounded base prices
	TaxTotal       float64 `json:"taxTotal"`       // Σ per-line rounded GST amounts
	DiscountAmount float64 `json:"discountAmount"` // uniform discount on Subtotal
	NetBase        float64 `json:"netBase"`        // BaseTotal scaled by the discount ratio
	NetTax         float64 `json:"netTax"`         // TaxTotal scaled by the discount ratio
	GrandTotal     float64 `json:"grandTotal"`     // round(Subtotal - DiscountAmount), whole unit
	RoundOff       float64 `json:"roundOff"`       // GrandTotal - (Subtotal - DiscountAmount)
}

// Totals computes invoice totals. The single discount percentage applies to
// the whole invoice: the aggregated pre-discount base and tax are each
// multiplied by (1 - discountPercent/100) independently, then rounded. The
// grand total is rounded to the nearest whole currency unit and the rounding
// delta is retained in RoundOff so it stays visible, never silently absorbed.
func Totals(items []LineItem, discountPercent float64) Summary {
	var s Summary
	for _, it := range items {
		amount := it.Amount()
		base, gst := Decompose(amount, it.GSTPercent)
		s.Subtotal += amount
		s.BaseTotal += base
		s.TaxTotal += gst
	}
	s.Subtotal = Round2(s.Subtotal)
	s.BaseTotal = Round2(s.BaseTotal)
	s.TaxTotal = Round2(s.TaxTotal)

	ratio := 1 - discountPercent/100
	s.DiscountAmount = Round2(s.Subtotal * discountPercent / 100)
	s.NetBase = Round2(s.BaseTotal * ratio)
	s.NetTax = Round2(s.TaxTotal * ratio)

	payable := s.Subtotal - s.DiscountAmount
	s.GrandTotal = math.Round(payable)
	s.RoundOff = Round2(s.GrandTotal - payable)
	return s
}
