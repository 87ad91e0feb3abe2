package tax

import "fmt"

// Input validation helpers for the boundaries that feed the decomposition.
// Out-of-range percentages are rejected here, before reaching Decompose.

// ValidateGSTPercent rejects negative percentages and anything >= 100,
// which would make the decomposition divide toward zero or flip sign.
func ValidateGSTPercent(g float64) error {
	if g < 0 || g >= 100 {
		return fmt.Errorf("tax: GST 百分比 %g 超出 [0,100) 范围", g)
	}
	return nil
}

// ValidateDiscountPercent rejects discounts outside [0,100].
func ValidateDiscountPercent(d float64) error {
	if d < 0 || d > 100 {
		return fmt.Errorf("tax: 折扣百分比 %g 超出 [0,100] 范围", d)
	}
	return nil
}

// ValidateLine checks one invoice line at the input boundary.
func ValidateLine(it LineItem) error {
	if it.Quantity < 0 {
		return fmt.Errorf("tax: 数量不能为负 (%g)", it.Quantity)
	}
	if it.Rate < 0 {
		return fmt.Errorf("tax: 含税单价不能为负 (%g)", it.Rate)
	}
	return ValidateGSTPercent(it.GSTPercent)
}
