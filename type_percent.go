package brokerage

import "fmt"

// Percent is a rate of return expressed in percent (5.0 means +5%). Returns
// live in solver space, so Percent is a plain float, unlike money and
// quantities.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
