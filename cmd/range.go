package cmd

import (
	"fmt"

	"brokerage"
)

// parseRange resolves the common report range flags: an explicit start date
// overrides the named period, and the end date defaults to today.
func parseRange(period, start, end string) (brokerage.Range, error) {
	endDate, err := brokerage.ParseDate(end)
	if err != nil {
		return brokerage.Range{}, fmt.Errorf("invalid end date: %w", err)
	}
	if start != "" {
		startDate, err := brokerage.ParseDate(start)
		if err != nil {
			return brokerage.Range{}, fmt.Errorf("invalid start date: %w", err)
		}
		return brokerage.NewRange(startDate, endDate), nil
	}
	p, err := brokerage.ParsePeriod(period)
	if err != nil {
		return brokerage.Range{}, err
	}
	return p.Range(endDate), nil
}
