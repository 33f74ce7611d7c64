package enums

import (
	"fmt"
	"strings"
)

// SalesRange is the relative date filter for the sales list.
type SalesRange string

const (
	SalesRangeToday SalesRange = "today"
	SalesRangeWeek  SalesRange = "week"
	SalesRangeMonth SalesRange = "month"
	SalesRangeAll   SalesRange = "all"
)

var validSalesRanges = []SalesRange{SalesRangeToday, SalesRangeWeek, SalesRangeMonth, SalesRangeAll}

func (r SalesRange) IsValid() bool {
	for _, candidate := range validSalesRanges {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseSalesRange defaults to today for empty input.
func ParseSalesRange(value string) (SalesRange, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return SalesRangeToday, nil
	}
	for _, candidate := range validSalesRanges {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sales range %q", value)
}
