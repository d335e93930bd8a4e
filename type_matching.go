package brokerage

import "fmt"

// MatchingRule defines the order in which open lots are consumed on disposal.
type MatchingRule int

const (
	// FIFO (First-In, First-Out) consumes the oldest lots first. The default.
	FIFO MatchingRule = iota
	// LIFO (Last-In, First-Out) consumes the newest lots first.
	LIFO
	// SpecificLot consumes the lots the caller selected on the closing
	// transaction, in the order selected.
	SpecificLot
)

func (m MatchingRule) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case SpecificLot:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseMatchingRule parses a string into a MatchingRule.
func ParseMatchingRule(s string) (MatchingRule, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "specific":
		return SpecificLot, nil
	default:
		return 0, fmt.Errorf("unknown matching rule: %q", s)
	}
}
