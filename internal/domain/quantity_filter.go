package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Operator is the comparison applied by a QuantityPredicate
type Operator string

const (
	OpEqual   Operator = "="
	OpLess    Operator = "<"
	OpGreater Operator = ">"
	OpBetween Operator = "between"
)

var quantityFilterPattern = regexp.MustCompile(`^(<|>|=)?(\d+)(?:-(\d+))?$`)

// QuantityPredicate is a parsed quantity filter. Bounds are grams. High is
// only meaningful for OpBetween.
type QuantityPredicate struct {
	Operator Operator
	Low      float64
	High     float64
}

// ParseQuantityFilter parses expressions such as "500", ">500", "<100" and
// "100-500". A leading operator on a range is accepted and ignored.
func ParseQuantityFilter(expr string) (QuantityPredicate, error) {
	m := quantityFilterPattern.FindStringSubmatch(expr)
	if m == nil {
		return QuantityPredicate{}, invalidArgument("invalid quantity filter format")
	}

	low, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return QuantityPredicate{}, invalidArgument("invalid quantity filter format")
	}

	if m[3] != "" {
		high, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return QuantityPredicate{}, invalidArgument("invalid quantity filter format")
		}
		return QuantityPredicate{Operator: OpBetween, Low: low, High: high}, nil
	}

	op := OpEqual
	if m[1] != "" {
		op = Operator(m[1])
	}
	return QuantityPredicate{Operator: op, Low: low}, nil
}

// Matches evaluates the predicate against a gram amount. Comparisons are
// strict, ranges include both bounds.
func (p QuantityPredicate) Matches(grams float64) bool {
	switch p.Operator {
	case OpEqual:
		return grams == p.Low
	case OpLess:
		return grams < p.Low
	case OpGreater:
		return grams > p.Low
	case OpBetween:
		return grams >= p.Low && grams <= p.High
	default:
		return false
	}
}

func (p QuantityPredicate) String() string {
	if p.Operator == OpBetween {
		return fmt.Sprintf("%g-%g", p.Low, p.High)
	}
	return fmt.Sprintf("%s%g", p.Operator, p.Low)
}
