package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
)

// DefaultPolicy succeeds once the tally meets the threshold.
const DefaultPolicy = "plus_ones >= required_plus_ones"

// Policy decides whether a tally satisfies the review gate.
// Expressions may reference plus_ones, required_plus_ones and voters.
type Policy struct {
	source string
	expr   *govaluate.EvaluableExpression
}

func NewPolicy(expression string) (*Policy, error) {
	src := strings.TrimSpace(expression)
	if src == "" {
		src = DefaultPolicy
	}
	expr, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, fmt.Errorf("invalid review policy %q: %w", src, err)
	}
	return &Policy{source: src, expr: expr}, nil
}

func (p *Policy) String() string {
	return p.source
}

// Reached evaluates the policy for a tally.
func (p *Policy) Reached(plusOnes, required, voters int) (bool, error) {
	result, err := p.expr.Evaluate(map[string]interface{}{
		"plus_ones":          float64(plusOnes),
		"required_plus_ones": float64(required),
		"voters":             float64(voters),
	})
	if err != nil {
		return false, err
	}
	switch v := result.(type) {
	case bool:
		return v, nil
	default:
		return false, errors.New("review policy did not evaluate to boolean")
	}
}
