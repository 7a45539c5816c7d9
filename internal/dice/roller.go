package dice

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxDicePerTerm = 100
	maxSidesPerDie = 1000
)

var termPattern = regexp.MustCompile(`^(?:(\d*)[dD](\d+)|(\d+))$`)

// Roll evaluates a dice formula and returns the individual die results
// and the modified total. The formula is +/- separated terms of the form
// NdS (N defaults to 1) or plain integers.
func Roll(formula string) (*RollResult, error) {
	return roll(formula, func(sides int) int { return rand.IntN(sides) + 1 })
}

// roll takes the die function as a parameter so tests can make outcomes
// deterministic.
func roll(formula string, die func(sides int) int) (*RollResult, error) {
	compact := strings.ReplaceAll(formula, " ", "")
	if compact == "" {
		return nil, fmt.Errorf("%w: empty formula", ErrInvalidFormula)
	}

	result := &RollResult{Formula: formula, Rolls: []int{}}

	// Normalise to explicit signs, then split on them.
	if compact[0] != '+' && compact[0] != '-' {
		compact = "+" + compact
	}
	for i := 0; i < len(compact); {
		sign := 1
		if compact[i] == '-' {
			sign = -1
		} else if compact[i] != '+' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFormula, formula)
		}
		i++
		start := i
		for i < len(compact) && compact[i] != '+' && compact[i] != '-' {
			i++
		}
		term := compact[start:i]

		m := termPattern.FindStringSubmatch(term)
		if m == nil {
			return nil, fmt.Errorf("%w: bad term %q", ErrInvalidFormula, term)
		}

		if m[3] != "" {
			n, err := strconv.Atoi(m[3])
			if err != nil {
				return nil, fmt.Errorf("%w: bad term %q", ErrInvalidFormula, term)
			}
			result.Total += sign * n
			continue
		}

		count := 1
		if m[1] != "" {
			var err error
			count, err = strconv.Atoi(m[1])
			if err != nil || count < 1 || count > maxDicePerTerm {
				return nil, fmt.Errorf("%w: bad dice count in %q", ErrInvalidFormula, term)
			}
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 1 || sides > maxSidesPerDie {
			return nil, fmt.Errorf("%w: bad die size in %q", ErrInvalidFormula, term)
		}

		for range count {
			r := die(sides)
			result.Rolls = append(result.Rolls, r)
			result.Total += sign * r
		}
	}

	return result, nil
}
