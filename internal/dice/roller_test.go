package dice

import (
	"errors"
	"testing"
)

// fixedDie always rolls the maximum face.
func fixedDie(sides int) int { return sides }

func TestRoll_SingleDie(t *testing.T) {
	res, err := roll("d20", fixedDie)
	if err != nil {
		t.Fatalf("roll() error = %v", err)
	}
	if len(res.Rolls) != 1 || res.Rolls[0] != 20 {
		t.Errorf("rolls = %v, want [20]", res.Rolls)
	}
	if res.Total != 20 {
		t.Errorf("total = %d, want 20", res.Total)
	}
}

func TestRoll_MultipleTermsWithModifiers(t *testing.T) {
	res, err := roll("2d6+3", fixedDie)
	if err != nil {
		t.Fatalf("roll() error = %v", err)
	}
	if len(res.Rolls) != 2 {
		t.Fatalf("rolls = %v, want two dice", res.Rolls)
	}
	if res.Total != 15 {
		t.Errorf("total = %d, want 6+6+3 = 15", res.Total)
	}
}

func TestRoll_NegativeTerms(t *testing.T) {
	res, err := roll("1d8-2", fixedDie)
	if err != nil {
		t.Fatalf("roll() error = %v", err)
	}
	if res.Total != 6 {
		t.Errorf("total = %d, want 8-2 = 6", res.Total)
	}
}

func TestRoll_WhitespaceTolerated(t *testing.T) {
	res, err := roll("2d4 + 1d6 + 2", fixedDie)
	if err != nil {
		t.Fatalf("roll() error = %v", err)
	}
	if res.Total != 4+4+6+2 {
		t.Errorf("total = %d, want 16", res.Total)
	}
}

func TestRoll_RandomWithinBounds(t *testing.T) {
	for range 100 {
		res, err := Roll("3d6")
		if err != nil {
			t.Fatalf("Roll() error = %v", err)
		}
		for _, r := range res.Rolls {
			if r < 1 || r > 6 {
				t.Fatalf("die result %d outside 1..6", r)
			}
		}
		if res.Total < 3 || res.Total > 18 {
			t.Fatalf("total %d outside 3..18", res.Total)
		}
	}
}

func TestRoll_InvalidFormulas(t *testing.T) {
	bad := []string{"", "d", "2d", "abc", "2d6+", "1d0", "0d6", "101d6", "1d1001", "2x6"}
	for _, formula := range bad {
		if _, err := roll(formula, fixedDie); !errors.Is(err, ErrInvalidFormula) {
			t.Errorf("roll(%q) error = %v, want ErrInvalidFormula", formula, err)
		}
	}
}
