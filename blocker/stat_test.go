package blocker

import "testing"

func TestStatBlockableWithinTolerance(t *testing.T) {
	var s Stat
	s.Add(30)
	// tol = max(absTol=3, floor(30*0.3)=9) = 9; max<=min+tol -> 39<=39
	if !s.Blockable(39, 0.3, 3) {
		t.Fatalf("39 should be blockable against min 30 with frac=0.3,abs=3")
	}
	if s.Blockable(40, 0.3, 3) {
		t.Fatalf("40 should not be blockable against min 30 with frac=0.3,abs=3")
	}
}

func TestStatBlockableFallsBackToAbsolute(t *testing.T) {
	var s Stat
	s.Add(1)
	// frac term floor(1*0.3)=0 < absTol=3, so tol=3.
	if !s.Blockable(4, 0.3, 3) {
		t.Fatalf("4 should be blockable against min 1 via abs tolerance 3")
	}
	if s.Blockable(5, 0.3, 3) {
		t.Fatalf("5 should not be blockable against min 1 via abs tolerance 3")
	}
}

func TestStatEmptyAlwaysBlockable(t *testing.T) {
	var s Stat
	if !s.Blockable(1000, 0, 0) {
		t.Fatalf("an empty stat should admit any first value")
	}
}
