package level

import "testing"

func TestForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{230, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{10000, 11},
	}

	for _, tt := range tests {
		got := ForXP(tt.xp)
		if got != tt.want {
			t.Errorf("ForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestForXPMonotonic(t *testing.T) {
	prev := ForXP(0)
	for xp := 1; xp <= 5000; xp++ {
		cur := ForXP(xp)
		if cur < prev {
			t.Fatalf("ForXP decreased at xp=%d: %d -> %d", xp, prev, cur)
		}
		prev = cur
	}
}

func TestThresholdForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{2, 100},
		{3, 400},
		{4, 900},
		{10, 8100},
	}

	for _, tt := range tests {
		got := ThresholdForLevel(tt.level)
		if got != tt.want {
			t.Errorf("ThresholdForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestThresholdsStrictlyIncrease(t *testing.T) {
	for lvl := 1; lvl <= 100; lvl++ {
		if ThresholdForLevel(lvl) >= ThresholdForLevel(lvl+1) {
			t.Fatalf("threshold for level %d not below level %d", lvl, lvl+1)
		}
	}
}

func TestThresholdConsistentWithForXP(t *testing.T) {
	for xp := 0; xp <= 5000; xp += 7 {
		lvl := ForXP(xp)
		if ThresholdForLevel(lvl) > xp {
			t.Fatalf("xp=%d: threshold for own level %d exceeds xp", xp, lvl)
		}
		if xp >= ThresholdForLevel(lvl+1) {
			t.Fatalf("xp=%d: already past threshold for level %d", xp, lvl+1)
		}
	}
}

func TestProgressToNext(t *testing.T) {
	tests := []struct {
		name  string
		xp    int
		level int
		want  float64
	}{
		{"at threshold", 100, 2, 0},
		{"halfway", 250, 2, 0.5},
		{"just below next", 400, 3, 0},
		{"stale low level clamps high", 10000, 2, 1},
		{"stale high level clamps low", 0, 5, 0},
		{"zero xp level one", 0, 1, 0},
	}

	for _, tt := range tests {
		got := ProgressToNext(tt.xp, tt.level)
		if got != tt.want {
			t.Errorf("%s: ProgressToNext(%d, %d) = %v, want %v", tt.name, tt.xp, tt.level, got, tt.want)
		}
	}
}

func TestProgressToNextAlwaysInRange(t *testing.T) {
	for xp := 0; xp <= 3000; xp += 13 {
		for lvl := 1; lvl <= 10; lvl++ {
			got := ProgressToNext(xp, lvl)
			if got < 0 || got > 1 {
				t.Fatalf("ProgressToNext(%d, %d) = %v out of [0,1]", xp, lvl, got)
			}
		}
	}
}
