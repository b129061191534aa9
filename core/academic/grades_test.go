package academic

import "testing"

func TestPercentToLetter(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{100, "A+"},
		{97, "A+"},
		{96.99, "A"},
		{93, "A"},
		{92.99, "A-"},
		{90, "A-"},
		{87, "B+"},
		{83, "B"},
		{80, "B-"},
		{77, "C+"},
		{73, "C"},
		{70, "C-"},
		{67, "D+"},
		{63, "D"},
		{60, "D-"},
		{59.99, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		if got := PercentToLetter(tt.percent); got != tt.want {
			t.Errorf("PercentToLetter(%v) = %v; want %v", tt.percent, got, tt.want)
		}
	}
}

func TestPercentToPoints(t *testing.T) {
	tests := []struct {
		percent float64
		want    float64
	}{
		{98, 4.0},
		{95, 4.0}, // A+ and A share 4.0
		{91, 3.7},
		{85, 3.0},
		{75, 2.0},
		{61, 0.7},
		{40, 0.0},
	}
	for _, tt := range tests {
		if got := PercentToPoints(tt.percent); got != tt.want {
			t.Errorf("PercentToPoints(%v) = %v; want %v", tt.percent, got, tt.want)
		}
	}
}

func TestPercentConversion_monotonic(t *testing.T) {
	prev := -1.0
	for p := 0.0; p <= 100; p++ {
		got := PercentToPoints(p)
		if got < prev {
			t.Fatalf("PercentToPoints(%v) = %v; dropped below %v", p, got, prev)
		}
		prev = got
	}
}

func TestLetterToPoints(t *testing.T) {
	tests := []struct {
		letter string
		want   float64
	}{
		{"A+", 4.0},
		{"A", 4.0},
		{"A-", 3.7},
		{"B+", 3.3},
		{"B", 3.0},
		{"B-", 2.7},
		{"C+", 2.3},
		{"C", 2.0},
		{"C-", 1.7},
		{"D+", 1.3},
		{"D", 1.0},
		{"D-", 0.7},
		{"F", 0.0},
		{"Z", 0.0}, // unknown
	}
	for _, tt := range tests {
		if got := LetterToPoints(tt.letter); got != tt.want {
			t.Errorf("LetterToPoints(%q) = %v; want %v", tt.letter, got, tt.want)
		}
	}
}

func TestGPAToLetter(t *testing.T) {
	tests := []struct {
		points float64
		want   string
	}{
		{4.0, "A"},
		{3.99, "A-"}, // plain A only at a perfect 4.0
		{3.875, "A-"},
		{3.7, "A-"},
		{3.5, "B+"},
		{3.0, "B"},
		{2.9, "B-"},
		{2.24, "C"},
		{1.0, "D"},
		{0.5, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		if got := GPAToLetter(tt.points); got != tt.want {
			t.Errorf("GPAToLetter(%v) = %v; want %v", tt.points, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{-1, 0, 1, 0},
		{0.5, 0, 1, 0.5},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v; want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
