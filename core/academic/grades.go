package academic

// gradeBand maps a minimum percentage to a letter grade and its GPA points.
type gradeBand struct {
	minPercent float64
	letter     string
	points     float64
}

// percentBands is the authoritative 13-step percentage table.
var percentBands = []gradeBand{
	{97, "A+", 4.0},
	{93, "A", 4.0},
	{90, "A-", 3.7},
	{87, "B+", 3.3},
	{83, "B", 3.0},
	{80, "B-", 2.7},
	{77, "C+", 2.3},
	{73, "C", 2.0},
	{70, "C-", 1.7},
	{67, "D+", 1.3},
	{63, "D", 1.0},
	{60, "D-", 0.7},
	{0, "F", 0.0},
}

var letterPoints = func() map[string]float64 {
	m := make(map[string]float64, len(percentBands))
	for _, band := range percentBands {
		m[band.letter] = band.points
	}
	return m
}()

// PercentToLetter converts a percentage score to a letter grade.
func PercentToLetter(percent float64) string {
	for _, band := range percentBands {
		if percent >= band.minPercent {
			return band.letter
		}
	}
	return "F"
}

// PercentToPoints converts a percentage score to GPA points via the letter table.
func PercentToPoints(percent float64) float64 {
	for _, band := range percentBands {
		if percent >= band.minPercent {
			return band.points
		}
	}
	return 0
}

// LetterToPoints converts a letter grade to GPA points. Unknown letters map to 0.
func LetterToPoints(letter string) float64 {
	return letterPoints[letter]
}

// gpaBand maps a minimum grade-point value to a letter grade. This is a
// distinct, coarser mapping used to label predicted grade points; it must
// not be conflated with the percentage table. A plain A is only awarded
// at a perfect 4.0.
type gpaBand struct {
	minPoints float64
	letter    string
}

var gpaBands = []gpaBand{
	{4.0, "A"},
	{3.7, "A-"},
	{3.3, "B+"},
	{3.0, "B"},
	{2.7, "B-"},
	{2.3, "C+"},
	{2.0, "C"},
	{1.7, "C-"},
	{1.3, "D+"},
	{1.0, "D"},
	{0, "F"},
}

// GPAToLetter converts grade points (0.0 - 4.0) to a letter grade.
func GPAToLetter(points float64) string {
	for _, band := range gpaBands {
		if points >= band.minPoints {
			return band.letter
		}
	}
	return "F"
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
