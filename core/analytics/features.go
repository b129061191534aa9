package analytics

import (
	"math"

	"github.com/darasoft/shule/core/academic"
)

// Windows over raw academic records. Grade events are consumed newest
// first; attendance events cover the prior AttendanceWindowDays days.
const (
	GradeWindow          = 20
	AttendanceWindowDays = 30

	gpaWindow         = 10
	courseTrendWindow = 3
)

// FeatureVector is the fixed-shape numeric feature set derived from a
// student's raw records. It is computed fresh on every scoring call and
// never persisted.
type FeatureVector struct {
	GPA              float64 `json:"gpa"`
	GPATrend         float64 `json:"gpaTrend"`
	AttendanceRate   float64 `json:"attendanceRate"`
	EngagementScore  float64 `json:"engagementScore"`
	TotalCourses     int     `json:"totalCourses"`
	GradeConsistency float64 `json:"gradeConsistency"`
}

// ExtractFeatures derives a FeatureVector from a bounded window of grade
// events (newest first, capped at GradeWindow) and attendance events.
// Missing data degrades to zero values; extraction never fails.
func ExtractFeatures(grades []academic.GradeEvent, attendance []academic.AttendanceEvent) FeatureVector {
	if len(grades) > GradeWindow {
		grades = grades[:GradeWindow]
	}

	gpa := meanGradePoints(grades, gpaWindow)
	rate := presentRate(attendance)

	return FeatureVector{
		GPA:              gpa,
		GPATrend:         windowTrend(grades, gpaWindow),
		AttendanceRate:   rate,
		EngagementScore:  academic.Clamp(gpa/4.0*0.7+rate*0.3, 0, 1),
		TotalCourses:     distinctCourses(grades),
		GradeConsistency: gradePointsStdDev(grades),
	}
}

// meanGradePoints averages grade points over the `n` most recent events
// (all of them if fewer exist); 0 if there are none.
func meanGradePoints(grades []academic.GradeEvent, n int) float64 {
	if len(grades) == 0 {
		return 0
	}
	if len(grades) > n {
		grades = grades[:n]
	}
	var sum float64
	for _, evt := range grades {
		sum += evt.GradePoints
	}
	return sum / float64(len(grades))
}

// windowTrend compares the mean grade points of the `n` most recent events
// against the mean of the `n` events before them. Positive means improving.
// 0 if fewer than 2 events exist, or if there is no older window to compare.
func windowTrend(grades []academic.GradeEvent, n int) float64 {
	if len(grades) < 2 {
		return 0
	}
	recent := grades
	if len(recent) > n {
		recent = recent[:n]
	}
	if len(grades) <= n {
		return 0
	}
	previous := grades[n:]
	if len(previous) > n {
		previous = previous[:n]
	}
	return meanGradePoints(recent, n) - meanGradePoints(previous, n)
}

// presentRate counts strictly `present` against all events. The reporting
// path (academic.SummarizeAttendance) differs in that it credits `late`.
func presentRate(attendance []academic.AttendanceEvent) float64 {
	if len(attendance) == 0 {
		return 0
	}
	var present int
	for _, evt := range attendance {
		if evt.Status == academic.StatusPresent {
			present++
		}
	}
	return float64(present) / float64(len(attendance))
}

// gradePointsStdDev is the population standard deviation of grade points.
func gradePointsStdDev(grades []academic.GradeEvent) float64 {
	if len(grades) < 1 {
		return 0
	}
	mean := meanGradePoints(grades, len(grades))
	var sumSq float64
	for _, evt := range grades {
		d := evt.GradePoints - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(grades)))
}

func distinctCourses(grades []academic.GradeEvent) int {
	seen := make(map[string]struct{}, len(grades))
	for _, evt := range grades {
		seen[evt.CourseID] = struct{}{}
	}
	return len(seen)
}
