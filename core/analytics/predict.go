package analytics

import (
	"fmt"
	"math"

	"github.com/darasoft/shule/core/academic"
)

// Improvement potential labels
const (
	PotentialLow    = "low"
	PotentialMedium = "medium"
	PotentialHigh   = "high"
)

// CourseFeatures are the course-scoped signals feeding a grade prediction.
// Averages are percentages; GradeTrend is computed like the student-level
// trend but filtered to one course with a 3-vs-3 event window.
type CourseFeatures struct {
	CourseID           string  `json:"courseId"`
	AssignmentAvg      float64 `json:"assignmentAvg"`
	QuizAvg            float64 `json:"quizAvg"`
	MidtermScore       float64 `json:"midtermScore"`
	ParticipationScore float64 `json:"participationScore"`
	DifficultyRating   float64 `json:"difficultyRating"`
	AttendanceRate     float64 `json:"attendanceRate"`
	GradeTrend         float64 `json:"gradeTrend"`
	TotalAssignments   int     `json:"totalAssignments"`
	Consistency        float64 `json:"consistency"`
}

type GradePrediction struct {
	CourseID             string   `json:"courseId,omitempty"`
	CourseName           string   `json:"courseName,omitempty"`
	PredictedLetterGrade string   `json:"predictedLetterGrade"`
	PredictedGradePoints float64  `json:"predictedGradePoints"`
	Confidence           float64  `json:"confidence"`
	Factors              []string `json:"factors"`
	ImprovementPotential string   `json:"improvementPotential"`
}

// GradeReport is the per-student prediction summary across active courses.
type GradeReport struct {
	StudentID           string            `json:"studentId"`
	OverallPredictedGPA float64           `json:"overallPredictedGpa"`
	Predictions         []GradePrediction `json:"predictions"`
}

// PredictGrade estimates a course outcome. The rule-based baseline is the
// only path exercised end-to-end; when the course has no history at all
// (brand-new enrollment) it falls back to scaling the student's current GPA.
func PredictGrade(currentGPA float64, cf CourseFeatures) GradePrediction {
	var points float64
	if cf.TotalAssignments == 0 {
		points = academic.Clamp(currentGPA*(0.7+0.3*cf.AttendanceRate), 0, 4)
	} else {
		points = academic.Clamp(
			2.5+cf.AttendanceRate*1.5+academic.Clamp(cf.GradeTrend, -0.5, 0.5),
			0, 4)
	}

	confidence := 0.7
	if cf.TotalAssignments > 5 {
		confidence += 0.1
	}
	if cf.Consistency < 0.5 {
		confidence += 0.15
	}
	if cf.AttendanceRate > 0.9 {
		confidence += 0.05
	}

	return GradePrediction{
		CourseID:             cf.CourseID,
		PredictedLetterGrade: academic.GPAToLetter(points),
		PredictedGradePoints: points,
		Confidence:           academic.Clamp(confidence, 0, 0.99),
		Factors:              predictionFactors(cf),
		ImprovementPotential: improvementPotential(cf),
	}
}

func improvementPotential(cf CourseFeatures) string {
	switch {
	case cf.AttendanceRate < 0.8 && cf.GradeTrend < 0:
		return PotentialHigh
	case cf.AttendanceRate < 0.9 || cf.GradeTrend < 0:
		return PotentialMedium
	default:
		return PotentialLow
	}
}

func predictionFactors(cf CourseFeatures) []string {
	factors := make([]string, 0, 4)
	switch {
	case cf.AttendanceRate > 0.9:
		factors = append(factors, "strong attendance")
	case cf.AttendanceRate < 0.8:
		factors = append(factors, "low attendance")
	}
	switch {
	case cf.GradeTrend > 0:
		factors = append(factors, "improving grade trend")
	case cf.GradeTrend < 0:
		factors = append(factors, "declining grade trend")
	}
	if cf.TotalAssignments > 0 && cf.Consistency < 0.5 {
		factors = append(factors, "consistent performance")
	}
	if cf.DifficultyRating >= 4 {
		factors = append(factors, fmt.Sprintf("high course difficulty (%.1f/5)", cf.DifficultyRating))
	}
	if cf.TotalAssignments == 0 {
		factors = append(factors, "no course history yet")
	}
	return factors
}

// OverallPredictedGPA averages each prediction's GPA equivalent (via the
// letter table), rounded to 2 decimals; 0.0 with no active courses.
func OverallPredictedGPA(preds []GradePrediction) float64 {
	if len(preds) == 0 {
		return 0.0
	}
	var sum float64
	for _, p := range preds {
		sum += academic.LetterToPoints(p.PredictedLetterGrade)
	}
	return math.Round(sum/float64(len(preds))*100) / 100
}
