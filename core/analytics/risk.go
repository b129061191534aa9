package analytics

import (
	"fmt"
	"math"

	"github.com/darasoft/shule/core/academic"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Factor impacts
const (
	ImpactPositive = "positive"
	ImpactNeutral  = "neutral"
	ImpactNegative = "negative"
)

// Factor names
const (
	FactorAcademic   = "Academic Performance"
	FactorAttendance = "Attendance Rate"
	FactorEngagement = "Engagement Level"
)

// Risk score weights.
const (
	weightGPA        = 0.4
	weightAttendance = 0.3
	weightTrend      = 0.2
	weightEngagement = 0.1
)

// Risk-level cut points; half-open intervals, lower bound inclusive.
// Canonical thresholds (see DESIGN.md for the 0.6-vs-0.7 resolution).
const (
	riskMediumFloor = 0.30
	riskHighFloor   = 0.60
)

type Factor struct {
	Name        string  `json:"name"`
	Impact      string  `json:"impact"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type RiskAssessment struct {
	RiskScore       float64  `json:"riskScore"`
	RiskLevel       string   `json:"riskLevel"`
	Factors         []Factor `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// RiskModel scores a feature vector into a risk assessment. Implementations
// must be pure: no I/O, no clock, no randomness.
type RiskModel interface {
	Score(fv FeatureVector) RiskAssessment
}

// RuleBasedModel is the default weighted-heuristic scorer.
type RuleBasedModel struct{}

var _ RiskModel = RuleBasedModel{}

func (RuleBasedModel) Score(fv FeatureVector) RiskAssessment {
	gpaFactor := math.Max(0, (4.0-fv.GPA)/4.0)
	attendanceFactor := math.Max(0, 1.0-fv.AttendanceRate)
	trendFactor := math.Max(0, -fv.GPATrend)
	engagementFactor := math.Max(0, 1.0-fv.EngagementScore)

	score := academic.Clamp(
		gpaFactor*weightGPA+
			attendanceFactor*weightAttendance+
			trendFactor*weightTrend+
			engagementFactor*weightEngagement,
		0, 1)

	return assemble(score, fv)
}

// assemble builds the assessment shared by all models: level from the
// canonical thresholds, the three named factors and their recommendations.
func assemble(score float64, fv FeatureVector) RiskAssessment {
	level := LevelForScore(score)
	factors := AnalyzeFactors(fv)
	return RiskAssessment{
		RiskScore:       score,
		RiskLevel:       level,
		Factors:         factors,
		Recommendations: Recommendations(level, factors),
	}
}

// LevelForScore maps a risk score to a discrete risk level.
func LevelForScore(score float64) string {
	switch {
	case score < riskMediumFloor:
		return RiskLow
	case score < riskHighFloor:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// AnalyzeFactors classifies exactly three named factors, each against its
// own thresholds.
func AnalyzeFactors(fv FeatureVector) []Factor {
	return []Factor{
		{
			Name:        FactorAcademic,
			Impact:      impactFor(fv.GPA, 3.5, 2.5),
			Score:       fv.GPA / 4.0,
			Description: fmt.Sprintf("Current GPA of %.2f on a 4.0 scale", fv.GPA),
		},
		{
			Name:        FactorAttendance,
			Impact:      impactFor(fv.AttendanceRate, 0.9, 0.75),
			Score:       fv.AttendanceRate,
			Description: fmt.Sprintf("Attendance rate of %.0f%% over the last %d days", fv.AttendanceRate*100, AttendanceWindowDays),
		},
		{
			Name:        FactorEngagement,
			Impact:      impactFor(fv.EngagementScore, 0.8, 0.6),
			Score:       fv.EngagementScore,
			Description: fmt.Sprintf("Engagement score of %.2f from grades and attendance", fv.EngagementScore),
		},
	}
}

func impactFor(val, positiveFloor, neutralFloor float64) string {
	switch {
	case val >= positiveFloor:
		return ImpactPositive
	case val >= neutralFloor:
		return ImpactNeutral
	default:
		return ImpactNegative
	}
}
