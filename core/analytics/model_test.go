package analytics

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestCoefficientModel_Score(t *testing.T) {
	model := &CoefficientModel{
		Intercept: 0.9,
		Coefficients: map[string]float64{
			"gpa":            -0.15,
			"attendanceRate": -0.3,
			"gpaTrend":       -0.2,
		},
	}
	fv := FeatureVector{GPA: 2.0, AttendanceRate: 0.5, GPATrend: 0.1}
	got := model.Score(fv)

	// 0.9 - 0.3 - 0.15 - 0.02 = 0.43
	if math.Abs(got.RiskScore-0.43) > 1e-9 {
		t.Errorf("RiskScore = %v; want 0.43", got.RiskScore)
	}
	if got.RiskLevel != RiskMedium {
		t.Errorf("RiskLevel = %v; want %v", got.RiskLevel, RiskMedium)
	}
	if len(got.Factors) != 3 {
		t.Errorf("len(Factors) = %d; want 3", len(got.Factors))
	}
	if len(got.Recommendations) == 0 {
		t.Error("want non-empty recommendations")
	}
}

func TestCoefficientModel_Score_deterministic(t *testing.T) {
	model := &CoefficientModel{
		Coefficients: map[string]float64{
			"gpa": 0.1, "gpaTrend": 0.1, "attendanceRate": 0.1,
			"engagementScore": 0.1, "totalCourses": 0.01, "gradeConsistency": 0.1,
		},
	}
	fv := FeatureVector{GPA: 1.1, GPATrend: 0.3, AttendanceRate: 0.7, EngagementScore: 0.5, TotalCourses: 3, GradeConsistency: 0.9}
	first := model.Score(fv).RiskScore
	for i := 0; i < 100; i++ {
		if got := model.Score(fv).RiskScore; got != first {
			t.Fatalf("run %d: RiskScore = %v; want %v", i, got, first)
		}
	}
}

func TestCoefficientModel_Score_clamped(t *testing.T) {
	model := &CoefficientModel{Intercept: 5, Coefficients: map[string]float64{"gpa": 1}}
	if got := model.Score(FeatureVector{GPA: 4}).RiskScore; got != 1.0 {
		t.Errorf("RiskScore = %v; want clamped 1.0", got)
	}
	model = &CoefficientModel{Intercept: -5, Coefficients: map[string]float64{}}
	if got := model.Score(FeatureVector{}).RiskScore; got != 0.0 {
		t.Errorf("RiskScore = %v; want clamped 0.0", got)
	}
}

func TestLoadCoefficientModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	content := `{"intercept": 0.8, "coefficients": {"gpa": -0.2, "attendanceRate": -0.4}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	model, err := LoadCoefficientModel(path)
	if err != nil {
		t.Fatalf("LoadCoefficientModel() error = %v", err)
	}
	if model.Intercept != 0.8 {
		t.Errorf("Intercept = %v; want 0.8", model.Intercept)
	}
	if model.Coefficients["gpa"] != -0.2 || model.Coefficients["attendanceRate"] != -0.4 {
		t.Errorf("Coefficients = %+v; want gpa=-0.2 attendanceRate=-0.4", model.Coefficients)
	}

	if _, err = LoadCoefficientModel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("want error for missing file")
	}
}
