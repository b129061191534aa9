package analytics

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/darasoft/shule/core/academic"
)

// CoefficientModel scores the feature vector as a linear combination of
// named coefficients loaded from a JSON file. It exists so a trained model
// can be swapped in without touching callers; no model is trained in this
// repository.
type CoefficientModel struct {
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
}

var _ RiskModel = (*CoefficientModel)(nil)

// LoadCoefficientModel reads a coefficient model from a JSON file.
func LoadCoefficientModel(path string) (*CoefficientModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading model file")
	}
	var model CoefficientModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, errors.Wrap(err, "unmarshalling model")
	}
	return &model, nil
}

func (m *CoefficientModel) Score(fv FeatureVector) RiskAssessment {
	// sum in sorted key order so the float result is stable across calls
	names := make([]string, 0, len(m.Coefficients))
	for name := range m.Coefficients {
		names = append(names, name)
	}
	sort.Strings(names)

	score := m.Intercept
	for _, name := range names {
		score += m.Coefficients[name] * featureValue(fv, name)
	}
	return assemble(academic.Clamp(score, 0, 1), fv)
}

func featureValue(fv FeatureVector, name string) float64 {
	switch name {
	case "gpa":
		return fv.GPA
	case "gpaTrend":
		return fv.GPATrend
	case "attendanceRate":
		return fv.AttendanceRate
	case "engagementScore":
		return fv.EngagementScore
	case "totalCourses":
		return float64(fv.TotalCourses)
	case "gradeConsistency":
		return fv.GradeConsistency
	}
	return 0
}
