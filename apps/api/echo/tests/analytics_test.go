package tests

import (
	"encoding/json"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/darasoft/shule/core/academic"
	"github.com/darasoft/shule/core/analytics"
	"github.com/darasoft/shule/core/user"
)

// seedScoringData enrolls one student in one course with a steady-B history
// and perfect attendance.
func seedScoringData(t *testing.T) (academic.Student, academic.Course) {
	t.Helper()

	std := createStudent(t, "Asha", "Mwangi", "Science", 3.2)
	crs := createCourse(t, "math101", "Calculus I", 3, 4)
	enroll(t, std.ID, crs.ID)

	for i := 0; i < 3; i++ {
		recordGrade(t, std.ID, crs.ID, "assignment", 85, 100) // B / 3.0
	}
	now := time.Now().UTC()
	for i := 1; i <= 4; i++ {
		recordAttendance(t, std.ID, crs.ID, academic.StatusPresent, now.AddDate(0, 0, -i))
	}
	return std, crs
}

func Test_analyticsApi_accessControl(t *testing.T) {
	resetDB()

	studentUsr := createUser(t, "Hero", "hero", "hero@test.cd", []string{user.RoleStudent}, true)
	std, _ := seedScoringData(t)

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/analytics/dropout-prediction/" + std.ID,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Staff required", path: "/v1/analytics/dropout-prediction/" + std.ID, token: getToken(t, studentUsr),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_analyticsApi_dropoutPrediction(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teacher@test.cd", []string{user.RoleTeacher}, true)
	teacherToken := getToken(t, teacher)
	std, _ := seedScoringData(t)

	t.Run("Unknown student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/dropout-prediction/nope", teacherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		}, rec)
	})

	t.Run("Assessment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/dropout-prediction/"+std.ID, teacherToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got analytics.RiskAssessment
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling RiskAssessment: %v", err)
		}

		// steady Bs + perfect attendance are low risk
		if got.RiskLevel != analytics.RiskLow {
			t.Errorf("RiskLevel = %v; want %v", got.RiskLevel, analytics.RiskLow)
		}
		if got.RiskScore < 0 || got.RiskScore >= 0.3 {
			t.Errorf("RiskScore = %v; want in [0, 0.3)", got.RiskScore)
		}
		if len(got.Factors) != 3 {
			t.Errorf("len(Factors) = %v; want 3", len(got.Factors))
		}
		if len(got.Recommendations) == 0 {
			t.Error("no recommendations returned")
		}
	})
}

func Test_analyticsApi_gradePredictions(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teacher@test.cd", []string{user.RoleTeacher}, true)
	teacherToken := getToken(t, teacher)
	std, crs := seedScoringData(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/grade-predictions/"+std.ID, teacherToken)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got analytics.GradeReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling GradeReport: %v", err)
	}

	if got.StudentID != std.ID {
		t.Errorf("StudentID = %v; want %v", got.StudentID, std.ID)
	}
	if len(got.Predictions) != 1 {
		t.Fatalf("len(Predictions) = %v; want 1", len(got.Predictions))
	}

	// baseline: 2.5 + 1.0*1.5 + 0 trend = 4.0 -> A
	pred := got.Predictions[0]
	if pred.CourseID != crs.ID || pred.CourseName != crs.Name {
		t.Errorf("course = %v/%v; want %v/%v", pred.CourseID, pred.CourseName, crs.ID, crs.Name)
	}
	if pred.PredictedLetterGrade != "A" || pred.PredictedGradePoints != 4.0 {
		t.Errorf("prediction = %s/%v; want A/4.0", pred.PredictedLetterGrade, pred.PredictedGradePoints)
	}
	if math.Abs(pred.Confidence-0.9) > 1e-9 { // 0.7 + 0.15 consistency + 0.05 attendance
		t.Errorf("Confidence = %v; want 0.9", pred.Confidence)
	}
	if got.OverallPredictedGPA != 4.0 {
		t.Errorf("OverallPredictedGPA = %v; want 4.0", got.OverallPredictedGPA)
	}
}

func Test_analyticsApi_riskFactors(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teacher@test.cd", []string{user.RoleTeacher}, true)
	std, _ := seedScoringData(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/risk-factors/"+std.ID, getToken(t, teacher))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got []analytics.Factor
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling factors: %v", err)
	}

	wantNames := []string{analytics.FactorAcademic, analytics.FactorAttendance, analytics.FactorEngagement}
	if len(got) != len(wantNames) {
		t.Fatalf("len(factors) = %v; want %v", len(got), len(wantNames))
	}
	for i, f := range got {
		if f.Name != wantNames[i] {
			t.Errorf("factors[%d].Name = %v; want %v", i, f.Name, wantNames[i])
		}
	}
	// perfect attendance over the window
	if got[1].Impact != analytics.ImpactPositive || got[1].Score != 1.0 {
		t.Errorf("attendance factor = %+v; want positive impact, score 1", got[1])
	}
}

func Test_analyticsApi_features(t *testing.T) {
	resetDB()

	teacher := createUser(t, "Teacher", "teach1", "teacher@test.cd", []string{user.RoleTeacher}, true)
	std, _ := seedScoringData(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/features/"+std.ID, getToken(t, teacher))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got analytics.FeatureVector
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling FeatureVector: %v", err)
	}

	if got.GPA != 3.0 {
		t.Errorf("GPA = %v; want 3.0", got.GPA)
	}
	if got.AttendanceRate != 1.0 {
		t.Errorf("AttendanceRate = %v; want 1.0", got.AttendanceRate)
	}
	if got.TotalCourses != 1 {
		t.Errorf("TotalCourses = %v; want 1", got.TotalCourses)
	}
	if got.GradeConsistency != 0 {
		t.Errorf("GradeConsistency = %v; want 0", got.GradeConsistency)
	}
}
