package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/darasoft/shule/core/academic"
)

// fakeRepo serves canned events keyed by course ID; "" returns everything.
type fakeRepo struct {
	record     academic.AcademicRecord
	courses    []academic.Course
	grades     map[string][]academic.GradeEvent
	attendance map[string][]academic.AttendanceEvent
	err        error
}

func (r *fakeRepo) AcademicRecord(ctx context.Context, studentID string) (academic.AcademicRecord, error) {
	if r.err != nil {
		return academic.AcademicRecord{}, r.err
	}
	return r.record, nil
}

func (r *fakeRepo) RecentGrades(ctx context.Context, studentID, courseID string, limit int) ([]academic.GradeEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	if courseID == "" {
		var all []academic.GradeEvent
		for _, evts := range r.grades {
			all = append(all, evts...)
		}
		return all, nil
	}
	return r.grades[courseID], nil
}

func (r *fakeRepo) Attendance(ctx context.Context, studentID, courseID string, since time.Time) ([]academic.AttendanceEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	if courseID == "" {
		var all []academic.AttendanceEvent
		for _, evts := range r.attendance {
			all = append(all, evts...)
		}
		return all, nil
	}
	return r.attendance[courseID], nil
}

func (r *fakeRepo) ActiveCourses(ctx context.Context, studentID string) ([]academic.Course, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.courses, nil
}

func TestService_DropoutRisk(t *testing.T) {
	repo := &fakeRepo{
		grades: map[string][]academic.GradeEvent{
			"crs1": gradeEvents(1.0, 1.0, 1.0),
		},
		attendance: map[string][]academic.AttendanceEvent{
			"crs1": attendanceEvents("absent", "absent", "absent", "absent"),
		},
	}
	svc := NewService(repo, nil)

	got, err := svc.DropoutRisk(context.Background(), "std1")
	if err != nil {
		t.Fatalf("DropoutRisk() error = %v", err)
	}
	if got.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %v; want %v", got.RiskLevel, RiskHigh)
	}
	if got.RiskScore < 0.6 || got.RiskScore > 1 {
		t.Errorf("RiskScore = %v; want in [0.6, 1]", got.RiskScore)
	}
	if len(got.Recommendations) == 0 {
		t.Error("want non-empty recommendations")
	}
}

func TestService_DropoutRisk_notFound(t *testing.T) {
	repo := &fakeRepo{err: academic.ErrStudentNotFound}
	svc := NewService(repo, nil)

	_, err := svc.DropoutRisk(context.Background(), "nope")
	if errors.Cause(err) != academic.ErrStudentNotFound {
		t.Errorf("error cause = %v; want ErrStudentNotFound", err)
	}
}

func TestService_RiskFactors(t *testing.T) {
	repo := &fakeRepo{
		grades: map[string][]academic.GradeEvent{
			"crs1": gradeEvents(3.7, 3.7, 3.7),
		},
		attendance: map[string][]academic.AttendanceEvent{
			"crs1": attendanceEvents("present", "present", "present"),
		},
	}
	svc := NewService(repo, nil)

	factors, err := svc.RiskFactors(context.Background(), "std1")
	if err != nil {
		t.Fatalf("RiskFactors() error = %v", err)
	}
	if len(factors) != 3 {
		t.Fatalf("len(factors) = %d; want 3", len(factors))
	}
	wantNames := []string{FactorAcademic, FactorAttendance, FactorEngagement}
	for i, f := range factors {
		if f.Name != wantNames[i] {
			t.Errorf("factors[%d].Name = %v; want %v", i, f.Name, wantNames[i])
		}
	}
}

func TestService_GradePredictions(t *testing.T) {
	defer func(orig func() time.Time) { nowFunc = orig }(nowFunc)
	nowFunc = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	repo := &fakeRepo{
		record: academic.AcademicRecord{StudentID: "std1", GPA: 3.2},
		courses: []academic.Course{
			{ID: "crs1", Name: "Calculus I", Difficulty: 4},
			{ID: "crs2", Name: "Intro to Sociology", Difficulty: 2},
		},
		grades: map[string][]academic.GradeEvent{
			"crs1": gradeEvents(3.7, 3.3, 3.0, 3.0, 2.7, 2.7),
		},
		attendance: map[string][]academic.AttendanceEvent{
			"crs1": attendanceEvents("present", "present", "present", "absent"),
		},
	}
	svc := NewService(repo, nil)

	report, err := svc.GradePredictions(context.Background(), "std1")
	if err != nil {
		t.Fatalf("GradePredictions() error = %v", err)
	}
	if report.StudentID != "std1" {
		t.Errorf("StudentID = %v; want std1", report.StudentID)
	}
	if len(report.Predictions) != 2 {
		t.Fatalf("len(Predictions) = %d; want 2", len(report.Predictions))
	}
	if report.Predictions[0].CourseName != "Calculus I" {
		t.Errorf("Predictions[0].CourseName = %v; want Calculus I", report.Predictions[0].CourseName)
	}
	// crs2 has no events: falls back to scaling current GPA
	// 3.2 * (0.7 + 0.3*0) = 2.24 -> C
	if report.Predictions[1].PredictedLetterGrade != "C" {
		t.Errorf("Predictions[1].PredictedLetterGrade = %v; want C", report.Predictions[1].PredictedLetterGrade)
	}
	if report.OverallPredictedGPA <= 0 || report.OverallPredictedGPA > 4 {
		t.Errorf("OverallPredictedGPA = %v; want in (0, 4]", report.OverallPredictedGPA)
	}
}

func TestService_GradePredictions_noCourses(t *testing.T) {
	repo := &fakeRepo{record: academic.AcademicRecord{StudentID: "std1", GPA: 3.0}}
	svc := NewService(repo, nil)

	report, err := svc.GradePredictions(context.Background(), "std1")
	if err != nil {
		t.Fatalf("GradePredictions() error = %v", err)
	}
	if report.OverallPredictedGPA != 0.0 {
		t.Errorf("OverallPredictedGPA = %v; want 0.0", report.OverallPredictedGPA)
	}
	if len(report.Predictions) != 0 {
		t.Errorf("len(Predictions) = %d; want 0", len(report.Predictions))
	}
}

func TestService_defaultModel(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil).(*service)
	if _, ok := svc.model.(RuleBasedModel); !ok {
		t.Errorf("model = %T; want RuleBasedModel default", svc.model)
	}
}
