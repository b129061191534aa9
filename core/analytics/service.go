package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasoft/shule/core/academic"
)

var nowFunc = time.Now // mockable

type (
	// Repository is the narrow data-access boundary of the scoring engine.
	// Implementations fail with academic.ErrStudentNotFound when the student
	// cannot be resolved and return empty slices otherwise.
	Repository interface {
		AcademicRecord(ctx context.Context, studentID string) (academic.AcademicRecord, error)
		// RecentGrades returns the most recent events first. An empty
		// courseID matches all courses.
		RecentGrades(ctx context.Context, studentID, courseID string, limit int) ([]academic.GradeEvent, error)
		// Attendance returns events dated on or after `since`. An empty
		// courseID matches all courses.
		Attendance(ctx context.Context, studentID, courseID string, since time.Time) ([]academic.AttendanceEvent, error)
		ActiveCourses(ctx context.Context, studentID string) ([]academic.Course, error)
	}

	Service interface {
		StudentFeatures(ctx context.Context, studentID string) (FeatureVector, error)
		DropoutRisk(ctx context.Context, studentID string) (RiskAssessment, error)
		RiskFactors(ctx context.Context, studentID string) ([]Factor, error)
		GradePredictions(ctx context.Context, studentID string) (GradeReport, error)
	}

	service struct {
		repo  Repository
		model RiskModel
	}
)

var _ Service = (*service)(nil)

// NewService builds the analytics service. A nil model defaults to the
// rule-based scorer.
func NewService(repo Repository, model RiskModel) Service {
	if model == nil {
		model = RuleBasedModel{}
	}
	return &service{repo: repo, model: model}
}

func (svc *service) StudentFeatures(ctx context.Context, studentID string) (FeatureVector, error) {
	grades, err := svc.repo.RecentGrades(ctx, studentID, "", GradeWindow)
	if err != nil {
		return FeatureVector{}, errors.Wrap(err, "fetching recent grades")
	}
	attendance, err := svc.repo.Attendance(ctx, studentID, "", attendanceSince())
	if err != nil {
		return FeatureVector{}, errors.Wrap(err, "fetching attendance")
	}
	return ExtractFeatures(grades, attendance), nil
}

func (svc *service) DropoutRisk(ctx context.Context, studentID string) (RiskAssessment, error) {
	fv, err := svc.StudentFeatures(ctx, studentID)
	if err != nil {
		return RiskAssessment{}, err
	}
	return svc.model.Score(fv), nil
}

func (svc *service) RiskFactors(ctx context.Context, studentID string) ([]Factor, error) {
	fv, err := svc.StudentFeatures(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return AnalyzeFactors(fv), nil
}

func (svc *service) GradePredictions(ctx context.Context, studentID string) (GradeReport, error) {
	record, err := svc.repo.AcademicRecord(ctx, studentID)
	if err != nil {
		return GradeReport{}, errors.Wrap(err, "fetching academic record")
	}
	courses, err := svc.repo.ActiveCourses(ctx, studentID)
	if err != nil {
		return GradeReport{}, errors.Wrap(err, "fetching active courses")
	}

	since := attendanceSince()
	preds := make([]GradePrediction, 0, len(courses))
	for _, crs := range courses {
		grades, err := svc.repo.RecentGrades(ctx, studentID, crs.ID, GradeWindow)
		if err != nil {
			return GradeReport{}, errors.Wrapf(err, "fetching grades for course %s", crs.ID)
		}
		attendance, err := svc.repo.Attendance(ctx, studentID, crs.ID, since)
		if err != nil {
			return GradeReport{}, errors.Wrapf(err, "fetching attendance for course %s", crs.ID)
		}

		pred := PredictGrade(record.GPA, courseFeatures(crs, grades, attendance))
		pred.CourseName = crs.Name
		preds = append(preds, pred)
	}

	return GradeReport{
		StudentID:           studentID,
		OverallPredictedGPA: OverallPredictedGPA(preds),
		Predictions:         preds,
	}, nil
}

// courseFeatures derives per-course signals from that course's events.
func courseFeatures(crs academic.Course, grades []academic.GradeEvent, attendance []academic.AttendanceEvent) CourseFeatures {
	if len(grades) > GradeWindow {
		grades = grades[:GradeWindow]
	}
	rate := presentRate(attendance)
	return CourseFeatures{
		CourseID:           crs.ID,
		AssignmentAvg:      categoryPercentAvg(grades, "assignment"),
		QuizAvg:            categoryPercentAvg(grades, "quiz"),
		MidtermScore:       categoryPercentAvg(grades, "midterm"),
		ParticipationScore: rate * 100,
		DifficultyRating:   crs.Difficulty,
		AttendanceRate:     rate,
		GradeTrend:         windowTrend(grades, courseTrendWindow),
		TotalAssignments:   len(grades),
		Consistency:        gradePointsStdDev(grades),
	}
}

func categoryPercentAvg(grades []academic.GradeEvent, category string) float64 {
	var sum float64
	var n int
	for _, evt := range grades {
		if evt.Category != category {
			continue
		}
		sum += evt.Percent()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func attendanceSince() time.Time {
	return nowFunc().AddDate(0, 0, -AttendanceWindowDays)
}
