package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/darasoft/shule/core/academic"
	"github.com/darasoft/shule/core/analytics"
)

// analyticsRepository is a thin read-only view over the academic tables.
type analyticsRepository struct {
	academic *academicRepository
}

var _ analytics.Repository = (*analyticsRepository)(nil) // interface compliance check

func NewAnalyticsRepository(db *sqlx.DB) *analyticsRepository {
	return &analyticsRepository{academic: NewAcademicRepository(db)}
}

func (repo analyticsRepository) AcademicRecord(ctx context.Context, studentID string) (academic.AcademicRecord, error) {
	std, err := repo.academic.GetStudentByID(ctx, studentID)
	if err != nil {
		return academic.AcademicRecord{}, err
	}
	return std.Record(), nil
}

func (repo analyticsRepository) RecentGrades(ctx context.Context, studentID, courseID string, limit int) ([]academic.GradeEvent, error) {
	return repo.academic.RecentGradeEvents(ctx, studentID, courseID, limit)
}

func (repo analyticsRepository) Attendance(ctx context.Context, studentID, courseID string, since time.Time) ([]academic.AttendanceEvent, error) {
	return repo.academic.AttendanceSince(ctx, studentID, courseID, since)
}

func (repo analyticsRepository) ActiveCourses(ctx context.Context, studentID string) ([]academic.Course, error) {
	return repo.academic.ActiveCoursesForStudent(ctx, studentID)
}
