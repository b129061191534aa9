package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/darasoft/shule/core"
	"github.com/darasoft/shule/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateStudent(ctx context.Context, std academic.Student) (academic.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *academicRepository) GetStudentByID(ctx context.Context, id string) (academic.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return academic.Student{}, academic.ErrStudentNotFound
}

func (repo *academicRepository) FilterStudents(ctx context.Context, filter *academic.StudentFilter, ordering []core.DBOrdering) ([]academic.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]academic.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		if filter != nil && !matchesStudentFilter(*std, filter) {
			continue
		}
		students = append(students, *std)
	}

	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	return students, nil
}

func matchesStudentFilter(std academic.Student, filter *academic.StudentFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(std.FirstName), search) &&
			!strings.Contains(strings.ToLower(std.LastName), search) &&
			!strings.Contains(strings.ToLower(std.Email), search) {
			return false
		}
	}
	if filter.Department != "" && !strings.EqualFold(std.Department, filter.Department) {
		return false
	}
	if filter.Year > 0 && std.CurrentYear != filter.Year {
		return false
	}
	return true
}

func (repo *academicRepository) UpdateStudent(ctx context.Context, std academic.Student) (academic.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return academic.Student{}, academic.ErrStudentNotFound
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *academicRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.students, id)
	}
	return nil
}

func (repo *academicRepository) CreateCourse(ctx context.Context, crs academic.Course) (academic.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *academicRepository) GetCourseByID(ctx context.Context, id string) (academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return academic.Course{}, academic.ErrCourseNotFound
}

func (repo *academicRepository) GetCourseByCode(ctx context.Context, code string) (academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.Code == code {
			return *crs, nil
		}
	}
	return academic.Course{}, academic.ErrCourseNotFound
}

func (repo *academicRepository) QueryAllCourses(ctx context.Context) ([]academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]academic.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *academicRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.courses, id)
	}
	return nil
}

func (repo *academicRepository) CreateEnrollment(ctx context.Context, enr academic.Enrollment) (academic.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, e := range repo.db.enrollments {
		if e.StudentID == enr.StudentID && e.CourseID == enr.CourseID {
			return academic.Enrollment{}, academic.ErrAlreadyEnrolled
		}
	}
	enr.ID = uuid.New().String()
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *academicRepository) ActiveCoursesForStudent(ctx context.Context, studentID string) ([]academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]academic.Course, 0)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID != studentID || !enr.Active {
			continue
		}
		if crs, ok := repo.db.courses[enr.CourseID]; ok {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *academicRepository) CreateGradeEvent(ctx context.Context, evt academic.GradeEvent) (academic.GradeEvent, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	evt.ID = uuid.New().String()
	repo.db.grades[evt.ID] = &evt
	return evt, nil
}

func (repo *academicRepository) RecentGradeEvents(ctx context.Context, studentID, courseID string, limit int) ([]academic.GradeEvent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := make([]academic.GradeEvent, 0)
	for _, evt := range repo.db.grades {
		if evt.StudentID != studentID {
			continue
		}
		if courseID != "" && evt.CourseID != courseID {
			continue
		}
		events = append(events, *evt)
	}
	// newest first
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (repo *academicRepository) CreateAttendanceEvent(ctx context.Context, evt academic.AttendanceEvent) (academic.AttendanceEvent, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	evt.ID = uuid.New().String()
	repo.db.attendance[evt.ID] = &evt
	return evt, nil
}

func (repo *academicRepository) AttendanceSince(ctx context.Context, studentID, courseID string, since time.Time) ([]academic.AttendanceEvent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := make([]academic.AttendanceEvent, 0)
	for _, evt := range repo.db.attendance {
		if evt.StudentID != studentID {
			continue
		}
		if courseID != "" && evt.CourseID != courseID {
			continue
		}
		if evt.Date.Before(since) {
			continue
		}
		events = append(events, *evt)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.After(events[j].Date) })
	return events, nil
}

func (repo *academicRepository) CreateNotification(ctx context.Context, ntf academic.Notification) (academic.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ntf.ID = uuid.New().String()
	repo.db.notifications[ntf.ID] = &ntf
	return ntf, nil
}

func (repo *academicRepository) NotificationsForStudent(ctx context.Context, studentID string) ([]academic.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notifs := make([]academic.Notification, 0)
	for _, ntf := range repo.db.notifications {
		if ntf.StudentID == studentID {
			notifs = append(notifs, *ntf)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (repo *academicRepository) MarkNotificationRead(ctx context.Context, id string) (academic.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ntf, ok := repo.db.notifications[id]
	if !ok {
		return academic.Notification{}, academic.ErrNotificationNotFound
	}
	ntf.Read = true
	return *ntf, nil
}
