package academic

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/darasoft/shule/core"
)

var (
	// errors
	ErrStudentNotFound      = errors.New("student not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrCourseCodeExists     = errors.New("a course with this code already exists")
	ErrAlreadyEnrolled      = errors.New("student is already enrolled in this course")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		FilterStudents(ctx context.Context, filter *StudentFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error

		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		GetCourseByCode(ctx context.Context, code string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error

		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		ActiveCoursesForStudent(ctx context.Context, studentID string) ([]Course, error)

		CreateGradeEvent(ctx context.Context, evt GradeEvent) (GradeEvent, error)
		// RecentGradeEvents returns the most recent events first. An empty
		// courseID matches all courses.
		RecentGradeEvents(ctx context.Context, studentID, courseID string, limit int) ([]GradeEvent, error)

		CreateAttendanceEvent(ctx context.Context, evt AttendanceEvent) (AttendanceEvent, error)
		// AttendanceSince returns events dated on or after `since`. An empty
		// courseID matches all courses.
		AttendanceSince(ctx context.Context, studentID, courseID string, since time.Time) ([]AttendanceEvent, error)

		CreateNotification(ctx context.Context, ntf Notification) (Notification, error)
		NotificationsForStudent(ctx context.Context, studentID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) (Notification, error)
	}

	Service interface {
		CreateStudent(ctx context.Context, ns NewStudent) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context, filter *StudentFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error)
		DeleteStudents(ctx context.Context, ids ...string) error

		CreateCourse(ctx context.Context, nc NewCourse) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context) ([]Course, error)
		DeleteCourses(ctx context.Context, ids ...string) error
		EnrollStudent(ctx context.Context, studentID, courseID string) (Enrollment, error)

		RecordGrade(ctx context.Context, ng NewGradeEvent) (GradeEvent, error)
		StudentGrades(ctx context.Context, studentID, courseID string, limit int) ([]GradeEvent, error)

		RecordAttendance(ctx context.Context, na NewAttendanceEvent) (AttendanceEvent, error)
		StudentAttendanceSummary(ctx context.Context, studentID, courseID string, since time.Time) (AttendanceSummary, error)

		Notify(ctx context.Context, nn NewNotification) (Notification, error)
		StudentNotifications(ctx context.Context, studentID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) (Notification, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		UserID:          ns.UserID,
		FirstName:       ns.FirstName,
		LastName:        ns.LastName,
		Email:           ns.Email,
		Department:      ns.Department,
		Gender:          ns.Gender,
		GPA:             Clamp(ns.GPA, 0, 4),
		AttendanceRate:  Clamp(ns.AttendanceRate, 0, 1),
		TotalCredits:    maxInt(ns.TotalCredits, 0),
		CurrentSemester: maxInt(ns.CurrentSemester, 1),
		CurrentYear:     maxInt(ns.CurrentYear, 1),
		EnrolledAt:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) QueryStudents(ctx context.Context, filter *StudentFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter, ordering)
}

func (svc *service) UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.FirstName != "" {
		std.FirstName = us.FirstName
	}
	if us.LastName != "" {
		std.LastName = us.LastName
	}
	if us.Email != "" {
		std.Email = us.Email
	}
	if us.Department != "" {
		std.Department = us.Department
	}
	if us.GPA != nil {
		std.GPA = Clamp(*us.GPA, 0, 4)
	}
	if us.AttendanceRate != nil {
		std.AttendanceRate = Clamp(*us.AttendanceRate, 0, 1)
	}
	if us.TotalCredits != nil {
		std.TotalCredits = maxInt(*us.TotalCredits, 0)
	}
	if us.CurrentSemester != nil {
		std.CurrentSemester = maxInt(*us.CurrentSemester, 1)
	}
	if us.CurrentYear != nil {
		std.CurrentYear = maxInt(*us.CurrentYear, 1)
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) DeleteStudents(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

func (svc *service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	if _, err := svc.repo.GetCourseByCode(ctx, nc.Code); err == nil {
		return Course{}, core.NewValidationError(
			ErrCourseCodeExists, core.FieldError{Field: "code", Error: ErrCourseCodeExists.Error()})
	} else if errors.Cause(err) != ErrCourseNotFound {
		return Course{}, err
	}

	now := time.Now().UTC()
	crs := Course{
		Code:       nc.Code,
		Name:       nc.Name,
		Department: nc.Department,
		Credits:    nc.Credits,
		Difficulty: Clamp(nc.Difficulty, 1, 5),
		Semester:   maxInt(nc.Semester, 1),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) QueryCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *service) DeleteCourses(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

func (svc *service) EnrollStudent(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return Enrollment{}, err
	}
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	enr := Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		Active:     true,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *service) RecordGrade(ctx context.Context, ng NewGradeEvent) (GradeEvent, error) {
	if _, err := svc.repo.GetStudentByID(ctx, ng.StudentID); err != nil {
		return GradeEvent{}, err
	}
	evt := GradeEvent{
		StudentID:      ng.StudentID,
		CourseID:       ng.CourseID,
		Category:       ng.Category,
		Title:          ng.Title,
		PointsEarned:   ng.PointsEarned,
		PointsPossible: ng.PointsPossible,
		CreatedAt:      time.Now().UTC(),
	}
	evt.LetterGrade = PercentToLetter(evt.Percent())
	evt.GradePoints = PercentToPoints(evt.Percent())
	return svc.repo.CreateGradeEvent(ctx, evt)
}

func (svc *service) StudentGrades(ctx context.Context, studentID, courseID string, limit int) ([]GradeEvent, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.RecentGradeEvents(ctx, studentID, courseID, limit)
}

func (svc *service) RecordAttendance(ctx context.Context, na NewAttendanceEvent) (AttendanceEvent, error) {
	if _, err := svc.repo.GetStudentByID(ctx, na.StudentID); err != nil {
		return AttendanceEvent{}, err
	}
	evt := AttendanceEvent{
		StudentID: na.StudentID,
		CourseID:  na.CourseID,
		Status:    na.Status,
		Date:      na.Date,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateAttendanceEvent(ctx, evt)
}

func (svc *service) StudentAttendanceSummary(ctx context.Context, studentID, courseID string, since time.Time) (AttendanceSummary, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return AttendanceSummary{}, err
	}
	events, err := svc.repo.AttendanceSince(ctx, studentID, courseID, since)
	if err != nil {
		return AttendanceSummary{}, err
	}
	return SummarizeAttendance(events), nil
}

func (svc *service) Notify(ctx context.Context, nn NewNotification) (Notification, error) {
	std, err := svc.repo.GetStudentByID(ctx, nn.StudentID)
	if err != nil {
		return Notification{}, err
	}

	ntf := Notification{
		StudentID: nn.StudentID,
		Title:     nn.Title,
		Message:   nn.Message,
		CreatedAt: time.Now().UTC(),
	}
	ntf, err = svc.repo.CreateNotification(ctx, ntf)
	if err != nil {
		return Notification{}, err
	}

	if std.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: std.Name(), Address: std.Email}},
			Subject: ntf.Title,
			BodyStr: ntf.Message,
		})
	}
	return ntf, nil
}

func (svc *service) StudentNotifications(ctx context.Context, studentID string) ([]Notification, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.NotificationsForStudent(ctx, studentID)
}

func (svc *service) MarkNotificationRead(ctx context.Context, id string) (Notification, error) {
	return svc.repo.MarkNotificationRead(ctx, id)
}
