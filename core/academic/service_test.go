package academic

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/darasoft/shule/core"
)

// fakeRepo overrides only the methods a test exercises; calling anything
// else panics via the embedded nil interface.
type fakeRepo struct {
	Repository

	students map[string]Student
	courses  map[string]Course
	grades   []GradeEvent
	notifs   []Notification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		students: make(map[string]Student),
		courses:  make(map[string]Course),
	}
}

func (r *fakeRepo) GetStudentByID(ctx context.Context, id string) (Student, error) {
	std, ok := r.students[id]
	if !ok {
		return Student{}, ErrStudentNotFound
	}
	return std, nil
}

func (r *fakeRepo) GetCourseByCode(ctx context.Context, code string) (Course, error) {
	for _, crs := range r.courses {
		if crs.Code == code {
			return crs, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

func (r *fakeRepo) CreateCourse(ctx context.Context, crs Course) (Course, error) {
	crs.ID = "crs-new"
	r.courses[crs.ID] = crs
	return crs, nil
}

func (r *fakeRepo) CreateGradeEvent(ctx context.Context, evt GradeEvent) (GradeEvent, error) {
	evt.ID = "grd-new"
	r.grades = append(r.grades, evt)
	return evt, nil
}

func (r *fakeRepo) CreateNotification(ctx context.Context, ntf Notification) (Notification, error) {
	ntf.ID = "ntf-new"
	r.notifs = append(r.notifs, ntf)
	return ntf, nil
}

type fakeMailService struct{ sent []*core.EmailMessage }

func (svc *fakeMailService) SendMessages(messages ...*core.EmailMessage) {
	svc.sent = append(svc.sent, messages...)
}

func TestService_RecordGrade(t *testing.T) {
	repo := newFakeRepo()
	repo.students["std1"] = Student{ID: "std1"}
	svc := NewService(repo, &fakeMailService{}, &core.Config{})

	evt, err := svc.RecordGrade(context.Background(), NewGradeEvent{
		StudentID:      "std1",
		CourseID:       "crs1",
		Category:       "quiz",
		PointsEarned:   42.5,
		PointsPossible: 50,
	})
	if err != nil {
		t.Fatalf("RecordGrade() error = %v", err)
	}
	// 85% -> B / 3.0
	if evt.LetterGrade != "B" {
		t.Errorf("LetterGrade = %v; want B", evt.LetterGrade)
	}
	if evt.GradePoints != 3.0 {
		t.Errorf("GradePoints = %v; want 3.0", evt.GradePoints)
	}
	if evt.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestService_RecordGrade_studentNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeMailService{}, &core.Config{})

	_, err := svc.RecordGrade(context.Background(), NewGradeEvent{StudentID: "nope", CourseID: "crs1", PointsPossible: 10})
	if errors.Cause(err) != ErrStudentNotFound {
		t.Errorf("error = %v; want ErrStudentNotFound", err)
	}
}

func TestService_CreateCourse_uniqueCode(t *testing.T) {
	repo := newFakeRepo()
	repo.courses["crs1"] = Course{ID: "crs1", Code: "cs101"}
	svc := NewService(repo, &fakeMailService{}, &core.Config{})

	_, err := svc.CreateCourse(context.Background(), NewCourse{Code: "cs101", Name: "Intro to CS", Credits: 3})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v; want *core.ValidationError", err)
	}

	crs, err := svc.CreateCourse(context.Background(), NewCourse{Code: "cs102", Name: "Data Structures", Credits: 3, Difficulty: 9})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if crs.Difficulty != 5 {
		t.Errorf("Difficulty = %v; want clamped 5", crs.Difficulty)
	}
	if crs.Semester != 1 {
		t.Errorf("Semester = %v; want defaulted 1", crs.Semester)
	}
}

func TestService_Notify(t *testing.T) {
	repo := newFakeRepo()
	repo.students["std1"] = Student{ID: "std1", FirstName: "Asha", LastName: "Mwangi", Email: "asha@test.shule.com"}
	repo.students["std2"] = Student{ID: "std2"} // no email
	mailSvc := &fakeMailService{}
	svc := NewService(repo, mailSvc, &core.Config{})

	ntf, err := svc.Notify(context.Background(), NewNotification{StudentID: "std1", Title: "Low attendance", Message: "See your advisor."})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if ntf.Read {
		t.Error("new notification must start unread")
	}
	if len(mailSvc.sent) != 1 {
		t.Fatalf("len(sent) = %d; want 1", len(mailSvc.sent))
	}
	if got := mailSvc.sent[0].Subject; got != "Low attendance" {
		t.Errorf("Subject = %q; want %q", got, "Low attendance")
	}

	if _, err = svc.Notify(context.Background(), NewNotification{StudentID: "std2", Title: "t", Message: "m"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(mailSvc.sent) != 1 {
		t.Errorf("len(sent) = %d; want still 1 (no email on file)", len(mailSvc.sent))
	}
}

func TestService_StudentAttendanceSummary(t *testing.T) {
	repo := newFakeRepo()
	repo.students["std1"] = Student{ID: "std1"}
	repo.Repository = attendanceRepo{}
	svc := NewService(repo, &fakeMailService{}, &core.Config{})

	sum, err := svc.StudentAttendanceSummary(context.Background(), "std1", "", time.Time{})
	if err != nil {
		t.Fatalf("StudentAttendanceSummary() error = %v", err)
	}
	if sum.Total != 3 || sum.Present != 1 || sum.Late != 1 || sum.Absent != 1 {
		t.Errorf("summary = %+v; want 1 present, 1 late, 1 absent", sum)
	}
}

// attendanceRepo backs the embedded interface for the summary test.
type attendanceRepo struct{ Repository }

func (attendanceRepo) AttendanceSince(ctx context.Context, studentID, courseID string, since time.Time) ([]AttendanceEvent, error) {
	return []AttendanceEvent{
		{Status: StatusPresent},
		{Status: StatusLate},
		{Status: StatusAbsent},
	}, nil
}
