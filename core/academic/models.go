package academic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darasoft/shule/core"
)

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

type Student struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Department      string    `json:"department"`
	Gender          string    `json:"gender"`
	GPA             float64   `json:"gpa"`
	AttendanceRate  float64   `json:"attendance_rate"`
	TotalCredits    int       `json:"total_credits"`
	CurrentSemester int       `json:"current_semester"`
	CurrentYear     int       `json:"current_year"`
	EnrolledAt      time.Time `json:"enrolled_at"` // UTC
	CreatedAt       time.Time `json:"created_at"`  // UTC
	UpdatedAt       time.Time `json:"updated_at"`  // UTC
}

func (s Student) Name() string {
	return core.CleanString(s.FirstName + " " + s.LastName)
}

// Record returns the student's standing snapshot with all fields
// clamped to their documented ranges.
func (s Student) Record() AcademicRecord {
	return AcademicRecord{
		StudentID:       s.ID,
		GPA:             Clamp(s.GPA, 0, 4),
		AttendanceRate:  Clamp(s.AttendanceRate, 0, 1),
		TotalCredits:    maxInt(s.TotalCredits, 0),
		CurrentSemester: maxInt(s.CurrentSemester, 1),
		CurrentYear:     maxInt(s.CurrentYear, 1),
		Department:      s.Department,
		Gender:          s.Gender,
	}
}

// AcademicRecord is an immutable snapshot of one student's standing.
type AcademicRecord struct {
	StudentID       string  `json:"studentId"`
	GPA             float64 `json:"gpa"`
	AttendanceRate  float64 `json:"attendanceRate"`
	TotalCredits    int     `json:"totalCredits"`
	CurrentSemester int     `json:"currentSemester"`
	CurrentYear     int     `json:"currentYear"`
	Department      string  `json:"department"`
	Gender          string  `json:"gender"`
}

type Course struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Credits    int       `json:"credits"`
	Difficulty float64   `json:"difficulty"` // 1 (easy) - 5 (hard)
	Semester   int       `json:"semester"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type Enrollment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseID   string    `json:"course_id"`
	Active     bool      `json:"active"`
	EnrolledAt time.Time `json:"enrolled_at"` // UTC
}

// GradeEvent is one recorded assignment/exam outcome.
type GradeEvent struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"studentId"`
	CourseID       string    `json:"courseId"`
	Category       string    `json:"category,omitempty"` // assignment, quiz, midterm, final
	Title          string    `json:"title,omitempty"`
	PointsEarned   float64   `json:"pointsEarned"`
	PointsPossible float64   `json:"pointsPossible"`
	GradePoints    float64   `json:"gradePoints"` // 0.0 - 4.0
	LetterGrade    string    `json:"letterGrade,omitempty"`
	CreatedAt      time.Time `json:"createdAt"` // UTC
}

// Percent returns the score as a percentage; 0 if no points were possible.
func (g GradeEvent) Percent() float64 {
	if g.PointsPossible <= 0 {
		return 0
	}
	return g.PointsEarned / g.PointsPossible * 100
}

// AttendanceEvent is one date's attendance status for a student in a course.
type AttendanceEvent struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	CourseID  string    `json:"courseId"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

type Notification struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// AttendanceSummary aggregates attendance events for reporting.
// Late arrivals count toward the attended rate here; the risk scoring
// path counts strictly `present`.
type AttendanceSummary struct {
	Total    int     `json:"total"`
	Present  int     `json:"present"`
	Absent   int     `json:"absent"`
	Late     int     `json:"late"`
	Excused  int     `json:"excused"`
	Attended float64 `json:"attended_rate"`
}

func SummarizeAttendance(events []AttendanceEvent) AttendanceSummary {
	var sum AttendanceSummary
	for _, evt := range events {
		sum.Total++
		switch evt.Status {
		case StatusPresent:
			sum.Present++
		case StatusAbsent:
			sum.Absent++
		case StatusLate:
			sum.Late++
		case StatusExcused:
			sum.Excused++
		}
	}
	if sum.Total > 0 {
		sum.Attended = float64(sum.Present+sum.Late) / float64(sum.Total)
	}
	return sum
}

// Input DTOs

type NewStudent struct {
	UserID          string  `json:"user_id"`
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Department      string  `json:"department" validate:"required"`
	Gender          string  `json:"gender" validate:"omitempty,oneof=male female other"`
	GPA             float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
	AttendanceRate  float64 `json:"attendance_rate" validate:"omitempty,min=0,max=1"`
	TotalCredits    int     `json:"total_credits" validate:"omitempty,min=0"`
	CurrentSemester int     `json:"current_semester" validate:"omitempty,min=1"`
	CurrentYear     int     `json:"current_year" validate:"omitempty,min=1"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Department = core.CleanString(ns.Department)
	return validate.Struct(ns)
}

type UpdateStudent struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Department      string   `json:"department"`
	GPA             *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
	AttendanceRate  *float64 `json:"attendance_rate" validate:"omitempty,min=0,max=1"`
	TotalCredits    *int     `json:"total_credits" validate:"omitempty,min=0"`
	CurrentSemester *int     `json:"current_semester" validate:"omitempty,min=1"`
	CurrentYear     *int     `json:"current_year" validate:"omitempty,min=1"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.Department = core.CleanString(us.Department)
	return validate.Struct(us)
}

type NewCourse struct {
	Code       string  `json:"code" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Department string  `json:"department"`
	Credits    int     `json:"credits" validate:"required,min=1"`
	Difficulty float64 `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Semester   int     `json:"semester" validate:"omitempty,min=1"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Code = core.CleanString(nc.Code, true /* lower */)
	nc.Name = core.CleanString(nc.Name)
	nc.Department = core.CleanString(nc.Department)
	return validate.Struct(nc)
}

type NewGradeEvent struct {
	StudentID      string  `json:"student_id" validate:"required"`
	CourseID       string  `json:"course_id" validate:"required"`
	Category       string  `json:"category" validate:"omitempty,oneof=assignment quiz midterm final"`
	Title          string  `json:"title"`
	PointsEarned   float64 `json:"points_earned" validate:"min=0"`
	PointsPossible float64 `json:"points_possible" validate:"required,gt=0"`
}

func (ng *NewGradeEvent) Validate(validate *validator.Validate) error {
	ng.Title = core.CleanString(ng.Title)
	return validate.Struct(ng)
}

type NewAttendanceEvent struct {
	StudentID string    `json:"student_id" validate:"required"`
	CourseID  string    `json:"course_id" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent late excused"`
	Date      time.Time `json:"date" validate:"required"`
}

func (na *NewAttendanceEvent) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

type NewNotification struct {
	StudentID string `json:"student_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	return validate.Struct(nn)
}

type StudentFilter struct {
	Search     string `query:"search"`
	Department string `query:"department"`
	Year       int    `query:"year"`
}

func (sf *StudentFilter) Clean() {
	sf.Search = core.CleanString(sf.Search)
	sf.Department = core.CleanString(sf.Department)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
