package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasoft/shule/core"
	"github.com/darasoft/shule/core/academic"
)

type studentRow struct {
	ID              string      `db:"id"`
	UserID          null.String `db:"user_id"`
	FirstName       string      `db:"first_name"`
	LastName        string      `db:"last_name"`
	Email           null.String `db:"email"`
	Department      null.String `db:"department"`
	Gender          null.String `db:"gender"`
	GPA             float64     `db:"gpa"`
	AttendanceRate  float64     `db:"attendance_rate"`
	TotalCredits    int         `db:"total_credits"`
	CurrentSemester int         `db:"current_semester"`
	CurrentYear     int         `db:"current_year"`
	EnrolledAt      null.Time   `db:"enrolled_at"`
	CreatedAt       null.Time   `db:"created_at"`
	UpdatedAt       null.Time   `db:"updated_at"`
}

func (r studentRow) unpack() academic.Student {
	return academic.Student{
		ID:              r.ID,
		UserID:          r.UserID.String,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email.String,
		Department:      r.Department.String,
		Gender:          r.Gender.String,
		GPA:             r.GPA,
		AttendanceRate:  r.AttendanceRate,
		TotalCredits:    r.TotalCredits,
		CurrentSemester: r.CurrentSemester,
		CurrentYear:     r.CurrentYear,
		EnrolledAt:      r.EnrolledAt.Time,
		CreatedAt:       r.CreatedAt.Time,
		UpdatedAt:       r.UpdatedAt.Time,
	}
}

func packStudent(std academic.Student) studentRow {
	return studentRow{
		ID:              std.ID,
		UserID:          null.NewString(std.UserID, std.UserID != ""),
		FirstName:       std.FirstName,
		LastName:        std.LastName,
		Email:           null.NewString(std.Email, std.Email != ""),
		Department:      null.NewString(std.Department, std.Department != ""),
		Gender:          null.NewString(std.Gender, std.Gender != ""),
		GPA:             std.GPA,
		AttendanceRate:  std.AttendanceRate,
		TotalCredits:    std.TotalCredits,
		CurrentSemester: std.CurrentSemester,
		CurrentYear:     std.CurrentYear,
		EnrolledAt:      null.NewTime(std.EnrolledAt.UTC(), !std.EnrolledAt.IsZero()),
		CreatedAt:       null.NewTime(std.CreatedAt.UTC(), !std.CreatedAt.IsZero()),
		UpdatedAt:       null.NewTime(std.UpdatedAt.UTC(), !std.UpdatedAt.IsZero()),
	}
}

type courseRow struct {
	ID         string      `db:"id"`
	Code       string      `db:"code"`
	Name       string      `db:"name"`
	Department null.String `db:"department"`
	Credits    int         `db:"credits"`
	Difficulty float64     `db:"difficulty"`
	Semester   int         `db:"semester"`
	CreatedAt  null.Time   `db:"created_at"`
	UpdatedAt  null.Time   `db:"updated_at"`
}

func (r courseRow) unpack() academic.Course {
	return academic.Course{
		ID:         r.ID,
		Code:       r.Code,
		Name:       r.Name,
		Department: r.Department.String,
		Credits:    r.Credits,
		Difficulty: r.Difficulty,
		Semester:   r.Semester,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

type gradeEventRow struct {
	ID             string      `db:"id"`
	StudentID      string      `db:"student_id"`
	CourseID       string      `db:"course_id"`
	Category       null.String `db:"category"`
	Title          null.String `db:"title"`
	PointsEarned   float64     `db:"points_earned"`
	PointsPossible float64     `db:"points_possible"`
	GradePoints    float64     `db:"grade_points"`
	LetterGrade    null.String `db:"letter_grade"`
	CreatedAt      null.Time   `db:"created_at"`
}

func (r gradeEventRow) unpack() academic.GradeEvent {
	return academic.GradeEvent{
		ID:             r.ID,
		StudentID:      r.StudentID,
		CourseID:       r.CourseID,
		Category:       r.Category.String,
		Title:          r.Title.String,
		PointsEarned:   r.PointsEarned,
		PointsPossible: r.PointsPossible,
		GradePoints:    r.GradePoints,
		LetterGrade:    r.LetterGrade.String,
		CreatedAt:      r.CreatedAt.Time,
	}
}

type attendanceEventRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	Status    string    `db:"status"`
	Date      time.Time `db:"date"`
	CreatedAt null.Time `db:"created_at"`
}

func (r attendanceEventRow) unpack() academic.AttendanceEvent {
	return academic.AttendanceEvent{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Status:    r.Status,
		Date:      r.Date,
		CreatedAt: r.CreatedAt.Time,
	}
}

type notificationRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Read      bool      `db:"read"`
	CreatedAt null.Time `db:"created_at"`
}

func (r notificationRow) unpack() academic.Notification {
	return academic.Notification{
		ID:        r.ID,
		StudentID: r.StudentID,
		Title:     r.Title,
		Message:   r.Message,
		Read:      r.Read,
		CreatedAt: r.CreatedAt.Time,
	}
}

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo academicRepository) CreateStudent(ctx context.Context, std academic.Student) (academic.Student, error) {
	std.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (id, user_id, first_name, last_name, email, department, gender, gpa, attendance_rate,
		                     total_credits, current_semester, current_year, enrolled_at, created_at, updated_at)
		VALUES (:id, :user_id, :first_name, :last_name, :email, :department, :gender, :gpa, :attendance_rate,
		        :total_credits, :current_semester, :current_year, :enrolled_at, :created_at, :updated_at)`,
		packStudent(std))
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo academicRepository) GetStudentByID(ctx context.Context, id string) (academic.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academic.Student{}, academic.ErrStudentNotFound
	}
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return academic.Student{}, trapNoRowsErr(err, academic.ErrStudentNotFound, "finding student")
	}
	return row.unpack(), nil
}

func (repo academicRepository) FilterStudents(ctx context.Context, filter *academic.StudentFilter, ordering []core.DBOrdering) ([]academic.Student, error) {
	query := `SELECT * FROM student`
	var clauses []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			clauses = append(clauses, fmt.Sprintf("(first_name ILIKE %s OR last_name ILIKE %s OR email ILIKE %s)", p, p, p))
		}
		if filter.Department != "" {
			clauses = append(clauses, "department ILIKE "+arg(filter.Department))
		}
		if filter.Year > 0 {
			clauses = append(clauses, "current_year = "+arg(filter.Year))
		}
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]academic.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.unpack())
	}
	return students, nil
}

func (repo academicRepository) UpdateStudent(ctx context.Context, std academic.Student) (academic.Student, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE student
		SET first_name = :first_name, last_name = :last_name, email = :email, department = :department,
		    gender = :gender, gpa = :gpa, attendance_rate = :attendance_rate, total_credits = :total_credits,
		    current_semester = :current_semester, current_year = :current_year, updated_at = :updated_at
		WHERE id = :id`,
		packStudent(std))
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return academic.Student{}, academic.ErrStudentNotFound
	}
	return std, nil
}

func (repo academicRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting students")
}

func (repo academicRepository) CreateCourse(ctx context.Context, crs academic.Course) (academic.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO course (id, code, name, department, credits, difficulty, semester, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		crs.ID, crs.Code, crs.Name, null.NewString(crs.Department, crs.Department != ""),
		crs.Credits, crs.Difficulty, crs.Semester, crs.CreatedAt.UTC(), crs.UpdatedAt.UTC())
	if err != nil {
		return academic.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo academicRepository) GetCourseByID(ctx context.Context, id string) (academic.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academic.Course{}, academic.ErrCourseNotFound
	}
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return academic.Course{}, trapNoRowsErr(err, academic.ErrCourseNotFound, "finding course")
	}
	return row.unpack(), nil
}

func (repo academicRepository) GetCourseByCode(ctx context.Context, code string) (academic.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE code = $1`, code); err != nil {
		return academic.Course{}, trapNoRowsErr(err, academic.ErrCourseNotFound, "finding course by code")
	}
	return row.unpack(), nil
}

func (repo academicRepository) QueryAllCourses(ctx context.Context) ([]academic.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course ORDER BY code`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]academic.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.unpack())
	}
	return courses, nil
}

func (repo academicRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting courses")
}

func (repo academicRepository) CreateEnrollment(ctx context.Context, enr academic.Enrollment) (academic.Enrollment, error) {
	enr.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO enrollment (id, student_id, course_id, active, enrolled_at)
		VALUES ($1, $2, $3, $4, $5)`,
		enr.ID, enr.StudentID, enr.CourseID, enr.Active, enr.EnrolledAt.UTC())
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return academic.Enrollment{}, academic.ErrAlreadyEnrolled
		}
		return academic.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo academicRepository) ActiveCoursesForStudent(ctx context.Context, studentID string) ([]academic.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT c.* FROM course c
		JOIN enrollment e ON e.course_id = c.id
		WHERE e.student_id = $1 AND e.active
		ORDER BY c.code`,
		studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying active courses")
	}
	courses := make([]academic.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.unpack())
	}
	return courses, nil
}

func (repo academicRepository) CreateGradeEvent(ctx context.Context, evt academic.GradeEvent) (academic.GradeEvent, error) {
	evt.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO grade_event (id, student_id, course_id, category, title, points_earned, points_possible,
		                         grade_points, letter_grade, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		evt.ID, evt.StudentID, evt.CourseID,
		null.NewString(evt.Category, evt.Category != ""), null.NewString(evt.Title, evt.Title != ""),
		evt.PointsEarned, evt.PointsPossible, evt.GradePoints,
		null.NewString(evt.LetterGrade, evt.LetterGrade != ""), evt.CreatedAt.UTC())
	if err != nil {
		return academic.GradeEvent{}, errors.Wrap(err, "inserting grade event")
	}
	return evt, nil
}

func (repo academicRepository) RecentGradeEvents(ctx context.Context, studentID, courseID string, limit int) ([]academic.GradeEvent, error) {
	query := `SELECT * FROM grade_event WHERE student_id = $1`
	args := []interface{}{studentID}
	if courseID != "" {
		query += ` AND course_id = $2`
		args = append(args, courseID)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	var rows []gradeEventRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying grade events")
	}
	events := make([]academic.GradeEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.unpack())
	}
	return events, nil
}

func (repo academicRepository) CreateAttendanceEvent(ctx context.Context, evt academic.AttendanceEvent) (academic.AttendanceEvent, error) {
	evt.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO attendance_event (id, student_id, course_id, status, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		evt.ID, evt.StudentID, evt.CourseID, evt.Status, evt.Date.UTC(), evt.CreatedAt.UTC())
	if err != nil {
		return academic.AttendanceEvent{}, errors.Wrap(err, "inserting attendance event")
	}
	return evt, nil
}

func (repo academicRepository) AttendanceSince(ctx context.Context, studentID, courseID string, since time.Time) ([]academic.AttendanceEvent, error) {
	query := `SELECT * FROM attendance_event WHERE student_id = $1 AND date >= $2`
	args := []interface{}{studentID, since.UTC()}
	if courseID != "" {
		query += ` AND course_id = $3`
		args = append(args, courseID)
	}
	query += ` ORDER BY date DESC`

	var rows []attendanceEventRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance events")
	}
	events := make([]academic.AttendanceEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.unpack())
	}
	return events, nil
}

func (repo academicRepository) CreateNotification(ctx context.Context, ntf academic.Notification) (academic.Notification, error) {
	ntf.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO notification (id, student_id, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ntf.ID, ntf.StudentID, ntf.Title, ntf.Message, ntf.Read, ntf.CreatedAt.UTC())
	if err != nil {
		return academic.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return ntf, nil
}

func (repo academicRepository) NotificationsForStudent(ctx context.Context, studentID string) ([]academic.Notification, error) {
	var rows []notificationRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM notification WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]academic.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.unpack())
	}
	return notifs, nil
}

func (repo academicRepository) MarkNotificationRead(ctx context.Context, id string) (academic.Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academic.Notification{}, academic.ErrNotificationNotFound
	}
	var row notificationRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE notification SET read = TRUE WHERE id = $1 RETURNING *`, id)
	if err != nil {
		return academic.Notification{}, trapNoRowsErr(err, academic.ErrNotificationNotFound, "marking notification read")
	}
	return row.unpack(), nil
}
