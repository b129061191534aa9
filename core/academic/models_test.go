package academic

import (
	"math"
	"testing"
)

func TestStudent_Record_clamped(t *testing.T) {
	std := Student{
		ID:              "std1",
		GPA:             5.2,
		AttendanceRate:  -0.3,
		TotalCredits:    -10,
		CurrentSemester: 0,
		CurrentYear:     0,
		Department:      "CS",
	}
	rec := std.Record()
	if rec.GPA != 4.0 {
		t.Errorf("GPA = %v; want clamped 4.0", rec.GPA)
	}
	if rec.AttendanceRate != 0.0 {
		t.Errorf("AttendanceRate = %v; want clamped 0.0", rec.AttendanceRate)
	}
	if rec.TotalCredits != 0 {
		t.Errorf("TotalCredits = %v; want 0", rec.TotalCredits)
	}
	if rec.CurrentSemester != 1 || rec.CurrentYear != 1 {
		t.Errorf("CurrentSemester, CurrentYear = %v, %v; want 1, 1", rec.CurrentSemester, rec.CurrentYear)
	}
	if rec.StudentID != "std1" || rec.Department != "CS" {
		t.Errorf("identity fields not carried over: %+v", rec)
	}
}

func TestGradeEvent_Percent(t *testing.T) {
	tests := []struct {
		name    string
		earned  float64
		posible float64
		want    float64
	}{
		{name: "full marks", earned: 50, posible: 50, want: 100},
		{name: "partial", earned: 42.5, posible: 50, want: 85},
		{name: "zero possible", earned: 10, posible: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := GradeEvent{PointsEarned: tt.earned, PointsPossible: tt.posible}
			if got := evt.Percent(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percent() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestSummarizeAttendance(t *testing.T) {
	events := []AttendanceEvent{
		{Status: StatusPresent},
		{Status: StatusPresent},
		{Status: StatusLate},
		{Status: StatusAbsent},
		{Status: StatusExcused},
		{Status: StatusAbsent},
	}
	sum := SummarizeAttendance(events)
	if sum.Total != 6 {
		t.Errorf("Total = %d; want 6", sum.Total)
	}
	if sum.Present != 2 || sum.Late != 1 || sum.Absent != 2 || sum.Excused != 1 {
		t.Errorf("counts = %+v; want 2 present, 1 late, 2 absent, 1 excused", sum)
	}
	// late counts as attended in the reporting summary
	if math.Abs(sum.Attended-0.5) > 1e-9 {
		t.Errorf("Attended = %v; want 0.5", sum.Attended)
	}
}

func TestSummarizeAttendance_empty(t *testing.T) {
	sum := SummarizeAttendance(nil)
	if sum.Total != 0 || sum.Attended != 0 {
		t.Errorf("SummarizeAttendance(nil) = %+v; want zero summary", sum)
	}
}

func TestStudent_Name(t *testing.T) {
	std := Student{FirstName: " Asha", LastName: "Mwangi "}
	if got := std.Name(); got != "Asha Mwangi" {
		t.Errorf("Name() = %q; want %q", got, "Asha Mwangi")
	}
}
