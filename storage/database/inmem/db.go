package inmemdb

import (
	"sync"

	"github.com/darasoft/shule/core/academic"
	"github.com/darasoft/shule/core/user"
)

// DB is a thread-safe in-memory store used in tests and local spikes.
type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	students      map[string]*academic.Student
	courses       map[string]*academic.Course
	enrollments   map[string]*academic.Enrollment
	grades        map[string]*academic.GradeEvent
	attendance    map[string]*academic.AttendanceEvent
	notifications map[string]*academic.Notification
}

func Open() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		students:      make(map[string]*academic.Student),
		courses:       make(map[string]*academic.Course),
		enrollments:   make(map[string]*academic.Enrollment),
		grades:        make(map[string]*academic.GradeEvent),
		attendance:    make(map[string]*academic.AttendanceEvent),
		notifications: make(map[string]*academic.Notification),
	}
}
