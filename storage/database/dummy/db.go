package dummydb

import (
	"sync"

	"github.com/trezcool/shule/core/evaluation"
	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

// dummydb is the in-memory backend used in dev and tests. Tables keep
// insertion order so list queries behave like the postgres backend's
// "ORDER BY created_at".
type (
	DB struct {
		user       *userTable
		student    *studentTable
		evaluation *evaluationTable
		event      *eventTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
		order []string
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
		order []string
	}

	evaluationTable struct {
		sync.RWMutex
		competencies    map[string]*evaluation.Competency
		competencyOrder []string
		scans           map[string]*evaluation.Scan
		scanOrder       []string
		ratings         map[string]*evaluation.Rating
		ratingOrder     []string
	}

	eventTable struct {
		sync.RWMutex
		table map[string]*event.Event
		order []string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{table: make(map[string]*student.Student)},
		evaluation: &evaluationTable{
			competencies: make(map[string]*evaluation.Competency),
			scans:        make(map[string]*evaluation.Scan),
			ratings:      make(map[string]*evaluation.Rating),
		},
		event: &eventTable{table: make(map[string]*event.Event)},
	}
	return db, nil
}

// Reset drops all rows; test helper.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.order = nil
	db.user.Unlock()

	db.student.Lock()
	db.student.table = make(map[string]*student.Student)
	db.student.order = nil
	db.student.Unlock()

	db.evaluation.Lock()
	db.evaluation.competencies = make(map[string]*evaluation.Competency)
	db.evaluation.competencyOrder = nil
	db.evaluation.scans = make(map[string]*evaluation.Scan)
	db.evaluation.scanOrder = nil
	db.evaluation.ratings = make(map[string]*evaluation.Rating)
	db.evaluation.ratingOrder = nil
	db.evaluation.Unlock()

	db.event.Lock()
	db.event.table = make(map[string]*event.Event)
	db.event.order = nil
	db.event.Unlock()
}
