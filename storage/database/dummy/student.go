package dummydb

import (
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

// query returns students in enrollment order; callers must hold the lock.
func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		students = append(students, *repo.db.table[id])
	}
	return students
}

func (repo *studentRepository) CheckEmailUniqueness(email string, excludedStudents ...student.Student) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := func(std student.Student) bool {
		for _, excl := range excludedStudents {
			if std.ID == excl.ID {
				return true
			}
		}
		return false
	}

	for _, std := range repo.query() {
		if email != "" && std.Email == email && !excluded(std) {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = uuid.New().String()
	repo.db.table[std.ID] = &std
	repo.db.order = append(repo.db.order, std.ID)
	return std, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(std student.Student, teamNumber null.Int, clearTeam bool) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origStd, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.Name != "" {
		origStd.Name = std.Name
	}
	if std.Email != "" {
		origStd.Email = std.Email
	}
	if std.ClassCode != "" {
		origStd.ClassCode = std.ClassCode
	}
	if teamNumber.Valid {
		origStd.TeamNumber = teamNumber
	} else if clearTeam {
		origStd.TeamNumber = null.Int{}
	}
	origStd.UpdatedAt = std.UpdatedAt

	return *origStd, nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	order := repo.db.order[:0]
	for _, id := range repo.db.order {
		if _, ok := repo.db.table[id]; ok {
			order = append(order, id)
		}
	}
	repo.db.order = order
	return nil
}
