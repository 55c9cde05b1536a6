package student

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/report"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")

	errTeamNumberText = "team number must be a positive number"
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedStudents ...Student) error
		CreateStudent(std Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		UpdateStudent(std Student, teamNumber null.Int, clearTeam bool) (Student, error)
		DeleteStudentsByID(ids ...string) error
	}

	Service interface {
		Create(ns NewStudent) (Student, error)
		// Query filters the roster in enrollment order; an empty filter returns everyone.
		Query(filter QueryFilter) ([]Student, error)
		GetByID(id string) (Student, error)
		Update(id string, us UpdateStudent) (Student, error)
		AssignTeam(id string, teamNumber int) (Student, error)
		ClearTeam(id string) (Student, error)
		Delete(ids ...string) error
		ExportRoster(filter QueryFilter) (report.Table, error)
		ImportRoster(rows []RosterRow) ([]Student, error)
	}

	service struct {
		repo     Repository
		validate validateFunc
	}

	validateFunc func(ns *NewStudent) error
)

var _ Service = (*service)(nil)

// NewService returns the roster service. validate is applied to every student
// created through Create or ImportRoster.
func NewService(repo Repository, validate validateFunc) Service {
	return &service{repo: repo, validate: validate}
}

func (svc *service) Create(ns NewStudent) (Student, error) {
	if svc.validate != nil {
		if err := svc.validate(&ns); err != nil {
			return Student{}, err
		}
	}
	if ns.Email != "" {
		if err := svc.checkUniqueness(ns.Email); err != nil {
			return Student{}, err
		}
	}

	now := time.Now().UTC()
	std := Student{
		Name:       ns.Name,
		Email:      ns.Email,
		ClassCode:  ns.ClassCode,
		TeamNumber: ns.TeamNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateStudent(std)
}

func (svc *service) checkUniqueness(email string, exclStds ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclStds...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Query(filter QueryFilter) ([]Student, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	if filter.IsEmpty() {
		return students, nil
	}

	crit := filter.criteria()
	filtered := make([]Student, 0, len(students))
	for _, std := range students {
		if crit.Match(schema, std.reportRow()) {
			filtered = append(filtered, std)
		}
	}
	return filtered, nil
}

func (svc *service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *service) Update(id string, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	if us.Email != "" && us.Email != std.Email {
		if err = svc.checkUniqueness(us.Email, std); err != nil {
			return Student{}, err
		}
	}
	std = Student{
		ID:        id,
		Name:      us.Name,
		Email:     us.Email,
		ClassCode: us.ClassCode,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(std, null.Int{}, false)
}

func (svc *service) AssignTeam(id string, teamNumber int) (Student, error) {
	if teamNumber < 1 {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "team_number", Error: errTeamNumberText})
	}
	return svc.repo.UpdateStudent(Student{ID: id, UpdatedAt: time.Now().UTC()}, null.IntFrom(teamNumber), false)
}

func (svc *service) ClearTeam(id string) (Student, error) {
	return svc.repo.UpdateStudent(Student{ID: id, UpdatedAt: time.Now().UTC()}, null.Int{}, true)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteStudentsByID(ids...)
}

// ExportRoster serializes the filtered roster. An unassigned team exports as an
// empty field, never "0".
func (svc *service) ExportRoster(filter QueryFilter) (report.Table, error) {
	students, err := svc.Query(filter)
	if err != nil {
		return report.Table{}, err
	}

	table := report.Table{
		Header: []string{"Name", "Email", "Class", "Team"},
		Rows:   make([][]string, 0, len(students)),
	}
	for _, std := range students {
		team := ""
		if std.TeamNumber.Valid {
			team = strconv.Itoa(std.TeamNumber.Int)
		}
		table.Rows = append(table.Rows, []string{std.Name, std.Email, std.ClassCode, team})
	}
	if err = table.Validate(); err != nil {
		return report.Table{}, err
	}
	return table, nil
}

// ImportRoster enrolls the parsed roster rows in order. The first invalid row
// aborts the import with a field error naming the source line; rows enrolled
// before it remain.
func (svc *service) ImportRoster(rows []RosterRow) ([]Student, error) {
	students := make([]Student, 0, len(rows))
	for _, row := range rows {
		std, err := svc.Create(row.NewStudent)
		if err != nil {
			return nil, rosterLineError(row.Line, err)
		}
		students = append(students, std)
	}
	return students, nil
}
