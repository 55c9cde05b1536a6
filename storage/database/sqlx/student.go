package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sql.DB) student.Repository {
	return &studentRepository{db: sqlx.NewDb(db, "postgres")}
}

type studentRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	ClassCode  string    `db:"class_code"`
	TeamNumber null.Int  `db:"team_number"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row studentRow) toStudent() student.Student {
	return student.Student{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		ClassCode:  row.ClassCode,
		TeamNumber: row.TeamNumber,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

const selectStudent = `SELECT id, name, email, class_code, team_number, created_at, updated_at FROM student`

func (repo *studentRepository) CheckEmailUniqueness(email string, excludedStudents ...student.Student) error {
	if email == "" {
		return nil
	}
	exclIDs := pq.StringArray{}
	for _, std := range excludedStudents {
		exclIDs = append(exclIDs, std.ID)
	}

	var n int
	err := repo.db.Get(&n,
		`SELECT count(*) FROM student WHERE email = $1 AND NOT (id = ANY($2))`,
		email, exclIDs,
	)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if n > 0 {
		return student.ErrEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	var row studentRow
	err := repo.db.Get(&row,
		`INSERT INTO student (name, email, class_code, team_number, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, name, email, class_code, team_number, created_at, updated_at`,
		std.Name, std.Email, std.ClassCode, std.TeamNumber, std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.Select(&rows, selectStudent+" ORDER BY created_at"); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, selectStudent+" WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) UpdateStudent(std student.Student, teamNumber null.Int, clearTeam bool) (student.Student, error) {
	// only save set fields; clearTeam forces team_number back to NULL
	var row studentRow
	err := repo.db.Get(&row,
		`UPDATE student SET
			name        = COALESCE(NULLIF($2, ''), name),
			email       = COALESCE(NULLIF($3, ''), email),
			class_code  = COALESCE(NULLIF($4, ''), class_code),
			team_number = CASE WHEN $5 THEN NULL ELSE COALESCE($6, team_number) END,
			updated_at  = $7
		 WHERE id = $1
		 RETURNING id, name, email, class_code, team_number, created_at, updated_at`,
		std.ID, std.Name, std.Email, std.ClassCode, clearTeam, teamNumber, std.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	_, err := repo.db.Exec(`DELETE FROM student WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting students")
}
