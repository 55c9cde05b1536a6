package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/evaluation"
)

type evaluationRepository struct {
	db *sqlx.DB
}

var _ evaluation.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *sql.DB) evaluation.Repository {
	return &evaluationRepository{db: sqlx.NewDb(db, "postgres")}
}

const (
	selectCompetency = `SELECT id, name, category, created_at AS createdat FROM competency`
	selectScan       = `SELECT id, name, class_code AS classcode, opens_at AS opensat, closes_at AS closesat, created_at AS createdat FROM scan`
	selectRating     = `SELECT id, scan_id AS scanid, student_id AS studentid, competency_id AS competencyid, score, comment, created_at AS createdat, updated_at AS updatedat FROM rating`
)

func (repo *evaluationRepository) CreateCompetency(comp evaluation.Competency) (evaluation.Competency, error) {
	err := repo.db.Get(&comp,
		`INSERT INTO competency (name, category, created_at) VALUES ($1, $2, $3)
		 RETURNING id, name, category, created_at AS createdat`,
		comp.Name, comp.Category, comp.CreatedAt,
	)
	return comp, errors.Wrap(err, "creating competency")
}

func (repo *evaluationRepository) QueryAllCompetencies() ([]evaluation.Competency, error) {
	var comps []evaluation.Competency
	if err := repo.db.Select(&comps, selectCompetency+" ORDER BY created_at"); err != nil {
		return nil, errors.Wrap(err, "querying competencies")
	}
	return comps, nil
}

func (repo *evaluationRepository) GetCompetencyByID(id string) (evaluation.Competency, error) {
	var comp evaluation.Competency
	err := repo.db.Get(&comp, selectCompetency+" WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return evaluation.Competency{}, evaluation.ErrCompetencyNotFound
	}
	if err != nil {
		return evaluation.Competency{}, errors.Wrap(err, "getting competency")
	}
	return comp, nil
}

func (repo *evaluationRepository) CreateScan(scan evaluation.Scan) (evaluation.Scan, error) {
	err := repo.db.Get(&scan,
		`INSERT INTO scan (name, class_code, opens_at, closes_at, created_at) VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, class_code AS classcode, opens_at AS opensat, closes_at AS closesat, created_at AS createdat`,
		scan.Name, scan.ClassCode, scan.OpensAt, scan.ClosesAt, scan.CreatedAt,
	)
	return scan, errors.Wrap(err, "creating scan")
}

func (repo *evaluationRepository) GetScanByID(id string) (evaluation.Scan, error) {
	var scan evaluation.Scan
	err := repo.db.Get(&scan, selectScan+" WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return evaluation.Scan{}, evaluation.ErrScanNotFound
	}
	if err != nil {
		return evaluation.Scan{}, errors.Wrap(err, "getting scan")
	}
	return scan, nil
}

func (repo *evaluationRepository) QueryScansByClass(classCode string) ([]evaluation.Scan, error) {
	var scans []evaluation.Scan
	if err := repo.db.Select(&scans, selectScan+" WHERE class_code = $1 ORDER BY created_at", classCode); err != nil {
		return nil, errors.Wrap(err, "querying scans")
	}
	return scans, nil
}

func (repo *evaluationRepository) SaveRating(rating evaluation.Rating) (evaluation.Rating, error) {
	err := repo.db.Get(&rating,
		`INSERT INTO rating (scan_id, student_id, competency_id, score, comment, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (scan_id, student_id, competency_id)
		 DO UPDATE SET score = EXCLUDED.score, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at
		 RETURNING id, scan_id AS scanid, student_id AS studentid, competency_id AS competencyid, score, comment, created_at AS createdat, updated_at AS updatedat`,
		rating.ScanID, rating.StudentID, rating.CompetencyID, rating.Score, rating.Comment, rating.CreatedAt, rating.UpdatedAt,
	)
	return rating, errors.Wrap(err, "saving rating")
}

func (repo *evaluationRepository) QueryRatingsByScan(scanID string) ([]evaluation.Rating, error) {
	var ratings []evaluation.Rating
	if err := repo.db.Select(&ratings, selectRating+" WHERE scan_id = $1 ORDER BY created_at", scanID); err != nil {
		return nil, errors.Wrap(err, "querying ratings")
	}
	return ratings, nil
}
