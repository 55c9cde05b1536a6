package dummydb

import (
	"github.com/google/uuid"

	"github.com/trezcool/shule/core/evaluation"
)

type evaluationRepository struct {
	db *evaluationTable
}

var _ evaluation.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *DB) evaluation.Repository {
	return &evaluationRepository{db: db.evaluation}
}

func (repo *evaluationRepository) CreateCompetency(comp evaluation.Competency) (evaluation.Competency, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	comp.ID = uuid.New().String()
	repo.db.competencies[comp.ID] = &comp
	repo.db.competencyOrder = append(repo.db.competencyOrder, comp.ID)
	return comp, nil
}

func (repo *evaluationRepository) QueryAllCompetencies() ([]evaluation.Competency, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	comps := make([]evaluation.Competency, 0, len(repo.db.competencyOrder))
	for _, id := range repo.db.competencyOrder {
		comps = append(comps, *repo.db.competencies[id])
	}
	return comps, nil
}

func (repo *evaluationRepository) GetCompetencyByID(id string) (evaluation.Competency, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if comp, ok := repo.db.competencies[id]; ok {
		return *comp, nil
	}
	return evaluation.Competency{}, evaluation.ErrCompetencyNotFound
}

func (repo *evaluationRepository) CreateScan(scan evaluation.Scan) (evaluation.Scan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	scan.ID = uuid.New().String()
	repo.db.scans[scan.ID] = &scan
	repo.db.scanOrder = append(repo.db.scanOrder, scan.ID)
	return scan, nil
}

func (repo *evaluationRepository) GetScanByID(id string) (evaluation.Scan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if scan, ok := repo.db.scans[id]; ok {
		return *scan, nil
	}
	return evaluation.Scan{}, evaluation.ErrScanNotFound
}

func (repo *evaluationRepository) QueryScansByClass(classCode string) ([]evaluation.Scan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var scans []evaluation.Scan
	for _, id := range repo.db.scanOrder {
		if scan := repo.db.scans[id]; scan.ClassCode == classCode {
			scans = append(scans, *scan)
		}
	}
	return scans, nil
}

func (repo *evaluationRepository) SaveRating(rating evaluation.Rating) (evaluation.Rating, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// upsert on (scan, student, competency)
	for _, id := range repo.db.ratingOrder {
		orig := repo.db.ratings[id]
		if orig.ScanID == rating.ScanID && orig.StudentID == rating.StudentID && orig.CompetencyID == rating.CompetencyID {
			orig.Score = rating.Score
			orig.Comment = rating.Comment
			orig.UpdatedAt = rating.UpdatedAt
			return *orig, nil
		}
	}

	rating.ID = uuid.New().String()
	repo.db.ratings[rating.ID] = &rating
	repo.db.ratingOrder = append(repo.db.ratingOrder, rating.ID)
	return rating, nil
}

func (repo *evaluationRepository) QueryRatingsByScan(scanID string) ([]evaluation.Rating, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ratings []evaluation.Rating
	for _, id := range repo.db.ratingOrder {
		if rating := repo.db.ratings[id]; rating.ScanID == scanID {
			ratings = append(ratings, *rating)
		}
	}
	return ratings, nil
}
