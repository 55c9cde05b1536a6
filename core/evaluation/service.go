package evaluation

import (
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/report"
	"github.com/trezcool/shule/core/student"
)

var (
	// errors
	ErrScanNotFound       = errors.New("scan not found")
	ErrCompetencyNotFound = errors.New("competency not found")
	ErrScanClosed         = errors.New("scan is not open for ratings")
)

type (
	Repository interface {
		CreateCompetency(comp Competency) (Competency, error)
		// QueryAllCompetencies returns competencies in definition order.
		QueryAllCompetencies() ([]Competency, error)
		GetCompetencyByID(id string) (Competency, error)
		CreateScan(scan Scan) (Scan, error)
		GetScanByID(id string) (Scan, error)
		// QueryScansByClass returns a class's scans in creation order.
		QueryScansByClass(classCode string) ([]Scan, error)
		// SaveRating upserts on (scan, student, competency).
		SaveRating(rating Rating) (Rating, error)
		QueryRatingsByScan(scanID string) ([]Rating, error)
	}

	Service interface {
		AddCompetency(nc NewCompetency) (Competency, error)
		Competencies() ([]Competency, error)
		CreateScan(ns NewScan) (Scan, error)
		GetScan(id string) (Scan, error)
		ScansForClass(classCode string) ([]Scan, error)
		Rate(nr NewRating) (Rating, error)
		Heatmap(scanID string) ([]Cell, error)
		TeamHeatmap(scanID, competencyID string) ([]report.Summary, error)
		Trend(currentScanID, previousScanID string) ([]TrendCell, error)
		ExportHeatmap(scanID string) (report.Table, error)
	}

	service struct {
		repo   Repository
		stdSvc student.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, stdSvc student.Service) Service {
	return &service{repo: repo, stdSvc: stdSvc}
}

func (svc *service) AddCompetency(nc NewCompetency) (Competency, error) {
	return svc.repo.CreateCompetency(Competency{
		Name:      nc.Name,
		Category:  nc.Category,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) Competencies() ([]Competency, error) {
	return svc.repo.QueryAllCompetencies()
}

func (svc *service) CreateScan(ns NewScan) (Scan, error) {
	opensAt := ns.OpensAt
	if opensAt.IsZero() {
		opensAt = time.Now().UTC()
	}
	return svc.repo.CreateScan(Scan{
		Name:      ns.Name,
		ClassCode: ns.ClassCode,
		OpensAt:   opensAt.UTC(),
		ClosesAt:  ns.ClosesAt,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) GetScan(id string) (Scan, error) {
	return svc.repo.GetScanByID(id)
}

func (svc *service) ScansForClass(classCode string) ([]Scan, error) {
	return svc.repo.QueryScansByClass(classCode)
}

func (svc *service) Rate(nr NewRating) (Rating, error) {
	scan, err := svc.repo.GetScanByID(nr.ScanID)
	if err != nil {
		return Rating{}, err
	}
	if !scan.IsOpenAt(time.Now().UTC()) {
		return Rating{}, ErrScanClosed
	}
	if _, err = svc.repo.GetCompetencyByID(nr.CompetencyID); err != nil {
		return Rating{}, err
	}
	if _, err = svc.stdSvc.GetByID(nr.StudentID); err != nil {
		return Rating{}, err
	}

	now := time.Now().UTC()
	return svc.repo.SaveRating(Rating{
		ScanID:       nr.ScanID,
		StudentID:    nr.StudentID,
		CompetencyID: nr.CompetencyID,
		Score:        nr.Score,
		Comment:      nr.Comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Heatmap aggregates a scan's ratings per competency, in competency definition
// order. Competencies without a single scored rating appear with a null mean.
func (svc *service) Heatmap(scanID string) ([]Cell, error) {
	comps, rowsByComp, err := svc.scanRows(scanID)
	if err != nil {
		return nil, err
	}

	cells := make([]Cell, 0, len(comps))
	for _, comp := range comps {
		rows := rowsByComp[comp.ID]
		cells = append(cells, Cell{
			CompetencyID: comp.ID,
			Competency:   comp.Name,
			Category:     comp.Category,
			Count:        len(rows),
			Mean:         report.Mean(rows, "score"),
		})
	}
	return cells, nil
}

// TeamHeatmap aggregates one competency's ratings per team, ordered by team key.
func (svc *service) TeamHeatmap(scanID, competencyID string) ([]report.Summary, error) {
	comp, err := svc.repo.GetCompetencyByID(competencyID)
	if err != nil {
		return nil, err
	}
	comps, rowsByComp, err := svc.scanRows(scanID)
	if err != nil {
		return nil, err
	}

	all := make([]report.Row, 0, len(rowsByComp))
	for _, c := range comps {
		all = append(all, rowsByComp[c.ID]...)
	}
	rows := report.Apply(ratingSchema, all, report.Criteria{"competency": report.Equals(comp.Name)})

	groups := report.GroupBy(rows, func(r report.Row) string { return r.Text("team").String })
	sums := report.Summarize(groups, "score")
	return report.SortSummaries(sums, report.ByKey, false), nil
}

// Trend joins the current scan's per-competency means with a previous scan's.
// The delta stays null wherever a baseline is missing; it is never fabricated
// from a missing value.
func (svc *service) Trend(currentScanID, previousScanID string) ([]TrendCell, error) {
	current, err := svc.Heatmap(currentScanID)
	if err != nil {
		return nil, err
	}
	previous, err := svc.Heatmap(previousScanID)
	if err != nil {
		return nil, err
	}

	prevByComp := make(map[string]Cell, len(previous))
	for _, cell := range previous {
		prevByComp[cell.CompetencyID] = cell
	}

	cells := make([]TrendCell, 0, len(current))
	for _, cur := range current {
		prev := prevByComp[cur.CompetencyID] // zero Cell has a null Mean
		cells = append(cells, TrendCell{
			CompetencyID: cur.CompetencyID,
			Competency:   cur.Competency,
			Category:     cur.Category,
			Current:      cur.Mean,
			Previous:     prev.Mean,
			Delta:        report.Delta(cur.Mean, prev.Mean),
		})
	}
	return cells, nil
}

// ExportHeatmap serializes a scan's heatmap. Cells without data export as
// empty fields, never "0".
func (svc *service) ExportHeatmap(scanID string) (report.Table, error) {
	cells, err := svc.Heatmap(scanID)
	if err != nil {
		return report.Table{}, err
	}

	table := report.Table{
		Header: []string{"Competency", "Category", "Ratings", "Mean"},
		Rows:   make([][]string, 0, len(cells)),
	}
	for _, cell := range cells {
		table.Rows = append(table.Rows, []string{
			cell.Competency,
			cell.Category,
			strconv.Itoa(cell.Count),
			report.NumberCell(cell.Mean, 1),
		})
	}
	if err = table.Validate(); err != nil {
		return report.Table{}, err
	}
	return table, nil
}

// scanRows loads a scan's ratings grouped per competency, with competencies in
// definition order.
func (svc *service) scanRows(scanID string) ([]Competency, map[string][]report.Row, error) {
	scan, err := svc.repo.GetScanByID(scanID)
	if err != nil {
		return nil, nil, err
	}
	comps, err := svc.repo.QueryAllCompetencies()
	if err != nil {
		return nil, nil, err
	}
	ratings, err := svc.repo.QueryRatingsByScan(scan.ID)
	if err != nil {
		return nil, nil, err
	}
	teamKeys, err := svc.teamKeys(scan.ClassCode)
	if err != nil {
		return nil, nil, err
	}

	compByID := make(map[string]Competency, len(comps))
	for _, comp := range comps {
		compByID[comp.ID] = comp
	}

	rowsByComp := make(map[string][]report.Row, len(comps))
	for _, r := range ratings {
		comp, ok := compByID[r.CompetencyID]
		if !ok {
			continue
		}
		rowsByComp[comp.ID] = append(rowsByComp[comp.ID], r.reportRow(comp, teamKeys[r.StudentID]))
	}
	return comps, rowsByComp, nil
}

// teamKeys maps a class's student IDs to a display team key ("Team 2", or
// "Unassigned" for students without a team).
func (svc *service) teamKeys(classCode string) (map[string]string, error) {
	students, err := svc.stdSvc.Query(student.QueryFilter{ClassCode: classCode})
	if err != nil {
		return nil, err
	}
	keys := make(map[string]string, len(students))
	for _, std := range students {
		if std.TeamNumber.Valid {
			keys[std.ID] = "Team " + strconv.Itoa(std.TeamNumber.Int)
		} else {
			keys[std.ID] = "Unassigned"
		}
	}
	return keys, nil
}
