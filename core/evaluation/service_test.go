package evaluation_test

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/evaluation"
	"github.com/trezcool/shule/core/report"
	"github.com/trezcool/shule/core/student"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

func setup(t *testing.T) (evaluation.Service, evaluation.Repository, student.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	evalRepo := dummydb.NewEvaluationRepository(db)
	stdRepo := dummydb.NewStudentRepository(db)
	stdSvc := student.NewService(stdRepo, nil)
	return evaluation.NewService(evalRepo, stdSvc), evalRepo, stdRepo
}

func Test_service_Rate_upserts(t *testing.T) {
	svc, evalRepo, stdRepo := setup(t)

	now := time.Now().UTC()
	comp := testutil.CreateCompetency(t, evalRepo, "Collaboration", "Soft skills")
	scan := testutil.CreateScan(t, evalRepo, "Week 12", "5V1", now.Add(-time.Hour), null.Time{})
	std := testutil.CreateStudent(t, stdRepo, "Anna de Jong", "anna@school.example", "5V1", null.IntFrom(1))

	first, err := svc.Rate(evaluation.NewRating{
		ScanID: scan.ID, StudentID: std.ID, CompetencyID: comp.ID,
		Score: null.Float64From(3),
	})
	if err != nil {
		t.Fatalf("Rate() failed: %v", err)
	}

	// rating the same (scan, student, competency) again overwrites, it never
	// piles up a second rating
	second, err := svc.Rate(evaluation.NewRating{
		ScanID: scan.ID, StudentID: std.ID, CompetencyID: comp.ID,
		Score: null.Float64From(5), Comment: "much better",
	})
	if err != nil {
		t.Fatalf("Rate() failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("failed! id = %v; want %v", second.ID, first.ID)
	}

	ratings, err := evalRepo.QueryRatingsByScan(scan.ID)
	if err != nil {
		t.Fatalf("QueryRatingsByScan() failed: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("failed! ratings = %d; want 1", len(ratings))
	}
	if got := ratings[0]; !got.Score.Valid || got.Score.Float64 != 5 || got.Comment != "much better" {
		t.Errorf("failed! rating = %+v", got)
	}
}

func Test_service_Rate_requiresOpenScan(t *testing.T) {
	svc, evalRepo, stdRepo := setup(t)

	now := time.Now().UTC()
	comp := testutil.CreateCompetency(t, evalRepo, "Collaboration", "Soft skills")
	closed := testutil.CreateScan(t, evalRepo, "Week 10", "5V1", now.Add(-48*time.Hour), null.TimeFrom(now.Add(-24*time.Hour)))
	pending := testutil.CreateScan(t, evalRepo, "Week 14", "5V1", now.Add(24*time.Hour), null.Time{})
	std := testutil.CreateStudent(t, stdRepo, "Anna de Jong", "anna@school.example", "5V1", null.IntFrom(1))

	nr := evaluation.NewRating{StudentID: std.ID, CompetencyID: comp.ID, Score: null.Float64From(4)}

	nr.ScanID = closed.ID
	if _, err := svc.Rate(nr); err != evaluation.ErrScanClosed {
		t.Errorf("Rate() error = %v, want %v", err, evaluation.ErrScanClosed)
	}
	nr.ScanID = pending.ID
	if _, err := svc.Rate(nr); err != evaluation.ErrScanClosed {
		t.Errorf("Rate() error = %v, want %v", err, evaluation.ErrScanClosed)
	}
	nr.ScanID = "lol"
	if _, err := svc.Rate(nr); err != evaluation.ErrScanNotFound {
		t.Errorf("Rate() error = %v, want %v", err, evaluation.ErrScanNotFound)
	}
}

func Test_service_Heatmap_definitionOrder(t *testing.T) {
	svc, evalRepo, stdRepo := setup(t)

	now := time.Now().UTC()
	collab := testutil.CreateCompetency(t, evalRepo, "Collaboration", "Soft skills")
	planning := testutil.CreateCompetency(t, evalRepo, "Planning", "Organisation")
	scan := testutil.CreateScan(t, evalRepo, "Week 12", "5V1", now.Add(-time.Hour), null.Time{})
	std := testutil.CreateStudent(t, stdRepo, "Anna de Jong", "anna@school.example", "5V1", null.IntFrom(1))

	// only the second competency gets rated
	testutil.CreateRating(t, evalRepo, scan.ID, std.ID, planning.ID, null.Float64From(4), "")

	cells, err := svc.Heatmap(scan.ID)
	if err != nil {
		t.Fatalf("Heatmap() failed: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("failed! cells = %d; want 2", len(cells))
	}
	// competencies keep their definition order, rated or not
	if cells[0].CompetencyID != collab.ID || cells[1].CompetencyID != planning.ID {
		t.Errorf("failed! order = %v, %v", cells[0].Competency, cells[1].Competency)
	}
	if cells[0].Count != 0 || cells[0].Mean.Valid {
		t.Errorf("failed! unrated cell = %+v; want count 0 and a null mean", cells[0])
	}
	if cells[1].Count != 1 || !cells[1].Mean.Valid || cells[1].Mean.Float64 != 4 {
		t.Errorf("failed! rated cell = %+v", cells[1])
	}
}

func Test_service_TeamHeatmap_unassignedBucket(t *testing.T) {
	svc, evalRepo, stdRepo := setup(t)

	now := time.Now().UTC()
	collab := testutil.CreateCompetency(t, evalRepo, "Collaboration", "Soft skills")
	scan := testutil.CreateScan(t, evalRepo, "Week 12", "5V1", now.Add(-time.Hour), null.Time{})
	anna := testutil.CreateStudent(t, stdRepo, "Anna de Jong", "anna@school.example", "5V1", null.IntFrom(1))
	chris := testutil.CreateStudent(t, stdRepo, "Chris Smit", "chris@school.example", "5V1", null.Int{})

	testutil.CreateRating(t, evalRepo, scan.ID, anna.ID, collab.ID, null.Float64From(4), "")
	testutil.CreateRating(t, evalRepo, scan.ID, chris.ID, collab.ID, null.Float64From(2), "")

	sums, err := svc.TeamHeatmap(scan.ID, collab.ID)
	if err != nil {
		t.Fatalf("TeamHeatmap() failed: %v", err)
	}
	want := []report.Summary{
		{Key: "Team 1", Count: 1, Mean: null.Float64From(4)},
		{Key: "Unassigned", Count: 1, Mean: null.Float64From(2)},
	}
	if len(sums) != len(want) {
		t.Fatalf("failed! summaries = %+v; want %+v", sums, want)
	}
	for i, w := range want {
		if sums[i] != w {
			t.Errorf("failed! summaries[%d] = %+v; want %+v", i, sums[i], w)
		}
	}

	if _, err = svc.TeamHeatmap(scan.ID, "lol"); err != evaluation.ErrCompetencyNotFound {
		t.Errorf("TeamHeatmap() error = %v, want %v", err, evaluation.ErrCompetencyNotFound)
	}
}
