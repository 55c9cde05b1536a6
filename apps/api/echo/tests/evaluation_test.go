package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/evaluation"
	"github.com/trezcool/shule/core/report"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

func Test_evaluationApi_rate(t *testing.T) {
	resetDB(t)

	now := time.Now().UTC()
	comp := testutil.CreateCompetency(t, evalRepo, "Collaboration", "Soft skills")
	openScan := testutil.CreateScan(t, evalRepo, "Week 12", "5V1", now.Add(-time.Hour), null.Time{})
	closedScan := testutil.CreateScan(t, evalRepo, "Week 10", "5V1", now.Add(-48*time.Hour), null.TimeFrom(now.Add(-24*time.Hour)))
	std := testutil.CreateStudent(t, stdRepo, "Anna de Jong", "anna@school.example", "5V1", null.IntFrom(1))

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	token := getToken(t, teacher)

	rating := func(studentID, competencyID string, score null.Float64, comment string) []byte {
		return marchallObj(t, evaluation.NewRating{
			StudentID:    studentID,
			CompetencyID: competencyID,
			Score:        score,
			Comment:      comment,
		})
	}

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/scans/" + openScan.ID + "/ratings",
			body: rating(std.ID, comp.ID, null.Float64From(4), ""), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "score or comment required", path: "/v1/scans/" + openScan.ID + "/ratings", token: token,
			body: rating(std.ID, comp.ID, null.Float64{}, ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"score": "a rating needs a score or a comment"}),
		},
		{
			name: "score out of scale", path: "/v1/scans/" + openScan.ID + "/ratings", token: token,
			body: rating(std.ID, comp.ID, null.Float64From(7), ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"score": "score must be between 1 and 5"}),
		},
		{
			name: "closed scan", path: "/v1/scans/" + closedScan.ID + "/ratings", token: token,
			body: rating(std.ID, comp.ID, null.Float64From(4), ""), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "scan is not open for ratings"}),
		},
		{
			name: "unknown scan", path: "/v1/scans/lol/ratings", token: token,
			body: rating(std.ID, comp.ID, null.Float64From(4), ""), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "rated", path: "/v1/scans/" + openScan.ID + "/ratings", token: token,
			body: rating(std.ID, comp.ID, null.Float64From(4), "nice"), wantCode: http.StatusCreated,
		},
		{
			name: "comment-only rating keeps a null score", path: "/v1/scans/" + openScan.ID + "/ratings", token: token,
			body: rating(std.ID, comp.ID, null.Float64{}, "no show this week"), wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var saved evaluation.Rating
				if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if saved.ScanID != openScan.ID {
					t.Errorf("failed! scan_id = %v; want %v", saved.ScanID, openScan.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_evaluationApi_scans_classCode(t *testing.T) {
	resetDB(t)

	comp := testutil.CreateCompetency(t, evalRepo, "Collaboration", "Soft skills")
	anna := testutil.CreateStudent(t, stdRepo, "Anna de Jong", "anna@school.example", "5V1", null.IntFrom(1))

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	token := getToken(t, teacher)

	// scans created through the API must land on the same canonical class code
	// as the students, whatever casing the client sent
	req, rec := newAuthRequest(http.MethodPost, "/v1/scans", token, marchallObj(t, evaluation.NewScan{Name: "Week 12", ClassCode: "5v1"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var scan evaluation.Scan
	if err := json.Unmarshal(rec.Body.Bytes(), &scan); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if scan.ClassCode != "5V1" {
		t.Errorf("failed! class_code = %q; want %q", scan.ClassCode, "5V1")
	}

	testutil.CreateRating(t, evalRepo, scan.ID, anna.ID, comp.ID, null.Float64From(4), "")

	t.Run("query by class", func(t *testing.T) {
		for _, class := range []string{"5V1", "5v1"} {
			req, rec := newAuthRequest(http.MethodGet, "/v1/scans?class="+class, token)
			app.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}
			want := marchallList(t, scan)
			if ok, err := jsonBytesEqual(t, rec.Body.Bytes(), want); err != nil || !ok {
				t.Errorf("failed! class=%s data = %v; wantData %v (err %v)", class, rec.Body.String(), string(want), err)
			}
		}
	})

	t.Run("team heatmap finds the class's students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scans/"+scan.ID+"/teams?competency="+comp.ID, token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		want := marchallList(t, report.Summary{Key: "Team 1", Count: 1, Mean: null.Float64From(4)})
		if ok, err := jsonBytesEqual(t, rec.Body.Bytes(), want); err != nil || !ok {
			t.Errorf("failed! data = %v; wantData %v (err %v)", rec.Body.String(), string(want), err)
		}
	})
}

func Test_evaluationApi_heatmap(t *testing.T) {
	resetDB(t)

	now := time.Now().UTC()
	collab := testutil.CreateCompetency(t, evalRepo, "Collaboration", "Soft skills")
	planning := testutil.CreateCompetency(t, evalRepo, "Planning", "Organisation")
	scan := testutil.CreateScan(t, evalRepo, "Week 12", "5V1", now.Add(-time.Hour), null.Time{})
	anna := testutil.CreateStudent(t, stdRepo, "Anna de Jong", "anna@school.example", "5V1", null.IntFrom(1))
	bram := testutil.CreateStudent(t, stdRepo, "Bram Visser", "bram@school.example", "5V1", null.IntFrom(2))

	testutil.CreateRating(t, evalRepo, scan.ID, anna.ID, collab.ID, null.Float64From(4), "")
	testutil.CreateRating(t, evalRepo, scan.ID, bram.ID, collab.ID, null.Float64From(3), "")
	// Planning only gets a comment-only rating: it must surface with a null
	// mean, not a 0.
	testutil.CreateRating(t, evalRepo, scan.ID, anna.ID, planning.ID, null.Float64{}, "needs work")

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	token := getToken(t, teacher)

	t.Run("heatmap", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scans/"+scan.ID+"/heatmap", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		want := marchallList(t,
			evaluation.Cell{CompetencyID: collab.ID, Competency: "Collaboration", Category: "Soft skills", Count: 2, Mean: null.Float64From(3.5)},
			evaluation.Cell{CompetencyID: planning.ID, Competency: "Planning", Category: "Organisation", Count: 1, Mean: null.Float64{}},
		)
		if ok, err := jsonBytesEqual(t, rec.Body.Bytes(), want); err != nil || !ok {
			t.Errorf("failed! data = %v; wantData %v (err %v)", rec.Body.String(), string(want), err)
		}
	})

	t.Run("team heatmap", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scans/"+scan.ID+"/teams?competency="+collab.ID, token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		want := marchallList(t,
			report.Summary{Key: "Team 1", Count: 1, Mean: null.Float64From(4)},
			report.Summary{Key: "Team 2", Count: 1, Mean: null.Float64From(3)},
		)
		if ok, err := jsonBytesEqual(t, rec.Body.Bytes(), want); err != nil || !ok {
			t.Errorf("failed! data = %v; wantData %v (err %v)", rec.Body.String(), string(want), err)
		}
	})

	t.Run("heatmap CSV renders no data as empty, not 0", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scans/"+scan.ID+"/heatmap.csv", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		want := `"Competency","Category","Ratings","Mean"` + "\n" +
			`"Collaboration","Soft skills","2","3.5"` + "\n" +
			`"Planning","Organisation","1",""` + "\n"
		if got := rec.Body.String(); got != want {
			t.Errorf("failed! body = %q; want %q", got, want)
		}
	})
}

func Test_evaluationApi_trend(t *testing.T) {
	resetDB(t)

	now := time.Now().UTC()
	collab := testutil.CreateCompetency(t, evalRepo, "Collaboration", "Soft skills")
	planning := testutil.CreateCompetency(t, evalRepo, "Planning", "Organisation")
	prev := testutil.CreateScan(t, evalRepo, "Week 10", "5V1", now.Add(-14*24*time.Hour), null.TimeFrom(now.Add(-13*24*time.Hour)))
	cur := testutil.CreateScan(t, evalRepo, "Week 12", "5V1", now.Add(-time.Hour), null.Time{})
	anna := testutil.CreateStudent(t, stdRepo, "Anna de Jong", "anna@school.example", "5V1", null.IntFrom(1))

	testutil.CreateRating(t, evalRepo, prev.ID, anna.ID, collab.ID, null.Float64From(3), "")
	testutil.CreateRating(t, evalRepo, cur.ID, anna.ID, collab.ID, null.Float64From(4), "")
	// Planning has no baseline: the delta must stay null, never a fabricated
	// "+4 from 0".
	testutil.CreateRating(t, evalRepo, cur.ID, anna.ID, planning.ID, null.Float64From(4), "")

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	token := getToken(t, teacher)

	t.Run("previous param required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scans/"+cur.ID+"/trend", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("trend", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scans/"+cur.ID+"/trend?previous="+prev.ID, token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		want := marchallList(t,
			evaluation.TrendCell{
				CompetencyID: collab.ID, Competency: "Collaboration", Category: "Soft skills",
				Current: null.Float64From(4), Previous: null.Float64From(3), Delta: null.Float64From(1),
			},
			evaluation.TrendCell{
				CompetencyID: planning.ID, Competency: "Planning", Category: "Organisation",
				Current: null.Float64From(4), Previous: null.Float64{}, Delta: null.Float64{},
			},
		)
		if ok, err := jsonBytesEqual(t, rec.Body.Bytes(), want); err != nil || !ok {
			t.Errorf("failed! data = %v; wantData %v (err %v)", rec.Body.String(), string(want), err)
		}
	})
}
