package testutil

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/evaluation"
	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  null.BoolFrom(isActive),
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, email, classCode string,
	teamNumber null.Int,
	createdAt ...time.Time,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std, err := repo.CreateStudent(student.Student{
		Name:       name,
		Email:      email,
		ClassCode:  classCode,
		TeamNumber: teamNumber,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateCompetency(t *testing.T, repo evaluation.Repository, name, category string) evaluation.Competency {
	t.Helper()

	comp, err := repo.CreateCompetency(evaluation.Competency{
		Name:      name,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCompetency() failed: %v", err)
	}
	return comp
}

func CreateScan(
	t *testing.T,
	repo evaluation.Repository,
	name, classCode string,
	opensAt time.Time,
	closesAt null.Time,
) evaluation.Scan {
	t.Helper()

	scan, err := repo.CreateScan(evaluation.Scan{
		Name:      name,
		ClassCode: classCode,
		OpensAt:   opensAt.UTC(),
		ClosesAt:  closesAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateScan() failed: %v", err)
	}
	return scan
}

func CreateRating(
	t *testing.T,
	repo evaluation.Repository,
	scanID, studentID, competencyID string,
	score null.Float64,
	comment string,
) evaluation.Rating {
	t.Helper()

	now := time.Now().UTC()
	rating, err := repo.SaveRating(evaluation.Rating{
		ScanID:       scanID,
		StudentID:    studentID,
		CompetencyID: competencyID,
		Score:        score,
		Comment:      comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateRating() failed: %v", err)
	}
	return rating
}

func CreateEvent(
	t *testing.T,
	repo event.Repository,
	title, kind, classCode string,
	startsAt time.Time,
	endsAt null.Time,
) event.Event {
	t.Helper()

	evt, err := repo.CreateEvent(event.Event{
		Title:     title,
		Kind:      kind,
		ClassCode: classCode,
		StartsAt:  startsAt.UTC(),
		EndsAt:    endsAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return evt
}
