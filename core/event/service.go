package event

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("event not found")

type (
	Repository interface {
		CreateEvent(evt Event) (Event, error)
		QueryAllEvents() ([]Event, error)
		GetEventByID(id string) (Event, error)
		DeleteEventsByID(ids ...string) error
	}

	Service interface {
		Create(ne NewEvent) (Event, error)
		// Query returns matching events ordered by start time.
		Query(filter QueryFilter) ([]Event, error)
		// Calendar returns matching events grouped per UTC day.
		Calendar(filter QueryFilter) ([]DayBucket, error)
		GetByID(id string) (Event, error)
		Delete(ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ne NewEvent) (Event, error) {
	return svc.repo.CreateEvent(Event{
		Title:     ne.Title,
		Kind:      ne.Kind,
		ClassCode: ne.ClassCode,
		StartsAt:  ne.StartsAt.UTC(),
		EndsAt:    ne.EndsAt,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) Query(filter QueryFilter) ([]Event, error) {
	events, err := svc.repo.QueryAllEvents()
	if err != nil {
		return nil, err
	}

	if !filter.IsEmpty() {
		crit := filter.criteria()
		filtered := make([]Event, 0, len(events))
		for _, evt := range events {
			if crit.Match(schema, evt.reportRow()) {
				filtered = append(filtered, evt)
			}
		}
		events = filtered
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })
	return events, nil
}

func (svc *service) Calendar(filter QueryFilter) ([]DayBucket, error) {
	events, err := svc.Query(filter)
	if err != nil {
		return nil, err
	}
	return BucketByDay(events), nil
}

func (svc *service) GetByID(id string) (Event, error) {
	return svc.repo.GetEventByID(id)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteEventsByID(ids...)
}
