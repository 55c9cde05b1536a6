package dummydb

import (
	"github.com/google/uuid"

	"github.com/trezcool/shule/core/event"
)

type eventRepository struct {
	db *eventTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) CreateEvent(evt event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt.ID = uuid.New().String()
	repo.db.table[evt.ID] = &evt
	repo.db.order = append(repo.db.order, evt.ID)
	return evt, nil
}

func (repo *eventRepository) QueryAllEvents() ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := make([]event.Event, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		events = append(events, *repo.db.table[id])
	}
	return events, nil
}

func (repo *eventRepository) GetEventByID(id string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if evt, ok := repo.db.table[id]; ok {
		return *evt, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) DeleteEventsByID(ids ...string) error {
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
