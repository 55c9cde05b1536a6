package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/event"
)

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sql.DB) event.Repository {
	return &eventRepository{db: sqlx.NewDb(db, "postgres")}
}

const selectEvent = `SELECT id, title, kind, class_code AS classcode, starts_at AS startsat, ends_at AS endsat, created_at AS createdat FROM event`

func (repo *eventRepository) CreateEvent(evt event.Event) (event.Event, error) {
	err := repo.db.Get(&evt,
		`INSERT INTO event (title, kind, class_code, starts_at, ends_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, title, kind, class_code AS classcode, starts_at AS startsat, ends_at AS endsat, created_at AS createdat`,
		evt.Title, evt.Kind, evt.ClassCode, evt.StartsAt, evt.EndsAt, evt.CreatedAt,
	)
	return evt, errors.Wrap(err, "creating event")
}

func (repo *eventRepository) QueryAllEvents() ([]event.Event, error) {
	var events []event.Event
	if err := repo.db.Select(&events, selectEvent+" ORDER BY starts_at"); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return events, nil
}

func (repo *eventRepository) GetEventByID(id string) (event.Event, error) {
	var evt event.Event
	err := repo.db.Get(&evt, selectEvent+" WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return event.Event{}, event.ErrNotFound
	}
	if err != nil {
		return event.Event{}, errors.Wrap(err, "getting event")
	}
	return evt, nil
}

func (repo *eventRepository) DeleteEventsByID(ids ...string) error {
	_, err := repo.db.Exec(`DELETE FROM event WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting events")
}
