package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/meetups/pkg/meetup"
)

// MeetupRepository stores meetups. Attendee counts are computed from
// registrations on read.
type MeetupRepository struct {
	pool *pgxpool.Pool
}

func NewMeetupRepository(pool *pgxpool.Pool) *MeetupRepository {
	return &MeetupRepository{pool: pool}
}

const meetupColumns = `
	m.id, m.title, m.description, m.date_time, m.location, m.max_capacity,
	m.category, m.host_id, m.created_at,
	(SELECT COUNT(*) FROM registrations r WHERE r.meetup_id = m.id) AS attendees`

func (r *MeetupRepository) Create(ctx context.Context, m meetup.Meetup) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO meetups (id, title, description, date_time, location, max_capacity, category, host_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, m.ID, m.Title, m.Description, m.DateTime, m.Location, m.MaxCapacity, string(m.Category), m.HostID, m.CreatedAt)
	return err
}

func (r *MeetupRepository) GetByID(ctx context.Context, id uuid.UUID) (meetup.Meetup, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+meetupColumns+` FROM meetups m WHERE m.id = $1`, id)
	m, err := scanMeetup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return meetup.Meetup{}, meetup.ErrNotFound
	}
	return m, err
}

func (r *MeetupRepository) List(ctx context.Context, f meetup.Filter) ([]meetup.Meetup, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	q := strings.TrimSpace(f.Query)
	if q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, fmt.Sprintf("(m.title ILIKE %s OR m.description ILIKE %s)", p, p))
	} else if !f.IncludePast {
		where = append(where, "m.date_time >= "+arg(f.Now))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		where = append(where, "m.location ILIKE "+arg("%"+escapeLike(loc)+"%"))
	}
	if f.Category != "" {
		where = append(where, "m.category = "+arg(string(f.Category)))
	}

	sql := `SELECT ` + meetupColumns + ` FROM meetups m`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY m.date_time ASC, m.id`
	if f.Limit > 0 {
		sql += ` LIMIT ` + arg(f.Limit)
	}
	if f.Offset > 0 {
		sql += ` OFFSET ` + arg(f.Offset)
	}
	return r.query(ctx, sql, args...)
}

func (r *MeetupRepository) Participants(ctx context.Context, id uuid.UUID) ([]meetup.Participant, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM meetups WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, meetup.ErrNotFound
	}
	rows, err := r.pool.Query(ctx, `
SELECT u.id, u.name, u.email, r.registered_at
FROM registrations r
JOIN users u ON u.id = r.user_id
WHERE r.meetup_id = $1
ORDER BY r.registered_at, u.id
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []meetup.Participant
	for rows.Next() {
		var p meetup.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.RegisteredAt); err != nil {
			return nil, err
		}
		p.RegisteredAt = p.RegisteredAt.UTC()
		res = append(res, p)
	}
	return res, rows.Err()
}

// Update rewrites the editable fields. The capacity check runs under the
// same row lock registrations take.
func (r *MeetupRepository) Update(ctx context.Context, m meetup.Meetup) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := lockMeetup(ctx, tx, m.ID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `
UPDATE meetups
SET title = $2, description = $3, date_time = $4, location = $5, max_capacity = $6, category = $7
WHERE id = $1
	AND $6 >= (SELECT COUNT(*) FROM registrations WHERE meetup_id = $1)
`, m.ID, m.Title, m.Description, m.DateTime, m.Location, m.MaxCapacity, string(m.Category))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return meetup.ErrCapacityBelowAttendees
	}
	return tx.Commit(ctx)
}

func (r *MeetupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM meetups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return meetup.ErrNotFound
	}
	return nil
}

func (r *MeetupRepository) ListByHost(ctx context.Context, hostID uuid.UUID) ([]meetup.Meetup, error) {
	return r.query(ctx, `SELECT `+meetupColumns+` FROM meetups m WHERE m.host_id = $1 ORDER BY m.date_time ASC, m.id`, hostID)
}

func (r *MeetupRepository) ListByAttendee(ctx context.Context, userID uuid.UUID) ([]meetup.Meetup, error) {
	return r.query(ctx, `
SELECT `+meetupColumns+`
FROM meetups m
JOIN registrations reg ON reg.meetup_id = m.id
WHERE reg.user_id = $1
ORDER BY m.date_time ASC, m.id`, userID)
}

func (r *MeetupRepository) query(ctx context.Context, sql string, args ...any) ([]meetup.Meetup, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []meetup.Meetup
	for rows.Next() {
		m, err := scanMeetup(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func scanMeetup(row pgx.Row) (meetup.Meetup, error) {
	var m meetup.Meetup
	var category string
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.DateTime, &m.Location, &m.MaxCapacity,
		&category, &m.HostID, &m.CreatedAt, &m.Attendees); err != nil {
		return meetup.Meetup{}, err
	}
	m.Category = meetup.Category(category)
	m.DateTime = m.DateTime.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

// lockMeetup takes a row lock on the meetup until tx ends.
func lockMeetup(ctx context.Context, tx pgx.Tx, id uuid.UUID) (meetup.Meetup, error) {
	row := tx.QueryRow(ctx, `SELECT `+meetupColumns+` FROM meetups m WHERE m.id = $1 FOR UPDATE OF m`, id)
	m, err := scanMeetup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return meetup.Meetup{}, meetup.ErrNotFound
	}
	return m, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
