package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/meetups/pkg/meetup"
	"github.com/artem13815/meetups/pkg/registration"
)

// RegistrationRepository implements registration.Repository on top of a
// read-committed transaction plus a row lock on the meetup.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) InTx(ctx context.Context, fn func(ctx context.Context, st registration.Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, txStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type txStore struct {
	tx pgx.Tx
}

func (s txStore) LockMeetup(ctx context.Context, meetupID uuid.UUID) (meetup.Meetup, error) {
	return lockMeetup(ctx, s.tx, meetupID)
}

func (s txStore) Count(ctx context.Context, meetupID uuid.UUID) (int, error) {
	var n int
	err := s.tx.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE meetup_id = $1`, meetupID).Scan(&n)
	return n, err
}

func (s txStore) Get(ctx context.Context, userID, meetupID uuid.UUID) (registration.Registration, error) {
	row := s.tx.QueryRow(ctx, `
SELECT r.user_id, r.meetup_id, u.name, u.email, r.registered_at
FROM registrations r
JOIN users u ON u.id = r.user_id
WHERE r.user_id = $1 AND r.meetup_id = $2
`, userID, meetupID)
	var reg registration.Registration
	if err := row.Scan(&reg.UserID, &reg.MeetupID, &reg.UserName, &reg.UserEmail, &reg.RegisteredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotRegistered
		}
		return registration.Registration{}, err
	}
	reg.RegisteredAt = reg.RegisteredAt.UTC()
	return reg, nil
}

func (s txStore) Insert(ctx context.Context, reg registration.Registration) error {
	_, err := s.tx.Exec(ctx, `
INSERT INTO registrations (user_id, meetup_id, registered_at)
VALUES ($1, $2, $3)
`, reg.UserID, reg.MeetupID, reg.RegisteredAt)
	switch pgCode(err) {
	case "":
		return err
	case codeUniqueViolation:
		return registration.ErrAlreadyRegistered
	case codeForeignKeyViolation:
		return registration.ErrUnknownUser
	default:
		return err
	}
}

func (s txStore) Delete(ctx context.Context, userID, meetupID uuid.UUID) error {
	cmd, err := s.tx.Exec(ctx, `DELETE FROM registrations WHERE user_id = $1 AND meetup_id = $2`, userID, meetupID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return registration.ErrNotRegistered
	}
	return nil
}
