package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/meetups/pkg/meetup"
	"github.com/artem13815/meetups/pkg/registration"
)

// RegistrationRepository implements registration.Repository. InTx holds the
// store's write lock for the whole callback, so callbacks are serialized.
type RegistrationRepository struct {
	s *Store
}

func (r *RegistrationRepository) InTx(ctx context.Context, fn func(ctx context.Context, st registration.Store) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx := &txStore{s: r.s}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type undo struct {
	key     regKey
	at      time.Time
	existed bool
}

type txStore struct {
	s   *Store
	log []undo
}

func (t *txStore) LockMeetup(_ context.Context, meetupID uuid.UUID) (meetup.Meetup, error) {
	m, ok := t.s.meetups[meetupID]
	if !ok {
		return meetup.Meetup{}, meetup.ErrNotFound
	}
	return t.s.withAttendees(m), nil
}

func (t *txStore) Count(_ context.Context, meetupID uuid.UUID) (int, error) {
	return t.s.countLocked(meetupID), nil
}

func (t *txStore) Get(_ context.Context, userID, meetupID uuid.UUID) (registration.Registration, error) {
	at, ok := t.s.registrations[regKey{user: userID, meetup: meetupID}]
	if !ok {
		return registration.Registration{}, registration.ErrNotRegistered
	}
	u := t.s.users[userID]
	return registration.Registration{
		UserID:       userID,
		MeetupID:     meetupID,
		UserName:     u.Name,
		UserEmail:    u.Email,
		RegisteredAt: at,
	}, nil
}

func (t *txStore) Insert(_ context.Context, reg registration.Registration) error {
	k := regKey{user: reg.UserID, meetup: reg.MeetupID}
	if _, ok := t.s.registrations[k]; ok {
		return registration.ErrAlreadyRegistered
	}
	if _, ok := t.s.users[reg.UserID]; !ok {
		return registration.ErrUnknownUser
	}
	if _, ok := t.s.meetups[reg.MeetupID]; !ok {
		return meetup.ErrNotFound
	}
	t.s.registrations[k] = reg.RegisteredAt
	t.log = append(t.log, undo{key: k})
	return nil
}

func (t *txStore) Delete(_ context.Context, userID, meetupID uuid.UUID) error {
	k := regKey{user: userID, meetup: meetupID}
	at, ok := t.s.registrations[k]
	if !ok {
		return registration.ErrNotRegistered
	}
	delete(t.s.registrations, k)
	t.log = append(t.log, undo{key: k, at: at, existed: true})
	return nil
}

func (t *txStore) rollback() {
	for i := len(t.log) - 1; i >= 0; i-- {
		u := t.log[i]
		if u.existed {
			t.s.registrations[u.key] = u.at
		} else {
			delete(t.s.registrations, u.key)
		}
	}
}
