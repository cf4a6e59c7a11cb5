package registration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// UseCase registers users for meetups and withdraws them.
type UseCase interface {
	Register(ctx context.Context, userID, meetupID uuid.UUID) (Registration, error)
	Withdraw(ctx context.Context, userID, meetupID uuid.UUID) (Registration, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func NewService(repo Repository, opts ...Option) UseCase {
	s := &service{repo: repo, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register checks existence, timing, capacity and duplicates, then inserts.
// The meetup row stays locked for the whole sequence so concurrent callers
// cannot both pass the capacity check.
func (s *service) Register(ctx context.Context, userID, meetupID uuid.UUID) (Registration, error) {
	var out Registration
	err := s.repo.InTx(ctx, func(ctx context.Context, st Store) error {
		m, err := st.LockMeetup(ctx, meetupID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if m.IsPast(now) {
			return ErrMeetupExpired
		}
		n, err := st.Count(ctx, meetupID)
		if err != nil {
			return err
		}
		if n >= m.MaxCapacity {
			return ErrMeetupFull
		}
		if _, err := st.Get(ctx, userID, meetupID); err == nil {
			return ErrAlreadyRegistered
		} else if !errors.Is(err, ErrNotRegistered) {
			return err
		}
		if err := st.Insert(ctx, Registration{UserID: userID, MeetupID: meetupID, RegisteredAt: now}); err != nil {
			return err
		}
		out, err = st.Get(ctx, userID, meetupID)
		return err
	})
	if err != nil {
		return Registration{}, err
	}
	return out, nil
}

// Withdraw removes the caller's registration and returns what was removed.
func (s *service) Withdraw(ctx context.Context, userID, meetupID uuid.UUID) (Registration, error) {
	var out Registration
	err := s.repo.InTx(ctx, func(ctx context.Context, st Store) error {
		r, err := st.Get(ctx, userID, meetupID)
		if err != nil {
			return err
		}
		if err := st.Delete(ctx, userID, meetupID); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return Registration{}, err
	}
	return out, nil
}
