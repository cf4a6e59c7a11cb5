package registration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/meetups/pkg/meetup"
)

// Registration links a user to a meetup they attend. UserName and UserEmail
// are read from the user record for display.
type Registration struct {
	UserID       uuid.UUID `json:"user_id"`
	MeetupID     uuid.UUID `json:"meetup_id"`
	UserName     string    `json:"name"`
	UserEmail    string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

var (
	ErrMeetupExpired     = errors.New("registration is closed for past meetups")
	ErrMeetupFull        = errors.New("meetup is full")
	ErrAlreadyRegistered = errors.New("already registered for this meetup")
	ErrNotRegistered     = errors.New("not registered for this meetup")
	// ErrUnknownUser means the caller's user row no longer exists.
	ErrUnknownUser = errors.New("user does not exist")
)

// Store is the set of operations available inside one Repository.InTx call.
type Store interface {
	// LockMeetup loads the meetup and holds it exclusively until the
	// transaction ends. Fails with meetup.ErrNotFound.
	LockMeetup(ctx context.Context, meetupID uuid.UUID) (meetup.Meetup, error)
	Count(ctx context.Context, meetupID uuid.UUID) (int, error)
	// Get fails with ErrNotRegistered.
	Get(ctx context.Context, userID, meetupID uuid.UUID) (Registration, error)
	// Insert fails with ErrAlreadyRegistered on a duplicate pair and
	// ErrUnknownUser when the user row is missing.
	Insert(ctx context.Context, r Registration) error
	Delete(ctx context.Context, userID, meetupID uuid.UUID) error
}

// Repository runs fn atomically: either everything fn wrote is committed or
// nothing is.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
