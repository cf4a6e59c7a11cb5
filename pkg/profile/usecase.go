package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/artem13815/meetups/pkg/auth"
	"github.com/artem13815/meetups/pkg/meetup"
)

// Profile is what a signed-in user sees about themselves.
type Profile struct {
	User             auth.User       `json:"user"`
	CreatedMeetups   []meetup.Meetup `json:"createdMeetups"`
	AttendingMeetups []meetup.Meetup `json:"attendingMeetups"`
}

type UseCase interface {
	Get(ctx context.Context, userID uuid.UUID) (Profile, error)
}

type service struct {
	users   auth.UserRepository
	meetups meetup.Repository
}

func NewService(users auth.UserRepository, meetups meetup.Repository) UseCase {
	return &service{users: users, meetups: meetups}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	created, err := s.meetups.ListByHost(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	attending, err := s.meetups.ListByAttendee(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if created == nil {
		created = []meetup.Meetup{}
	}
	if attending == nil {
		attending = []meetup.Meetup{}
	}
	return Profile{User: u, CreatedMeetups: created, AttendingMeetups: attending}, nil
}
