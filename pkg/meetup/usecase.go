package meetup

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// UseCase encapsulates meetup browsing and host management.
type UseCase interface {
	Create(ctx context.Context, hostID uuid.UUID, in Input) (Meetup, error)
	Get(ctx context.Context, id uuid.UUID) (Meetup, error)
	List(ctx context.Context, f Filter) ([]Meetup, error)
	Update(ctx context.Context, userID, id uuid.UUID, in Input) (Meetup, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
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

func (s *service) Create(ctx context.Context, hostID uuid.UUID, in Input) (Meetup, error) {
	now := s.now().UTC()
	cmd, err := in.Validate(now)
	if err != nil {
		return Meetup{}, err
	}
	m := Meetup{
		ID:          uuid.New(),
		Title:       cmd.Title,
		Description: cmd.Description,
		DateTime:    cmd.DateTime,
		Location:    cmd.Location,
		MaxCapacity: cmd.MaxCapacity,
		Category:    cmd.Category,
		HostID:      hostID,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Meetup{}, err
	}
	return m, nil
}

// Get returns the meetup together with its participant list.
func (s *service) Get(ctx context.Context, id uuid.UUID) (Meetup, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Meetup{}, err
	}
	ps, err := s.repo.Participants(ctx, id)
	if err != nil {
		return Meetup{}, err
	}
	m.Participants = ps
	if m.Participants == nil {
		m.Participants = []Participant{}
	}
	return m, nil
}

func (s *service) List(ctx context.Context, f Filter) ([]Meetup, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Now.IsZero() {
		f.Now = s.now().UTC()
	}
	ms, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if ms == nil {
		ms = []Meetup{}
	}
	return ms, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, in Input) (Meetup, error) {
	m, err := s.owned(ctx, userID, id)
	if err != nil {
		return Meetup{}, err
	}
	cmd, err := in.Validate(s.now().UTC())
	if err != nil {
		return Meetup{}, err
	}
	if cmd.MaxCapacity < m.Attendees {
		return Meetup{}, ErrCapacityBelowAttendees
	}
	m.Title = cmd.Title
	m.Description = cmd.Description
	m.DateTime = cmd.DateTime
	m.Location = cmd.Location
	m.MaxCapacity = cmd.MaxCapacity
	m.Category = cmd.Category
	if err := s.repo.Update(ctx, m); err != nil {
		return Meetup{}, err
	}
	return m, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) owned(ctx context.Context, userID, id uuid.UUID) (Meetup, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Meetup{}, err
	}
	if m.HostID != userID {
		return Meetup{}, ErrForbidden
	}
	return m, nil
}
