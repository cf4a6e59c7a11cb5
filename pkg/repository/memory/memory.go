// Package memory keeps every repository in process memory. It backs the test
// suites and STORAGE=memory; data is lost on restart.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/meetups/pkg/auth"
	"github.com/artem13815/meetups/pkg/meetup"
)

type regKey struct {
	user   uuid.UUID
	meetup uuid.UUID
}

// Store is the shared state behind the repositories returned by its accessors.
type Store struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]auth.User
	emails        map[string]uuid.UUID
	meetups       map[uuid.UUID]meetup.Meetup
	registrations map[regKey]time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]auth.User),
		emails:        make(map[string]uuid.UUID),
		meetups:       make(map[uuid.UUID]meetup.Meetup),
		registrations: make(map[regKey]time.Time),
	}
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s: s} }
func (s *Store) Meetups() *MeetupRepository             { return &MeetupRepository{s: s} }
func (s *Store) Registrations() *RegistrationRepository { return &RegistrationRepository{s: s} }

// caller holds mu
func (s *Store) countLocked(meetupID uuid.UUID) int {
	n := 0
	for k := range s.registrations {
		if k.meetup == meetupID {
			n++
		}
	}
	return n
}

// caller holds mu
func (s *Store) withAttendees(m meetup.Meetup) meetup.Meetup {
	m.Attendees = s.countLocked(m.ID)
	return m
}
