package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/artem13815/meetups/pkg/meetup"
)

// MeetupRepository implements meetup.Repository.
type MeetupRepository struct {
	s *Store
}

func (r *MeetupRepository) Create(_ context.Context, m meetup.Meetup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.Attendees = 0
	m.Participants = nil
	r.s.meetups[m.ID] = m
	return nil
}

func (r *MeetupRepository) GetByID(_ context.Context, id uuid.UUID) (meetup.Meetup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.meetups[id]
	if !ok {
		return meetup.Meetup{}, meetup.ErrNotFound
	}
	return r.s.withAttendees(m), nil
}

func (r *MeetupRepository) List(_ context.Context, f meetup.Filter) ([]meetup.Meetup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	loc := strings.ToLower(strings.TrimSpace(f.Location))
	var res []meetup.Meetup
	for _, m := range r.s.meetups {
		if q != "" && !strings.Contains(strings.ToLower(m.Title), q) && !strings.Contains(strings.ToLower(m.Description), q) {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(m.Location), loc) {
			continue
		}
		if f.Category != "" && m.Category != f.Category {
			continue
		}
		if q == "" && !f.IncludePast && m.DateTime.Before(f.Now) {
			continue
		}
		res = append(res, r.s.withAttendees(m))
	}
	sortByDate(res)
	return page(res, f.Limit, f.Offset), nil
}

func (r *MeetupRepository) Participants(_ context.Context, id uuid.UUID) ([]meetup.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.s.meetups[id]; !ok {
		return nil, meetup.ErrNotFound
	}
	var ps []meetup.Participant
	for k, at := range r.s.registrations {
		if k.meetup != id {
			continue
		}
		u := r.s.users[k.user]
		ps = append(ps, meetup.Participant{ID: u.ID, Name: u.Name, Email: u.Email, RegisteredAt: at})
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].RegisteredAt.Before(ps[j].RegisteredAt) })
	return ps, nil
}

func (r *MeetupRepository) Update(_ context.Context, m meetup.Meetup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.meetups[m.ID]
	if !ok {
		return meetup.ErrNotFound
	}
	if m.MaxCapacity < r.s.countLocked(m.ID) {
		return meetup.ErrCapacityBelowAttendees
	}
	m.HostID = cur.HostID
	m.CreatedAt = cur.CreatedAt
	m.Attendees = 0
	m.Participants = nil
	r.s.meetups[m.ID] = m
	return nil
}

func (r *MeetupRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.meetups[id]; !ok {
		return meetup.ErrNotFound
	}
	r.s.deleteMeetupLocked(id)
	return nil
}

func (r *MeetupRepository) ListByHost(_ context.Context, hostID uuid.UUID) ([]meetup.Meetup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var res []meetup.Meetup
	for _, m := range r.s.meetups {
		if m.HostID == hostID {
			res = append(res, r.s.withAttendees(m))
		}
	}
	sortByDate(res)
	return res, nil
}

func (r *MeetupRepository) ListByAttendee(_ context.Context, userID uuid.UUID) ([]meetup.Meetup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var res []meetup.Meetup
	for k := range r.s.registrations {
		if k.user != userID {
			continue
		}
		if m, ok := r.s.meetups[k.meetup]; ok {
			res = append(res, r.s.withAttendees(m))
		}
	}
	sortByDate(res)
	return res, nil
}

// caller holds mu for writing
func (s *Store) deleteMeetupLocked(id uuid.UUID) {
	delete(s.meetups, id)
	for k := range s.registrations {
		if k.meetup == id {
			delete(s.registrations, k)
		}
	}
}

func sortByDate(ms []meetup.Meetup) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].DateTime.Before(ms[j].DateTime) })
}

func page(ms []meetup.Meetup, limit, offset int) []meetup.Meetup {
	if offset >= len(ms) {
		return nil
	}
	ms = ms[offset:]
	if limit > 0 && limit < len(ms) {
		ms = ms[:limit]
	}
	return ms
}
