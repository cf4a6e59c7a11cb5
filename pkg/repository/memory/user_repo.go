package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/artem13815/meetups/pkg/auth"
)

// UserRepository implements auth.UserRepository.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user auth.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	if _, ok := r.s.emails[user.Email]; ok {
		return auth.ErrEmailTaken
	}
	r.s.users[user.ID] = user
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return r.s.users[id], nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}

// Delete removes a user and everything that references it. Only tests use it.
func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return
	}
	delete(r.s.users, id)
	delete(r.s.emails, u.Email)
	for k := range r.s.registrations {
		if k.user == id {
			delete(r.s.registrations, k)
		}
	}
	for mid, m := range r.s.meetups {
		if m.HostID == id {
			r.s.deleteMeetupLocked(mid)
		}
	}
}
