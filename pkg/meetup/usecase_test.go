package meetup_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/meetups/pkg/auth"
	"github.com/artem13815/meetups/pkg/meetup"
	"github.com/artem13815/meetups/pkg/registration"
	"github.com/artem13815/meetups/pkg/repository/memory"
)

var now = time.Date(2031, 3, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func setup(t *testing.T) (*memory.Store, meetup.UseCase, uuid.UUID) {
	t.Helper()
	st := memory.NewStore()
	host := auth.User{ID: uuid.New(), Email: "host@x.com", Name: "Host", CreatedAt: now}
	require.NoError(t, st.Users().Create(context.Background(), host))
	return st, meetup.NewService(st.Meetups(), meetup.WithClock(clock)), host.ID
}

func input(title string, at time.Time, capacity int, category string) meetup.Input {
	return meetup.Input{
		Title:       title,
		Description: title + " description",
		DateTime:    at.Format(time.RFC3339),
		Location:    "Stockholm HQ",
		MaxCapacity: capacity,
		Category:    category,
	}
}

func TestCreateAndGet(t *testing.T) {
	_, uc, host := setup(t)
	ctx := context.Background()

	m, err := uc.Create(ctx, host, input("React Meetup", now.Add(72*time.Hour), 50, "Technology"))
	require.NoError(t, err)
	assert.Equal(t, host, m.HostID)
	assert.Equal(t, now, m.CreatedAt)

	got, err := uc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "React Meetup", got.Title)
	assert.Equal(t, 0, got.Attendees)
	assert.NotNil(t, got.Participants)
	assert.Empty(t, got.Participants)

	_, err = uc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, meetup.ErrNotFound)
}

func TestCreateRejectsInvalid(t *testing.T) {
	_, uc, host := setup(t)
	_, err := uc.Create(context.Background(), host, input("Old", now.Add(-time.Hour), 5, "Art"))
	var verr meetup.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestGetIncludesParticipants(t *testing.T) {
	st, uc, host := setup(t)
	ctx := context.Background()
	m, err := uc.Create(ctx, host, input("Hike", now.Add(time.Hour), 5, "Nature"))
	require.NoError(t, err)

	reg := registration.NewService(st.Registrations(), registration.WithClock(clock))
	_, err = reg.Register(ctx, host, m.ID)
	require.NoError(t, err)

	got, err := uc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, host, got.Participants[0].ID)
	assert.Equal(t, "Host", got.Participants[0].Name)
	assert.Equal(t, 1, got.Attendees)
}

func TestListFilters(t *testing.T) {
	st, uc, host := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, host, input("DevOps Night", now.Add(240*time.Hour), 40, "Technology"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, host, input("React Meetup", now.Add(72*time.Hour), 50, "Technology"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, host, input("Wine tasting", now.Add(48*time.Hour), 10, "Food & Drink"))
	require.NoError(t, err)
	// already happened; inserted directly since validation rejects past dates
	require.NoError(t, st.Meetups().Create(ctx, meetup.Meetup{
		ID: uuid.New(), Title: "Old React talk", DateTime: now.Add(-48 * time.Hour),
		Location: "Online", MaxCapacity: 5, Category: meetup.CategoryTechnology, HostID: host,
	}))

	all, err := uc.List(ctx, meetup.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Wine tasting", all[0].Title)
	assert.Equal(t, "React Meetup", all[1].Title)
	assert.Equal(t, "DevOps Night", all[2].Title)

	withPast, err := uc.List(ctx, meetup.Filter{IncludePast: true})
	require.NoError(t, err)
	assert.Len(t, withPast, 4)

	search, err := uc.List(ctx, meetup.Filter{Query: "react"})
	require.NoError(t, err)
	assert.Len(t, search, 2, "search term includes past meetups")

	food, err := uc.List(ctx, meetup.Filter{Category: meetup.CategoryFood})
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "Wine tasting", food[0].Title)

	loc, err := uc.List(ctx, meetup.Filter{Location: "stockholm"})
	require.NoError(t, err)
	assert.Len(t, loc, 3)

	paged, err := uc.List(ctx, meetup.Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "React Meetup", paged[0].Title)

	none, err := uc.List(ctx, meetup.Filter{Query: "nothing matches"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdateAndDeleteHostOnly(t *testing.T) {
	st, uc, host := setup(t)
	ctx := context.Background()
	other := auth.User{ID: uuid.New(), Email: "o@x.com", Name: "Other"}
	require.NoError(t, st.Users().Create(ctx, other))

	m, err := uc.Create(ctx, host, input("Sketching", now.Add(time.Hour), 3, "Art"))
	require.NoError(t, err)

	_, err = uc.Update(ctx, other.ID, m.ID, input("Hijacked", now.Add(time.Hour), 3, "Art"))
	assert.ErrorIs(t, err, meetup.ErrForbidden)
	assert.ErrorIs(t, uc.Delete(ctx, other.ID, m.ID), meetup.ErrForbidden)

	updated, err := uc.Update(ctx, host, m.ID, input("Sketching II", now.Add(2*time.Hour), 8, "Art & Culture"))
	require.NoError(t, err)
	assert.Equal(t, "Sketching II", updated.Title)
	assert.Equal(t, 8, updated.MaxCapacity)

	got, err := uc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sketching II", got.Title)
	assert.Equal(t, host, got.HostID)

	require.NoError(t, uc.Delete(ctx, host, m.ID))
	_, err = uc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, meetup.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, host, m.ID), meetup.ErrNotFound)
}

func TestUpdateCannotShrinkBelowAttendees(t *testing.T) {
	st, uc, host := setup(t)
	ctx := context.Background()
	m, err := uc.Create(ctx, host, input("Picnic", now.Add(time.Hour), 2, "Food"))
	require.NoError(t, err)

	guest := auth.User{ID: uuid.New(), Email: "g@x.com", Name: "Guest"}
	require.NoError(t, st.Users().Create(ctx, guest))
	reg := registration.NewService(st.Registrations(), registration.WithClock(clock))
	_, err = reg.Register(ctx, host, m.ID)
	require.NoError(t, err)
	_, err = reg.Register(ctx, guest.ID, m.ID)
	require.NoError(t, err)

	_, err = uc.Update(ctx, host, m.ID, input("Picnic", now.Add(time.Hour), 1, "Food"))
	assert.ErrorIs(t, err, meetup.ErrCapacityBelowAttendees)

	_, err = uc.Update(ctx, host, m.ID, input("Picnic", now.Add(time.Hour), 2, "Food"))
	assert.NoError(t, err)
}
