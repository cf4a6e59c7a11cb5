package meetup

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Meetup is an event users can register for. Attendees and Participants are
// read-side projections filled by the repository.
type Meetup struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	DateTime     time.Time     `json:"date_time"`
	Location     string        `json:"location"`
	MaxCapacity  int           `json:"max_capacity"`
	Category     Category      `json:"category"`
	HostID       uuid.UUID     `json:"host_id"`
	CreatedAt    time.Time     `json:"created_at"`
	Attendees    int           `json:"attendees"`
	Participants []Participant `json:"participants,omitempty"`
}

// IsPast reports whether the meetup started strictly before now.
func (m Meetup) IsPast(now time.Time) bool { return m.DateTime.Before(now) }

// Participant is a registered user as shown on the meetup page.
type Participant struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Category is one of a fixed set of meetup topics.
type Category string

const (
	CategoryTechnology Category = "Technology"
	CategoryNature     Category = "Nature"
	CategoryArt        Category = "Art"
	CategoryFood       Category = "Food"
)

var Categories = []Category{CategoryTechnology, CategoryNature, CategoryArt, CategoryFood}

var categoryAliases = map[string]Category{
	"technology":    CategoryTechnology,
	"tech":          CategoryTechnology,
	"nature":        CategoryNature,
	"art":           CategoryArt,
	"art & culture": CategoryArt,
	"food":          CategoryFood,
	"food & drink":  CategoryFood,
}

// ParseCategory maps any accepted spelling onto its canonical Category.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Filter narrows List results. Without a search term and IncludePast only
// upcoming meetups are returned.
type Filter struct {
	Query       string
	Location    string
	Category    Category
	IncludePast bool
	Now         time.Time
	Limit       int
	Offset      int
}

var (
	ErrNotFound               = errors.New("meetup not found")
	ErrForbidden              = errors.New("only the host can change this meetup")
	ErrCapacityBelowAttendees = errors.New("max_capacity cannot be lower than the number of registered attendees")
)

// Repository is the port for meetup persistence.
type Repository interface {
	Create(ctx context.Context, m Meetup) error
	// GetByID fills Attendees but not Participants.
	GetByID(ctx context.Context, id uuid.UUID) (Meetup, error)
	List(ctx context.Context, f Filter) ([]Meetup, error)
	Participants(ctx context.Context, id uuid.UUID) ([]Participant, error)
	// Update fails with ErrCapacityBelowAttendees when the new capacity is
	// lower than the current registration count.
	Update(ctx context.Context, m Meetup) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]Meetup, error)
	ListByAttendee(ctx context.Context, userID uuid.UUID) ([]Meetup, error)
}
