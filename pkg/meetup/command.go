package meetup

import (
	"strings"
	"time"
)

const DefaultLocation = "Online"

// Input is the raw request shape for creating or editing a meetup.
type Input struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DateTime    string `json:"date_time"`
	Location    string `json:"location"`
	MaxCapacity int    `json:"max_capacity"`
	Category    string `json:"category"`
}

// Command is a validated Input.
type Command struct {
	Title       string
	Description string
	DateTime    time.Time
	Location    string
	MaxCapacity int
	Category    Category
}

// ValidationError describes the first invalid field of an Input.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// Validate turns in into a Command. date_time must parse as RFC 3339 and must
// not be before now.
func (in Input) Validate(now time.Time) (Command, error) {
	cmd := Command{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		MaxCapacity: in.MaxCapacity,
	}
	if cmd.Title == "" {
		return Command{}, ValidationError("title is required")
	}
	if strings.TrimSpace(in.DateTime) == "" {
		return Command{}, ValidationError("date_time is required")
	}
	dt, err := time.Parse(time.RFC3339, strings.TrimSpace(in.DateTime))
	if err != nil {
		return Command{}, ValidationError("date_time must be an RFC 3339 timestamp")
	}
	if dt.Before(now) {
		return Command{}, ValidationError("date_time cannot be in the past")
	}
	cmd.DateTime = dt.UTC()
	if cmd.MaxCapacity < 1 {
		return Command{}, ValidationError("max_capacity must be at least 1")
	}
	cat, ok := ParseCategory(in.Category)
	if !ok {
		return Command{}, ValidationError("category must be one of Technology, Nature, Art, Food")
	}
	cmd.Category = cat
	if cmd.Location == "" {
		cmd.Location = DefaultLocation
	}
	return cmd, nil
}
