package health

import (
	"context"
	"errors"
	"fmt"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Report is the per-dependency outcome of a readiness probe.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	// Ready runs every checker and returns a joined error naming each
	// failing dependency.
	Ready(ctx context.Context) (Report, error)
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

func (s *service) Ready(ctx context.Context) (Report, error) {
	rep := Report{Status: "ok", Checks: make(map[string]string, len(s.checkers))}
	var errs []error
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			rep.Checks[ch.Name()] = "down"
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		rep.Checks[ch.Name()] = "up"
	}
	if len(errs) > 0 {
		rep.Status = "unavailable"
	}
	return rep, errors.Join(errs...)
}
