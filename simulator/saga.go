package simulator

import (
	"errors"
	"fmt"
)

type compensation struct {
	name string
	undo func() error
}

// saga records a compensating action for every forward step that changed
// shared state, so a failed operation can be unwound in reverse order
type saga struct {
	steps []compensation
}

func (s *saga) add(name string, undo func() error) {
	s.steps = append(s.steps, compensation{name: name, undo: undo})
}

// compensate runs every recorded action, last first, and returns the names
// of the actions that ran together with any errors
func (s *saga) compensate() ([]string, error) {
	var (
		done []string
		errs []error
	)
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		done = append(done, step.name)
	}
	s.steps = nil
	return done, errors.Join(errs...)
}
