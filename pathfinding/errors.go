package pathfinding

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a grid or region graph that cannot be searched.
	ErrConfiguration = errors.New("pathfinding: invalid configuration")
	// ErrBounds marks a start or target that maps outside the grid or outside every region.
	ErrBounds = errors.New("pathfinding: out of bounds")
	// ErrSearchActive is returned by Start while another search is still held by the finder.
	ErrSearchActive = errors.New("pathfinding: search already active")
)

// ConfigurationError is fatal at build time; no search may run against the result.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "pathfinding: invalid configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// BoundsError reports a world point that cannot be used as a search endpoint.
type BoundsError struct {
	Point  Point
	Cell   Cell
	Reason string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("pathfinding: %s: point (%.3f, %.3f) maps to cell (%d, %d)",
		e.Reason, e.Point.X, e.Point.Y, e.Cell.X, e.Cell.Y)
}

func (e *BoundsError) Unwrap() error { return ErrBounds }
