package lane

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoLinesDetected means no segment survived classification for a side.
	ErrNoLinesDetected = errors.New("no lines detected")

	// ErrDegenerateLine means the averaged slope is zero, so the line never
	// crosses the anchor heights.
	ErrDegenerateLine = errors.New("degenerate line: average slope is zero")

	// ErrInvalidHeight means the image height is not positive.
	ErrInvalidHeight = errors.New("image height must be positive")
)

// AggregationError reports why a side could not be aggregated.
type AggregationError struct {
	Side LaneSide
	Err  error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("%s lane: %v", e.Side, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
