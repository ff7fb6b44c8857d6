package imaging

import "github.com/pkg/errors"

var (
	// ErrEmptyImage is returned for nil images or images with no pixels.
	ErrEmptyImage = errors.New("image is empty")

	// ErrInvalidPolygon is returned when a mask polygon has fewer than three
	// vertices.
	ErrInvalidPolygon = errors.New("polygon needs at least 3 points")
)
