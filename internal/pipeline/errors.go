package pipeline

import "github.com/pkg/errors"

var (
	// ErrEmptyFrame is returned when the input frame is nil or has no pixels.
	ErrEmptyFrame = errors.New("frame is empty")

	// ErrNoImageOps is returned by New when no ImageOps is supplied.
	ErrNoImageOps = errors.New("image ops must be set")
)
