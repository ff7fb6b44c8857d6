// Package cvops runs the lane pipeline's image operations through OpenCV.
//
// The backend is compiled only with the opencv build tag, which needs the
// OpenCV 4 development files and cgo:
//
//	go build -tags opencv ./cmd/lane-detect
//
// Without the tag NewOps and NewWindowSink return ErrUnavailable and the pure
// Go operations in package imaging are used instead.
//
// Both backends take the same imaging.Params, so a configuration tuned on one
// runs on the other. Results are close but not identical: OpenCV's Hough
// visits edge points in a random order.
package cvops

import "github.com/pkg/errors"

// ErrUnavailable is returned when the binary was built without OpenCV.
var ErrUnavailable = errors.New("opencv backend not compiled in (build with -tags opencv)")
