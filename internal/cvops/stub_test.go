//go:build !opencv

package cvops

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/render"
)

func TestStub_Unavailable(t *testing.T) {
	assert.False(t, Available)

	ops, err := NewOps(imaging.DefaultParams(), nil)
	assert.Nil(t, ops)
	assert.ErrorIs(t, err, ErrUnavailable)

	sink, err := NewWindowSink("lanes")
	assert.Nil(t, sink)
	assert.ErrorIs(t, err, ErrUnavailable)

	var stub Ops
	_, err = stub.Blur(image.NewGray(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = stub.DetectLineSegments(nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	var ws WindowSink
	assert.ErrorIs(t, ws.DrawAndShow(nil, nil, render.DefaultStyle()), ErrUnavailable)
	assert.NoError(t, ws.Close())
}
