package pipeline

import (
	"context"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/render"
)

var _ ImageOps = (*imaging.Ops)(nil)
var _ ImageSink = (*render.FileSink)(nil)

func TestNew_RequiresOps(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNoImageOps)
}

func TestRun_BothSides(t *testing.T) {
	ops := &fakeOps{segments: roadSegments()}
	sink := &recordingSink{}
	p, err := New(ops, sink)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), frame(640, 480))
	require.NoError(t, err)

	assert.Equal(t, []string{"blur", "edges", "mask", "hough"}, ops.calls)
	assert.True(t, res.Complete())
	assert.Empty(t, res.FailedSides())
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 640, res.Width)
	assert.Equal(t, 480, res.Height)

	want := []lane.LaneLine{
		{Side: lane.Left, X1: 100, Y1: 480, X2: 172, Y2: 336},
		{Side: lane.Right, X1: 300, Y1: 480, X2: 228, Y2: 336},
	}
	if diff := cmp.Diff(want, res.Lines()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, sink.lines, 1)
	assert.Equal(t, want, sink.lines[0])
	assert.Equal(t, render.DefaultStyle(), sink.styles[0])
}

func TestRun_OneSideMissing(t *testing.T) {
	ops := &fakeOps{segments: []lane.LineSegment{lane.Seg(300, 480, 200, 280)}}
	sink := &recordingSink{}
	p, err := New(ops, sink)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), frame(640, 480))
	require.NoError(t, err)

	assert.False(t, res.Complete())
	assert.Equal(t, []lane.LaneSide{lane.Left}, res.FailedSides())
	assert.ErrorIs(t, res.Left.Err, lane.ErrNoLinesDetected)
	assert.Nil(t, res.Left.Line)
	require.NotNil(t, res.Right.Line)
	assert.Equal(t, 300, res.Right.Line.X1)

	// the surviving side is still drawn
	require.Len(t, sink.lines, 1)
	assert.Len(t, sink.lines[0], 1)
	assert.Equal(t, lane.Right, sink.lines[0][0].Side)
}

func TestRun_NoSegments(t *testing.T) {
	sink := &recordingSink{}
	p, err := New(&fakeOps{}, sink)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), frame(64, 48))
	require.NoError(t, err)
	assert.Equal(t, []lane.LaneSide{lane.Left, lane.Right}, res.FailedSides())
	assert.Empty(t, res.Lines())
	require.Len(t, sink.lines, 1)
	assert.Empty(t, sink.lines[0])
}

func TestRun_DegenerateSide(t *testing.T) {
	// with no slope filter a horizontal segment reaches the right bucket
	ops := &fakeOps{segments: []lane.LineSegment{lane.Seg(0, 100, 200, 100)}}
	p, err := New(ops, nil, WithSlopeThreshold(0))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), frame(640, 480))
	require.NoError(t, err)
	assert.ErrorIs(t, res.Right.Err, lane.ErrDegenerateLine)
	assert.ErrorIs(t, res.Left.Err, lane.ErrNoLinesDetected)
	assert.Equal(t, 1, res.Right.Bucket.Len())
}

func TestRun_StageFailure(t *testing.T) {
	for _, tc := range []struct {
		stage  string
		prefix string
	}{
		{"blur", "blur"},
		{"edges", "detect edges"},
		{"mask", "mask region"},
		{"hough", "detect line segments"},
	} {
		t.Run(tc.stage, func(t *testing.T) {
			sink := &recordingSink{}
			p, err := New(&fakeOps{segments: roadSegments(), failAt: tc.stage}, sink)
			require.NoError(t, err)

			res, err := p.Run(context.Background(), frame(640, 480))
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Contains(t, err.Error(), tc.prefix+": "+tc.stage+" exploded")
			assert.Empty(t, sink.frames, "sink must not run for a failed frame")
		})
	}
}

func TestRun_SinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("display closed")}
	p, err := New(&fakeOps{segments: roadSegments()}, sink)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), frame(640, 480))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draw: display closed")
	require.NotNil(t, res)
	assert.True(t, res.Complete())
}

func TestRun_EmptyFrame(t *testing.T) {
	p, err := New(&fakeOps{}, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyFrame)
	_, err = p.Run(context.Background(), image.NewGray(image.Rect(0, 0, 0, 10)))
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestRun_Canceled(t *testing.T) {
	ops := &fakeOps{segments: roadSegments()}
	p, err := New(ops, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, frame(640, 480))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ops.calls)
}

func TestRun_Options(t *testing.T) {
	ops := &fakeOps{segments: roadSegments()}
	sink := &recordingSink{}
	roi := ROI{Units: UnitsPixel, Vertices: []Vertex{{0, 480}, {320, 0}, {640, 480}}}
	style := render.Style{Color: green, Thickness: 2}

	p, err := New(ops, sink,
		WithROI(roi),
		WithStyle(style),
		WithAnchors(lane.Anchors{Bottom: 1, Top: 0.5}),
		WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, roi, p.ROI())

	res, err := p.Run(context.Background(), frame(640, 480))
	require.NoError(t, err)

	assert.Equal(t, []image.Point{{0, 480}, {320, 0}, {640, 480}}, ops.polygons[0])
	assert.Equal(t, style, sink.styles[0])
	assert.Equal(t, 240, res.Left.Line.Y2)
	// x = (240 - 680) / -2 = 220
	assert.Equal(t, 220, res.Left.Line.X2)
}

func TestRun_SlopeThresholdOption(t *testing.T) {
	ops := &fakeOps{segments: roadSegments()}
	p, err := New(ops, nil, WithSlopeThreshold(5))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), frame(640, 480))
	require.NoError(t, err)
	assert.Equal(t, []lane.LaneSide{lane.Left, lane.Right}, res.FailedSides())
	assert.Len(t, res.Segments, 2)
}

func TestRun_PureGoOps(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the full image stack")
	}
	const width, height = 320, 240
	img := roadImage(width, height)

	full := ROI{Units: UnitsFraction, Vertices: []Vertex{{0, 1}, {0, 0.5}, {1, 0.5}, {1, 1}}}
	p, err := New(imaging.NewOps(imaging.DefaultParams(), nil), nil, WithROI(full))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), img)
	require.NoError(t, err)
	require.True(t, res.Complete(), "failed sides: %v", res.FailedSides())

	assert.Less(t, res.Left.Line.X1, width/2)
	assert.Greater(t, res.Right.Line.X1, width/2)
	// the markings reach the bottom at 10% and 90% of the width
	assert.InDelta(t, width/10, res.Left.Line.X1, 20)
	assert.InDelta(t, width*9/10, res.Right.Line.X1, 20)
}
