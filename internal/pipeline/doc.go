// Package pipeline runs the lane detector over one frame, or over a batch of
// independent frames.
//
// A run sequences the ImageOps stages (blur, edges, ROI mask, line segments),
// classifies the segments into left and right buckets, aggregates each bucket
// into a lane line and hands the lines to an ImageSink.
//
// # Failure Model
//
// ImageOps failures abort the frame and are returned as one wrapped error.
// Aggregation failures are per side: a frame whose left side has no segments
// still reports, and draws, its right lane. Nothing is retried.
//
// # Concurrency
//
// A single run is synchronous and owns all of its intermediate images. Runs
// share no mutable state, so RunBatch processes frames in parallel and
// returns results in input order.
package pipeline
