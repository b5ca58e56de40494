package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("Building topology...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Rendering diagrams...")
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancelled after its context ends")
	}
}

func TestSpinnerContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Building topology...")
	s.Start()

	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancelled after its context times out")
	}
}

func TestSpinnerStopIdempotent(t *testing.T) {
	s := newSpinner("Building topology...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Rendering diagrams...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("rendered 3 diagrams")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Rendering diagrams...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("render failed")
}

func TestSpinnerImmediateStop(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Loading records...")
	s.Start()
	s.Stop()
}
