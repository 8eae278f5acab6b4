package scanning

import (
	"context"
	"io"
	"log/slog"
)

// Feed is the single consumer of camera frames. It runs recognition and
// hands the results to the controller tagged with the session that was
// current when recognition began.
type Feed struct {
	recognizer Recognizer
	controller *CaptureController
	logger     *slog.Logger
}

// NewFeed creates a Feed
func NewFeed(recognizer Recognizer, controller *CaptureController, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Feed{
		recognizer: recognizer,
		controller: controller,
		logger:     logger.With("component", "feed"),
	}
}

// Run consumes frames until ctx is done or the channel is closed
func (f *Feed) Run(ctx context.Context, frames <-chan Frame) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			f.Process(ctx, frame)
		}
	}
}

// Process runs one capture cycle for a frame. Frames arriving while the
// controller is idle or locked are skipped without calling the recognizer.
func (f *Feed) Process(ctx context.Context, frame Frame) bool {
	session, ready := f.controller.accepting()
	if !ready {
		return false
	}

	observations, err := f.recognizer.Recognize(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		f.controller.RecognitionFailed(session, err)
		return false
	}
	return f.controller.Observe(session, observations)
}
