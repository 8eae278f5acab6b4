package scanning

import "context"

// Observation is one line of text recognized in a frame
type Observation struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Frame is a single sampled camera image
type Frame struct {
	Data        []byte
	ContentType string
}

// Recognizer defines the interface for text recognition on camera frames
type Recognizer interface {
	// Recognize returns the text lines found in the frame, topmost first.
	// A failed recognition is an error, never an empty result.
	Recognize(ctx context.Context, frame Frame) ([]Observation, error)
	// Close closes the recognizer and releases resources
	Close() error
}

// SessionHandle identifies an acquired camera session
type SessionHandle uint64

// Camera controls the upstream frame feed
type Camera interface {
	// Acquire reserves the camera and returns a session handle
	Acquire(ctx context.Context) (SessionHandle, error)
	// Start begins delivering frames for the session
	Start(h SessionHandle) error
	// Stop stops delivering frames for the session
	Stop(h SessionHandle) error
}
