package scanning

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrCameraUnavailable = errors.New("camera unavailable")
	ErrCameraBusy        = errors.New("camera already acquired")
	ErrUnknownSession    = errors.New("unknown camera session")
)

// FrameQueue is a Camera fed by pushed frames (uploads from a phone, a test
// harness). Frames pushed while no session is running, or while the buffer is
// full, are dropped.
type FrameQueue struct {
	mu      sync.Mutex
	frames  chan Frame
	last    SessionHandle
	owner   SessionHandle
	running bool
	closed  bool
	dropped int
}

// NewFrameQueue creates a FrameQueue buffering up to size frames
func NewFrameQueue(size int) *FrameQueue {
	if size < 1 {
		size = 1
	}
	return &FrameQueue{frames: make(chan Frame, size)}
}

// Acquire reserves the queue for a new session
func (q *FrameQueue) Acquire(ctx context.Context) (SessionHandle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0, ErrCameraUnavailable
	}
	if q.owner != 0 {
		return 0, ErrCameraBusy
	}
	q.last++
	q.owner = q.last
	return q.owner, nil
}

// Start begins accepting frames for the session
func (q *FrameQueue) Start(h SessionHandle) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrCameraUnavailable
	}
	if h == 0 || h != q.owner {
		return ErrUnknownSession
	}
	q.running = true
	return nil
}

// Stop stops accepting frames, discards buffered ones and releases the session
func (q *FrameQueue) Stop(h SessionHandle) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if h == 0 || h != q.owner {
		return ErrUnknownSession
	}
	q.running = false
	q.owner = 0
	if !q.closed {
		q.drain()
	}
	return nil
}

func (q *FrameQueue) drain() {
	for {
		select {
		case <-q.frames:
		default:
			return
		}
	}
}

// Push offers a frame to the running session. Returns false when it was dropped.
func (q *FrameQueue) Push(frame Frame) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running || q.closed {
		q.dropped++
		return false
	}
	select {
	case q.frames <- frame:
		return true
	default:
		q.dropped++
		return false
	}
}

// Running reports whether a session is currently accepting frames
func (q *FrameQueue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Dropped is the number of frames that were not queued
func (q *FrameQueue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Frames is the channel consumed by a Feed
func (q *FrameQueue) Frames() <-chan Frame {
	return q.frames
}

// Close makes the camera unavailable and closes the frame channel
func (q *FrameQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	q.running = false
	close(q.frames)
	return nil
}
