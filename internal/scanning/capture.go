package scanning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultLockDuration is how long further detections are ignored after a price was captured
const DefaultLockDuration = time.Second

var ErrInvalidPrice = errors.New("price must be greater than zero")

// CaptureState is the lifecycle state of a CaptureController
type CaptureState int

const (
	StateIdle CaptureState = iota
	StateArmed
	StateLocked
)

func (s CaptureState) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateLocked:
		return "locked"
	default:
		return "idle"
	}
}

// PriceLedger receives committed prices
type PriceLedger interface {
	Append(price float64) error
	Clear() error
}

// Notifier is told about every price added to the ledger
type Notifier interface {
	PriceAdded(price float64)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(price float64)

func (f NotifierFunc) PriceAdded(price float64) { f(price) }

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// SystemClock returns the Clock backed by time.AfterFunc
func SystemClock() Clock { return realClock{} }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// CaptureSnapshot is a consistent view of the controller state
type CaptureSnapshot struct {
	State        string `json:"state"`
	CurrentPrice string `json:"current_price"`
	Processing   bool   `json:"processing"`
	Session      uint64 `json:"session"`
	Error        string `json:"error,omitempty"`
}

// CaptureController turns recognized text into a single current price.
// Observations, lock expiry, commits and lifecycle calls are all serialized
// on mu; callbacks carry the session they were issued for and are dropped
// once that session is stopped.
type CaptureController struct {
	mu           sync.Mutex
	state        CaptureState
	currentPrice string
	processing   bool
	err          error
	session      uint64
	lockGen      uint64
	lockTimer    Timer
	handle       SessionHandle

	camera       Camera
	ledger       PriceLedger
	notifier     Notifier
	clock        Clock
	lockDuration time.Duration
	logger       *slog.Logger
}

// NewCaptureController creates a controller with the default one second lock window
func NewCaptureController(camera Camera, ledger PriceLedger, notifier Notifier, logger *slog.Logger) *CaptureController {
	return NewCaptureControllerWithDeps(camera, ledger, notifier, logger, SystemClock(), DefaultLockDuration)
}

// NewCaptureControllerWithDeps creates a controller with a custom clock and lock window for testing
func NewCaptureControllerWithDeps(camera Camera, ledger PriceLedger, notifier Notifier, logger *slog.Logger, clock Clock, lockDuration time.Duration) *CaptureController {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if notifier == nil {
		notifier = NotifierFunc(func(float64) {})
	}
	if clock == nil {
		clock = SystemClock()
	}
	if lockDuration <= 0 {
		lockDuration = DefaultLockDuration
	}
	return &CaptureController{
		state:        StateIdle,
		camera:       camera,
		ledger:       ledger,
		notifier:     notifier,
		clock:        clock,
		lockDuration: lockDuration,
		logger:       logger.With("component", "capture"),
	}
}

// StartScanning acquires and starts the camera. Calling it while scanning is a no-op.
func (c *CaptureController) StartScanning(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return nil
	}

	handle, err := c.camera.Acquire(ctx)
	if err != nil {
		c.err = fmt.Errorf("acquiring camera: %w", err)
		c.logger.Error("Failed to acquire camera", "error", err)
		return c.err
	}
	if err := c.camera.Start(handle); err != nil {
		c.err = fmt.Errorf("starting camera: %w", err)
		c.logger.Error("Failed to start camera", "error", err)
		if stopErr := c.camera.Stop(handle); stopErr != nil {
			c.logger.Warn("Failed to release camera", "error", stopErr)
		}
		return c.err
	}

	c.handle = handle
	c.session++
	c.state = StateArmed
	c.processing = false
	c.err = nil
	c.logger.Info("Scanning started", "session", c.session)
	return nil
}

// StopScanning stops the camera. Pending lock timers and in-flight
// recognition results of the stopped session are ignored. The current price
// and the ledger are kept.
func (c *CaptureController) StopScanning() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return nil
	}

	stopped := c.session
	c.session++
	if c.lockTimer != nil {
		c.lockTimer.Stop()
		c.lockTimer = nil
	}
	c.processing = false
	c.state = StateIdle

	handle := c.handle
	c.handle = 0
	if err := c.camera.Stop(handle); err != nil {
		c.logger.Warn("Failed to stop camera", "session", stopped, "error", err)
		return fmt.Errorf("stopping camera: %w", err)
	}
	c.logger.Info("Scanning stopped", "session", stopped)
	return nil
}

// Session returns the id of the current scanning session
func (c *CaptureController) Session() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// accepting returns the current session and whether a detection would be taken now
func (c *CaptureController) accepting() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.state == StateArmed && !c.processing
}

// Observe runs one capture cycle over a batch of recognized text. The first
// accepted price wins and locks the controller for the lock window. Returns
// whether a price was captured.
func (c *CaptureController) Observe(session uint64, observations []Observation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session || c.state == StateIdle || c.processing {
		return false
	}

	price, ok := firstPrice(observations)
	if !ok {
		return false
	}

	c.currentPrice = decimal.NewFromFloat(price).StringFixed(2)
	c.state = StateLocked
	c.processing = true
	c.err = nil
	c.lockGen++

	gen := c.lockGen
	c.lockTimer = c.clock.AfterFunc(c.lockDuration, func() {
		c.unlock(session, gen)
	})
	c.logger.Debug("Price detected", "price", c.currentPrice, "session", session)
	return true
}

func (c *CaptureController) unlock(session, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session || gen != c.lockGen {
		return
	}
	c.processing = false
	c.state = StateArmed
	c.lockTimer = nil
}

// RecognitionFailed records a failed recognition cycle. The controller stays
// armed; the next frame is the retry.
func (c *CaptureController) RecognitionFailed(session uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session || c.state == StateIdle {
		return
	}
	c.err = fmt.Errorf("recognizing frame: %w", err)
	c.logger.Warn("Text recognition failed", "session", session, "error", err)
}

// AddCurrentPrice commits the current price to the ledger. Returns false when
// there is no positive current price.
func (c *CaptureController) AddCurrentPrice() (float64, bool, error) {
	c.mu.Lock()
	price, err := strconv.ParseFloat(c.currentPrice, 64)
	if err != nil || price <= 0 {
		c.mu.Unlock()
		return 0, false, nil
	}
	if err := c.ledger.Append(price); err != nil {
		c.mu.Unlock()
		return 0, false, err
	}
	c.currentPrice = ""
	c.mu.Unlock()

	c.notifier.PriceAdded(price)
	return price, true, nil
}

// AddManualPrice parses a typed price and appends it to the ledger without
// touching the capture state
func (c *CaptureController) AddManualPrice(text string) (float64, error) {
	price, err := ParseManualPrice(text)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	err = c.ledger.Append(price)
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}

	c.notifier.PriceAdded(price)
	return price, nil
}

// ClearAll empties the ledger and drops the current price
func (c *CaptureController) ClearAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ledger.Clear(); err != nil {
		return err
	}
	c.currentPrice = ""
	return nil
}

// State returns the lifecycle state
func (c *CaptureController) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentPrice returns the last detected price formatted with two decimals, or ""
func (c *CaptureController) CurrentPrice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPrice
}

// Processing reports whether the lock window is active
func (c *CaptureController) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Err returns the last camera or recognition error of the current session
func (c *CaptureController) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot returns the full state in one consistent read
func (c *CaptureController) Snapshot() CaptureSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := CaptureSnapshot{
		State:        c.state.String(),
		CurrentPrice: c.currentPrice,
		Processing:   c.processing,
		Session:      c.session,
	}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	return s
}

// ParseManualPrice accepts typed prices such as "12.50", "12,5", "SAR 12.50"
// or "12.50 SAR". Signs, inner spaces and other characters are rejected.
func ParseManualPrice(text string) (float64, error) {
	trimmed := strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.Is(unicode.Sc, r)
	})
	cleaned := strings.ReplaceAll(trimmed, ",", ".")
	for _, r := range cleaned {
		if (r < '0' || r > '9') && r != '.' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil || !d.IsPositive() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}
	return d.InexactFloat64(), nil
}
