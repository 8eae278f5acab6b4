package scanning

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CaptureController", func() {
	var (
		camera     *fakeCamera
		ledger     *fakeLedger
		clock      *fakeClock
		notified   []float64
		controller *CaptureController
	)

	BeforeEach(func() {
		camera = &fakeCamera{}
		ledger = &fakeLedger{}
		clock = &fakeClock{}
		notified = nil
		notifier := NotifierFunc(func(price float64) {
			notified = append(notified, price)
		})
		controller = NewCaptureControllerWithDeps(camera, ledger, notifier, nil, clock, 500*time.Millisecond)
	})

	It("should start idle", func() {
		Expect(controller.State()).To(Equal(StateIdle))
		Expect(controller.CurrentPrice()).To(BeEmpty())
		Expect(controller.Processing()).To(BeFalse())
	})

	Describe("StartScanning", func() {
		var err error

		JustBeforeEach(func() {
			err = controller.StartScanning(context.Background())
		})

		When("the camera is available", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should arm the controller", func() {
				Expect(controller.State()).To(Equal(StateArmed))
				Expect(controller.Session()).To(Equal(uint64(1)))
			})

			It("should start the camera", func() {
				Expect(camera.started).To(Equal([]SessionHandle{1}))
			})

			It("should do nothing when called again", func() {
				Expect(controller.StartScanning(context.Background())).To(Succeed())
				Expect(camera.acquired).To(Equal(1))
				Expect(controller.Session()).To(Equal(uint64(1)))
			})
		})

		When("the camera cannot be acquired", func() {
			BeforeEach(func() {
				camera.acquireErr = ErrCameraUnavailable
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ErrCameraUnavailable))
			})

			It("should stay idle and expose the error", func() {
				Expect(controller.State()).To(Equal(StateIdle))
				Expect(controller.Err()).To(MatchError(ErrCameraUnavailable))
				Expect(controller.Snapshot().Error).To(ContainSubstring("camera unavailable"))
			})
		})

		When("the camera cannot be started", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("no permission")
				camera.startErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})

			It("should release the camera", func() {
				Expect(camera.stopped).To(Equal([]SessionHandle{1}))
				Expect(controller.State()).To(Equal(StateIdle))
			})
		})
	})

	Describe("Observe", func() {
		var session uint64

		BeforeEach(func() {
			Expect(controller.StartScanning(context.Background())).To(Succeed())
			session = controller.Session()
		})

		When("a line contains a price", func() {
			var captured bool

			BeforeEach(func() {
				captured = controller.Observe(session, lines("Fresh Milk", "SAR 15.00"))
			})

			It("should capture it with two decimals", func() {
				Expect(captured).To(BeTrue())
				Expect(controller.CurrentPrice()).To(Equal("15.00"))
			})

			It("should lock for the lock window", func() {
				Expect(controller.State()).To(Equal(StateLocked))
				Expect(controller.Processing()).To(BeTrue())
				Expect(clock.durations).To(Equal([]time.Duration{500 * time.Millisecond}))
			})

			It("should ignore further batches while locked", func() {
				Expect(controller.Observe(session, lines("9.99"))).To(BeFalse())
				Expect(controller.CurrentPrice()).To(Equal("15.00"))
				Expect(clock.scheduled()).To(Equal(1))
			})

			It("should accept the next batch once the window expires", func() {
				clock.fire(0)
				Expect(controller.State()).To(Equal(StateArmed))
				Expect(controller.Processing()).To(BeFalse())

				Expect(controller.Observe(session, lines("9.99"))).To(BeTrue())
				Expect(controller.CurrentPrice()).To(Equal("9.99"))
			})

			It("should not touch the ledger", func() {
				Expect(ledger.prices).To(BeEmpty())
			})
		})

		When("no line contains a price", func() {
			It("should stay armed", func() {
				Expect(controller.Observe(session, lines("Fresh Milk", "0"))).To(BeFalse())
				Expect(controller.State()).To(Equal(StateArmed))
				Expect(controller.CurrentPrice()).To(BeEmpty())
				Expect(clock.scheduled()).To(Equal(0))
			})
		})

		When("the first price is a comma decimal", func() {
			It("should normalize it", func() {
				controller.Observe(session, lines("12,75"))
				Expect(controller.CurrentPrice()).To(Equal("12.75"))
			})
		})

		When("the controller is idle", func() {
			It("should ignore the batch", func() {
				Expect(controller.StopScanning()).To(Succeed())
				Expect(controller.Observe(controller.Session(), lines("15.00"))).To(BeFalse())
				Expect(controller.CurrentPrice()).To(BeEmpty())
			})
		})
	})

	Describe("StopScanning", func() {
		var session uint64

		BeforeEach(func() {
			Expect(controller.StartScanning(context.Background())).To(Succeed())
			session = controller.Session()
			controller.Observe(session, lines("15.00"))
		})

		JustBeforeEach(func() {
			Expect(controller.StopScanning()).To(Succeed())
		})

		It("should go idle and stop the camera", func() {
			Expect(controller.State()).To(Equal(StateIdle))
			Expect(controller.Processing()).To(BeFalse())
			Expect(camera.stopped).To(Equal([]SessionHandle{1}))
		})

		It("should cancel the lock timer", func() {
			Expect(clock.timers[0].stopped).To(BeTrue())
		})

		It("should keep the current price", func() {
			Expect(controller.CurrentPrice()).To(Equal("15.00"))
		})

		It("should ignore a lock timer that fires late", func() {
			clock.fire(0)
			Expect(controller.State()).To(Equal(StateIdle))
		})

		It("should ignore results from the stopped session", func() {
			Expect(controller.StartScanning(context.Background())).To(Succeed())
			Expect(controller.Observe(session, lines("7.00"))).To(BeFalse())
			Expect(controller.CurrentPrice()).To(Equal("15.00"))
		})

		It("should not let the old timer unlock a new session", func() {
			Expect(controller.StartScanning(context.Background())).To(Succeed())
			Expect(controller.Observe(controller.Session(), lines("7.00"))).To(BeTrue())
			clock.fire(0)
			Expect(controller.State()).To(Equal(StateLocked))
			clock.fire(1)
			Expect(controller.State()).To(Equal(StateArmed))
		})

		It("should do nothing when already idle", func() {
			Expect(controller.StopScanning()).To(Succeed())
			Expect(camera.stopped).To(HaveLen(1))
		})
	})

	Describe("RecognitionFailed", func() {
		It("should record the error and stay armed", func() {
			Expect(controller.StartScanning(context.Background())).To(Succeed())
			setupErr := errors.New("model overloaded")
			controller.RecognitionFailed(controller.Session(), setupErr)
			Expect(controller.Err()).To(MatchError(setupErr))
			Expect(controller.State()).To(Equal(StateArmed))
		})

		It("should clear the error on the next capture", func() {
			Expect(controller.StartScanning(context.Background())).To(Succeed())
			controller.RecognitionFailed(controller.Session(), errors.New("timeout"))
			controller.Observe(controller.Session(), lines("4.50"))
			Expect(controller.Err()).NotTo(HaveOccurred())
		})
	})

	Describe("AddCurrentPrice", func() {
		var (
			price float64
			added bool
			err   error
		)

		JustBeforeEach(func() {
			price, added, err = controller.AddCurrentPrice()
		})

		When("a price was captured", func() {
			BeforeEach(func() {
				Expect(controller.StartScanning(context.Background())).To(Succeed())
				controller.Observe(controller.Session(), lines("SAR 15.00"))
			})

			It("should append it to the ledger", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(added).To(BeTrue())
				Expect(price).To(Equal(15.0))
				Expect(ledger.prices).To(Equal([]float64{15}))
			})

			It("should clear the current price", func() {
				Expect(controller.CurrentPrice()).To(BeEmpty())
			})

			It("should notify once", func() {
				Expect(notified).To(Equal([]float64{15}))
			})

			When("the ledger cannot save", func() {
				var setupErr error

				BeforeEach(func() {
					setupErr = errors.New("disk full")
					ledger.appendErr = setupErr
				})

				It("returns the error", func() {
					Expect(err).To(MatchError(setupErr))
				})

				It("should keep the current price", func() {
					Expect(controller.CurrentPrice()).To(Equal("15.00"))
					Expect(notified).To(BeEmpty())
				})
			})
		})

		When("there is no current price", func() {
			It("should do nothing", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(added).To(BeFalse())
				Expect(ledger.prices).To(BeEmpty())
				Expect(notified).To(BeEmpty())
			})
		})
	})

	Describe("AddManualPrice", func() {
		It("should append a typed price", func() {
			price, err := controller.AddManualPrice("12,50")
			Expect(err).NotTo(HaveOccurred())
			Expect(price).To(Equal(12.5))
			Expect(ledger.prices).To(Equal([]float64{12.5}))
			Expect(notified).To(Equal([]float64{12.5}))
		})

		It("should reject invalid input", func() {
			_, err := controller.AddManualPrice("free")
			Expect(err).To(MatchError(ErrInvalidPrice))
			Expect(ledger.prices).To(BeEmpty())
		})

		It("should not change the capture state", func() {
			_, err := controller.AddManualPrice("3")
			Expect(err).NotTo(HaveOccurred())
			Expect(controller.State()).To(Equal(StateIdle))
		})
	})

	Describe("ClearAll", func() {
		It("should empty the ledger and drop the current price", func() {
			Expect(controller.StartScanning(context.Background())).To(Succeed())
			controller.Observe(controller.Session(), lines("8.00"))
			_, err := controller.AddManualPrice("5")
			Expect(err).NotTo(HaveOccurred())

			Expect(controller.ClearAll()).To(Succeed())
			Expect(ledger.prices).To(BeEmpty())
			Expect(controller.CurrentPrice()).To(BeEmpty())
		})
	})

	Describe("Snapshot", func() {
		It("should describe the state", func() {
			Expect(controller.StartScanning(context.Background())).To(Succeed())
			controller.Observe(controller.Session(), lines("2.5"))
			Expect(controller.Snapshot()).To(Equal(CaptureSnapshot{
				State:        "locked",
				CurrentPrice: "2.50",
				Processing:   true,
				Session:      1,
			}))
		})
	})
})
