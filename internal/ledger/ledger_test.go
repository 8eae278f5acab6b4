package ledger

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ledger", func() {
	var (
		store  *mockStore
		ledger *Ledger
	)

	BeforeEach(func() {
		store = &mockStore{}
	})

	JustBeforeEach(func() {
		ledger = New(store, nil)
	})

	Describe("New", func() {
		When("the store has entries", func() {
			BeforeEach(func() {
				store.prices = []float64{12.5, 25}
			})

			It("should load them with their total", func() {
				Expect(ledger.Entries()).To(Equal([]float64{12.5, 25}))
				Expect(ledger.Total()).To(Equal(37.5))
			})
		})

		When("the store cannot be read", func() {
			BeforeEach(func() {
				store.loadErr = errStore
			})

			It("should start empty", func() {
				Expect(ledger.Len()).To(Equal(0))
				Expect(ledger.Total()).To(Equal(0.0))
			})
		})
	})

	Describe("Append", func() {
		It("should add prices in order and keep the total", func() {
			Expect(ledger.Append(12.5)).To(Succeed())
			Expect(ledger.Append(25)).To(Succeed())
			Expect(ledger.Entries()).To(Equal([]float64{12.5, 25}))
			Expect(ledger.Total()).To(Equal(37.5))
		})

		It("should persist every change", func() {
			Expect(ledger.Append(3)).To(Succeed())
			Expect(store.prices).To(Equal([]float64{3}))
		})

		It("should reject non-positive prices", func() {
			Expect(ledger.Append(0)).To(MatchError(ErrInvalidPrice))
			Expect(ledger.Append(-4)).To(MatchError(ErrInvalidPrice))
			Expect(ledger.Append(math.NaN())).To(MatchError(ErrInvalidPrice))
			Expect(ledger.Len()).To(Equal(0))
		})

		When("saving fails", func() {
			BeforeEach(func() {
				store.prices = []float64{5}
				store.saveErr = errStore
			})

			It("returns the error", func() {
				Expect(ledger.Append(1)).To(MatchError(errStore))
			})

			It("should keep the previous entries", func() {
				_ = ledger.Append(1)
				Expect(ledger.Entries()).To(Equal([]float64{5}))
				Expect(ledger.Total()).To(Equal(5.0))
			})
		})
	})

	Describe("RemoveAt", func() {
		JustBeforeEach(func() {
			Expect(ledger.Append(12.5)).To(Succeed())
			Expect(ledger.Append(25)).To(Succeed())
		})

		It("should remove the entry and update the total", func() {
			Expect(ledger.RemoveAt(0)).To(Succeed())
			Expect(ledger.Entries()).To(Equal([]float64{25}))
			Expect(ledger.Total()).To(Equal(25.0))
		})

		It("returns the error for an index out of range", func() {
			Expect(ledger.RemoveAt(2)).To(MatchError(ErrIndexOutOfRange))
			Expect(ledger.RemoveAt(-1)).To(MatchError(ErrIndexOutOfRange))
			Expect(ledger.Len()).To(Equal(2))
		})
	})

	Describe("Clear", func() {
		It("should remove every entry", func() {
			Expect(ledger.Append(12.5)).To(Succeed())
			Expect(ledger.Clear()).To(Succeed())
			Expect(ledger.Entries()).To(BeEmpty())
			Expect(ledger.Total()).To(Equal(0.0))
			Expect(store.prices).To(BeEmpty())
		})
	})

	It("should return entries that do not alias the ledger", func() {
		Expect(ledger.Append(1)).To(Succeed())
		entries := ledger.Entries()
		entries[0] = 99
		Expect(ledger.Entries()).To(Equal([]float64{1}))
	})

	Describe("Summary", func() {
		It("should render totals and numbered prices", func() {
			Expect(ledger.Append(12.5)).To(Succeed())
			Expect(ledger.Append(25)).To(Succeed())
			Expect(ledger.Summary()).To(Equal("Shopping total: 37.50\nItems: 2\n\nPrices:\n1. 12.50\n2. 25.00\n"))
		})

		It("should omit the price list when empty", func() {
			Expect(ledger.Summary()).To(Equal("Shopping total: 0.00\nItems: 0\n"))
		})
	})
})

var _ = Describe("Codec", func() {
	It("should round-trip entries", func() {
		data, err := EncodePrices([]float64{12.5, 25})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("[12.5,25]"))

		prices, err := DecodePrices(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(prices).To(Equal([]float64{12.5, 25}))
	})

	It("should encode nil as an empty array", func() {
		data, err := EncodePrices(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("[]"))
	})

	It("should decode empty input as no entries", func() {
		prices, err := DecodePrices(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(prices).To(BeEmpty())
	})

	It("returns the error for a corrupt document", func() {
		_, err := DecodePrices([]byte("nope"))
		Expect(err).To(HaveOccurred())
	})
})
