package shopping

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Codec", func() {
	var lists []List

	BeforeEach(func() {
		created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
		lists = []List{
			{
				ID:          "list-1",
				Name:        "Weekly Shopping",
				CreatedDate: created,
				Items: []Item{
					{ID: "item-1", Name: "Milk", Quantity: 1, Price: 15, Category: CategoryDairy, Notes: "2%", AddedDate: created},
					{ID: "item-2", Name: "Bread", Quantity: 3, Price: 5.25, Category: CategoryBakery, IsPurchased: true, AddedDate: created},
				},
			},
			{ID: "list-2", Name: "Party", Items: []Item{}, CreatedDate: created, IsArchived: true},
		}
	})

	It("should round-trip a collection in order", func() {
		data, err := EncodeLists(lists)
		Expect(err).NotTo(HaveOccurred())

		decoded, err := DecodeLists(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(BeComparableTo(lists))
	})

	It("should use the document field names", func() {
		data, err := EncodeLists(lists[:1])
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"isPurchased":true`))
		Expect(string(data)).To(ContainSubstring(`"createdDate":"2024-03-01T09:30:00Z"`))
	})

	It("should encode a nil collection as an empty array", func() {
		data, err := EncodeLists(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("[]"))
	})

	It("should decode empty input as an empty collection", func() {
		decoded, err := DecodeLists(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(BeEmpty())
	})

	It("should give lists without items an empty item slice", func() {
		decoded, err := DecodeLists([]byte(`[{"id":"a","name":"A"}]`))
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded[0].Items).NotTo(BeNil())
	})

	It("returns the error for a corrupt document", func() {
		_, err := DecodeLists([]byte(`{not json`))
		Expect(err).To(HaveOccurred())
	})
})
