package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("parseObservationsJSON", func() {
	var (
		jsonInput    string
		observations []Observation
		err          error
	)

	JustBeforeEach(func() {
		observations, err = parseObservationsJSON(jsonInput)
	})

	When("parsing valid JSON", func() {
		BeforeEach(func() {
			jsonInput = `{"lines": [{"text": "Fresh Milk 1L", "confidence": 0.97}, {"text": "SAR 15.00", "confidence": 0.88}]}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep the lines in order", func() {
			Expect(observations).To(Equal([]Observation{
				{Text: "Fresh Milk 1L", Confidence: 0.97},
				{Text: "SAR 15.00", Confidence: 0.88},
			}))
		})
	})

	When("parsing JSON with markdown code blocks", func() {
		BeforeEach(func() {
			jsonInput = "```json\n{\"lines\": [{\"text\": \"12.50\", \"confidence\": 1}]}\n```"
		})

		It("should strip the fences", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(observations).To(HaveLen(1))
			Expect(observations[0].Text).To(Equal("12.50"))
		})
	})

	When("parsing JSON with surrounding text", func() {
		BeforeEach(func() {
			jsonInput = `Here is the text: {"lines": [{"text": "9.99", "confidence": 0.5}]} Hope this helps!`
		})

		It("should extract the JSON object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(observations[0].Text).To(Equal("9.99"))
		})
	})

	When("lines are blank or confidence is out of range", func() {
		BeforeEach(func() {
			jsonInput = `{"lines": [{"text": "  ", "confidence": 0.5}, {"text": " 3.25 ", "confidence": 1.7}, {"text": "x", "confidence": -2}]}`
		})

		It("should drop blank lines and clamp confidence", func() {
			Expect(observations).To(Equal([]Observation{
				{Text: "3.25", Confidence: 1},
				{Text: "x", Confidence: 0},
			}))
		})
	})

	When("there is no text", func() {
		BeforeEach(func() {
			jsonInput = `{"lines": []}`
		})

		It("should return no observations", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(observations).To(BeEmpty())
		})
	})

	When("parsing invalid JSON", func() {
		BeforeEach(func() {
			jsonInput = `{"lines": [unclosed`
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the response has no JSON object", func() {
		BeforeEach(func() {
			jsonInput = "I could not read this image"
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("no JSON object found")))
		})
	})
})
