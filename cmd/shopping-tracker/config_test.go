package main

import (
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("parseJSONC", func() {
	var (
		input  string
		values map[string]string
		err    error
	)

	JustBeforeEach(func() {
		values = map[string]string{}
		err = parseJSONC(strings.NewReader(input), func(name, value string) error {
			values[name] = value
			return nil
		})
	})

	When("the file has comments and trailing commas", func() {
		BeforeEach(func() {
			input = `{
				// storage
				"store": "file",
				"port": 9090,
				"strict-lookups": true,
			}`
		})

		It("should set every flag", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal(map[string]string{
				"store":          "file",
				"port":           "9090",
				"strict-lookups": "true",
			}))
		})
	})

	When("a number is large", func() {
		BeforeEach(func() {
			input = `{"frame-buffer": 1000000, "lock-duration": "1.5s"}`
		})

		It("should keep the digits as written", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(HaveKeyWithValue("frame-buffer", "1000000"))
			Expect(values).To(HaveKeyWithValue("lock-duration", "1.5s"))
		})
	})

	When("the file is not valid", func() {
		BeforeEach(func() {
			input = `{"port": }`
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("parseLogLevel", func() {
	It("should parse known levels", func() {
		Expect(parseLogLevel("debug")).To(Equal(slog.LevelDebug))
		Expect(parseLogLevel("")).To(Equal(slog.LevelInfo))
		Expect(parseLogLevel("WARN")).To(Equal(slog.LevelWarn))
	})

	It("returns the error for an unknown level", func() {
		_, err := parseLogLevel("loud")
		Expect(err).To(HaveOccurred())
	})
})
