package scanning

import (
	"bytes"
	"context"
	"image/png"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server *ghttp.Server
		ollama *Ollama
		frame  Frame
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		ollama, err = NewOllama(server.URL(), "llava")
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(png.Encode(&buf, testImage())).To(Succeed())
		frame = Frame{Data: buf.Bytes(), ContentType: "image/png"}
	})

	AfterEach(func() {
		server.Close()
	})

	When("the model answers", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{
						Role:    "assistant",
						Content: `{"lines": [{"text": "Fresh Milk", "confidence": 0.9}, {"text": "15.00", "confidence": 0.8}]}`,
					},
					Done: true,
				}),
			))
		})

		It("should return the recognized lines", func() {
			observations, err := ollama.Recognize(context.Background(), frame)
			Expect(err).NotTo(HaveOccurred())
			Expect(observations).To(Equal([]Observation{
				{Text: "Fresh Milk", Confidence: 0.9},
				{Text: "15.00", Confidence: 0.8},
			}))
		})
	})

	When("the API fails", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the error", func() {
			_, err := ollama.Recognize(context.Background(), frame)
			Expect(err).To(MatchError(ContainSubstring("status 500")))
		})
	})

	It("should default the model", func() {
		o, err := NewOllama(server.URL(), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(o.model).To(Equal("llava"))
	})
})

var _ = Describe("Gemini", func() {
	It("should require an API key", func() {
		_, err := NewGemini("", "")
		Expect(err).To(MatchError(ContainSubstring("api key is required")))
	})
})
