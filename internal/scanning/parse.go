package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// textRecognitionPrompt is the shared prompt used by all LLM providers for reading shelf labels
const textRecognitionPrompt = `You are reading a photo taken in a supermarket, usually of a price tag or shelf label. Read every piece of visible text.

Return ONLY valid JSON in this exact format:
{
  "lines": [
    {"text": "line of text exactly as printed", "confidence": 0.0}
  ]
}

Important:
- List lines from the top of the image to the bottom
- Copy numbers exactly as printed, including the decimal separator
- confidence is a number between 0 and 1
- If there is no text, return {"lines": []}
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

type recognitionResponse struct {
	Lines []Observation `json:"lines"`
}

// parseObservationsJSON parses the JSON response of a vision model
func parseObservationsJSON(text string) ([]Observation, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var resp recognitionResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	observations := make([]Observation, 0, len(resp.Lines))
	for _, line := range resp.Lines {
		line.Text = strings.TrimSpace(line.Text)
		if line.Text == "" {
			continue
		}
		if line.Confidence < 0 {
			line.Confidence = 0
		} else if line.Confidence > 1 {
			line.Confidence = 1
		}
		observations = append(observations, line)
	}
	return observations, nil
}
