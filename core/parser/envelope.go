package parser

import (
	"encoding/json"
	"strings"
)

// envelopeAdapter extracts the answer text from one known provider envelope
// shape. Adapters are tried in a fixed priority order; each either returns
// the text or reports "not this shape".
type envelopeAdapter struct {
	name    string
	extract func(payload map[string]interface{}) (string, bool)
}

var envelopeAdapters = []envelopeAdapter{
	{
		// Chat-completion envelope: choices[0].message.content
		name: "chat_completion",
		extract: func(payload map[string]interface{}) (string, bool) {
			choices, ok := payload["choices"].([]interface{})
			if !ok || len(choices) == 0 {
				return "", false
			}
			choice, ok := choices[0].(map[string]interface{})
			if !ok {
				return "", false
			}
			message, ok := choice["message"].(map[string]interface{})
			if !ok {
				return "", false
			}
			content, ok := message["content"].(string)
			return content, ok
		},
	},
	{
		// Candidate/parts envelope: candidates[0].content.parts[].text
		name: "candidate_parts",
		extract: func(payload map[string]interface{}) (string, bool) {
			candidates, ok := payload["candidates"].([]interface{})
			if !ok || len(candidates) == 0 {
				return "", false
			}
			candidate, ok := candidates[0].(map[string]interface{})
			if !ok {
				return "", false
			}
			content, ok := candidate["content"].(map[string]interface{})
			if !ok {
				return "", false
			}
			parts, ok := content["parts"].([]interface{})
			if !ok {
				return "", false
			}
			var texts []string
			for _, part := range parts {
				partMap, ok := part.(map[string]interface{})
				if !ok {
					continue
				}
				if text, ok := partMap["text"].(string); ok {
					texts = append(texts, text)
				}
			}
			if len(texts) == 0 {
				return "", false
			}
			return strings.Join(texts, ""), true
		},
	},
	{
		// Flat envelope: a top-level answer or output string field.
		name: "flat_answer",
		extract: func(payload map[string]interface{}) (string, bool) {
			if answer, ok := payload["answer"].(string); ok {
				return answer, true
			}
			if output, ok := payload["output"].(string); ok {
				return output, true
			}
			return "", false
		},
	},
}

// roleMarkers are provider role prefixes stripped from plain string
// responses.
var roleMarkers = []string{"assistant:", "ai:", "bot:", "system:", "model:"}

func stripRoleMarker(text string) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, marker := range roleMarkers {
		if strings.HasPrefix(lower, marker) {
			return strings.TrimSpace(trimmed[len(marker):])
		}
	}
	return trimmed
}

// extractAnswerText normalizes a raw provider response down to a single
// answer string. Unrecognized shapes yield an empty string rather than an
// error.
func extractAnswerText(raw string) string {
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		// Not JSON at all: a plain string, possibly role-prefixed.
		return stripRoleMarker(raw)
	}

	switch payload := decoded.(type) {
	case string:
		return stripRoleMarker(payload)
	case map[string]interface{}:
		for _, adapter := range envelopeAdapters {
			if text, ok := adapter.extract(payload); ok {
				return strings.TrimSpace(text)
			}
		}
		return ""
	default:
		return ""
	}
}
