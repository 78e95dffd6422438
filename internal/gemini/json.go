package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON decodes a model response into v. Structured-output responses
// are plain JSON; older models wrap it in ```json fences or prose, so on a
// direct decode failure the first balanced object in the text is used.
func DecodeJSON(text string, v any) error {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}
	return extractJSON(text, v)
}

// extractJSON extracts the first balanced JSON object from a text response.
func extractJSON(text string, v any) error {
	start := -1
	end := -1
	depth := 0
	inString := false
	escaped := false

	for i, c := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start == -1 {
				continue
			}
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
		if end != -1 {
			break
		}
	}

	if start == -1 || end == -1 {
		return fmt.Errorf("no JSON object found in response")
	}
	return json.Unmarshal([]byte(text[start:end]), v)
}
