package ai

import (
	"encoding/json"
	"fmt"
)

// parseReply normalizes the many response shapes upstream AI services
// answer with into a single Reply. The content is looked up in a fixed
// order so a service exposing several of these keys stays deterministic.
func parseReply(body []byte) (*Reply, error) {
	// A bare JSON string is already the answer.
	var direct string
	if err := json.Unmarshal(body, &direct); err == nil {
		return &Reply{Content: direct}, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &Reply{
		Content:    extractContent(raw, body),
		TokensUsed: extractTokens(raw),
		ModelUsed:  extractModel(raw),
	}, nil
}

func extractContent(raw map[string]interface{}, body []byte) string {
	for _, key := range []string{"response", "message", "content"} {
		if s, ok := raw[key].(string); ok {
			return s
		}
	}

	if choices, ok := raw["choices"].([]interface{}); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]interface{}); ok {
			if msg, ok := choice["message"].(map[string]interface{}); ok {
				if s, ok := msg["content"].(string); ok {
					return s
				}
			}
			if s, ok := choice["text"].(string); ok {
				return s
			}
		}
	}

	if data, ok := raw["data"]; ok {
		switch d := data.(type) {
		case string:
			return d
		case map[string]interface{}:
			for _, key := range []string{"response", "message", "content"} {
				if s, ok := d[key].(string); ok {
					return s
				}
			}
		}
	}

	for _, key := range []string{"result", "answer"} {
		if s, ok := raw[key].(string); ok {
			return s
		}
	}

	// Unknown shape, hand back the raw body so nothing is lost.
	return string(body)
}

func extractTokens(raw map[string]interface{}) *int {
	if n, ok := raw["tokens_used"].(float64); ok {
		v := int(n)
		return &v
	}
	if usage, ok := raw["usage"].(map[string]interface{}); ok {
		if n, ok := usage["total_tokens"].(float64); ok {
			v := int(n)
			return &v
		}
	}
	return nil
}

func extractModel(raw map[string]interface{}) *string {
	for _, key := range []string{"model", "model_used"} {
		if s, ok := raw[key].(string); ok && s != "" {
			return &s
		}
	}
	return nil
}
