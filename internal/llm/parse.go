package llm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// stripCodeFence removes a markdown code fence wrapping the payload, with or
// without a language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g., "json")
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, "{}[]") {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// extractPayload isolates the first JSON value of the wanted kind from
// surrounding prose. LLMs routinely wrap their JSON in explanation text.
func extractPayload(s string, opening, closing byte) string {
	start := strings.IndexByte(s, opening)
	end := strings.LastIndexByte(s, closing)
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

// UnmarshalResponse decodes an LLM response into out, tolerating markdown
// fences, surrounding prose, and mildly malformed JSON (trailing commas,
// single quotes) via jsonrepair. The caller picks the expected shape through
// the type of out: a slice expects an array payload, anything else an object.
func UnmarshalResponse(text string, out any) error {
	payload := stripCodeFence(text)

	rv := reflect.ValueOf(out)
	expectArray := rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Slice
	if expectArray {
		payload = extractPayload(payload, '[', ']')
	} else {
		payload = extractPayload(payload, '{', '}')
	}

	if err := json.Unmarshal([]byte(payload), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		return fmt.Errorf("json repair failed: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal repaired response: %w", err)
	}
	return nil
}
