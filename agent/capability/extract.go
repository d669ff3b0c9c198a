package capability

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/founding-ai/orchestra/agent/contract"
)

// ExtractJSON turns a raw model reply into the structured artifact object.
// Models wrap answers in code fences, prepend chatty preamble, and sometimes
// double-encode the JSON; the fallback order here is fixed:
//
//  1. strip code-fence wrapping and parse what remains
//  2. if the parsed value is a string that itself parses as an object, unwrap
//     once
//  3. on a parse failure, retry with only the outermost {...} span
//
// Anything that still is not a JSON object is malformed output.
func ExtractJSON(text string) (map[string]any, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	obj, err := parseObject(clean)
	if err == nil {
		return obj, nil
	}

	first := strings.Index(clean, "{")
	last := strings.LastIndex(clean, "}")
	if first != -1 && last > first {
		if obj, spanErr := parseObject(clean[first : last+1]); spanErr == nil {
			return obj, nil
		}
	}
	return nil, err
}

func parseObject(raw string) (map[string]any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrMalformedOutput, err)
	}

	if inner, ok := parsed.(string); ok {
		var unwrapped any
		if err := json.Unmarshal([]byte(inner), &unwrapped); err == nil {
			if obj, ok := unwrapped.(map[string]any); ok {
				parsed = obj
			}
		}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is %T, want object", contract.ErrMalformedOutput, parsed)
	}
	return obj, nil
}
