package insights

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("insights validation failed")

// ValidationError describes a summarizer reply without the required structure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

var requiredKeys = []string{
	"recommended_title",
	"recommended_description",
	"identified_gaps",
	"messaging_positioning",
	"opportunity_size",
}

var objectKeys = []string{
	"identified_gaps",
	"messaging_positioning",
	"opportunity_size",
}

// Parse decodes the reply content and checks its structure.
func Parse(content string) (map[string]any, error) {
	if content == "" {
		return nil, invalid("Missing 'content' in DeepSeek response.")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err != nil || out == nil {
		return nil, invalid("Invalid JSON structure in 'content'.")
	}

	for _, k := range requiredKeys {
		if _, ok := out[k]; !ok {
			return nil, invalid("Missing required field: %s", k)
		}
	}
	for _, k := range objectKeys {
		if _, ok := out[k].(map[string]any); !ok {
			return nil, invalid("Invalid format for '%s'.", k)
		}
	}
	return out, nil
}
