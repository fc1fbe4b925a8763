package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LooseString decodes a JSON scalar of any kind into its textual form.
// null decodes to the empty string.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*s = ""
		return nil
	}

	switch raw[0] {
	case '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*s = LooseString(v)
	case '{', '[':
		return fmt.Errorf("expected scalar, got %s", raw[:1])
	default:
		*s = LooseString(raw)
	}
	return nil
}

// String returns the trimmed value.
func (s LooseString) String() string {
	return strings.TrimSpace(string(s))
}

// LooseFloat decodes a JSON number or numeric string. Anything else decodes to 0.
type LooseFloat float64

func (f *LooseFloat) UnmarshalJSON(data []byte) error {
	var s LooseString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = LooseFloat(ParseNumber(s.String()))
	return nil
}

// ParseNumber parses a finite float, returning 0 for empty or invalid input.
func ParseNumber(v string) float64 {
	parsed, ok := ParseFinite(v)
	if !ok {
		return 0
	}
	return parsed
}

// ParseFinite parses a finite float. NaN and infinities are rejected.
func ParseFinite(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, sep)
}
