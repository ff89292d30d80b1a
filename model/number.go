package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is a numeric backend field that may arrive as a JSON number, a numeric
// string ("512", "12%", "1500 MB") or not at all. Valid is false when the field
// was absent, null or an empty string.
type Number struct {
	Value float64
	Valid bool
}

func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	if data[0] != '"' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("number: %w", err)
		}
		*n = NewNumber(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	v, ok, err := parseNumeric(s)
	if err != nil {
		return err
	}
	if !ok {
		*n = Number{}
		return nil
	}
	*n = NewNumber(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// parseNumeric accepts a leading number followed by an optional unit suffix.
func parseNumeric(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			end++
			continue
		}
		break
	}
	// an exponent marker only counts when it is followed by digits
	for end > 0 && (s[end-1] == 'e' || s[end-1] == 'E' || s[end-1] == '+' || s[end-1] == '-') {
		end--
	}
	if end == 0 {
		return 0, false, fmt.Errorf("number: cannot coerce %q", s)
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false, fmt.Errorf("number: cannot coerce %q: %w", s, err)
	}
	return v, true, nil
}
