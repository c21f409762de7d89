// Package severity classifies an emergency transcript as mild (1),
// moderate (2) or severe (4) with a single constrained model call.
// Every failure path collapses to Default.
package severity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the incident severity. The scale intentionally has no 3.
type Level int

const (
	Mild     Level = 1
	Moderate Level = 2
	Severe   Level = 4

	Default = Moderate
)

// Valid reports whether l is one of 1, 2 or 4.
func (l Level) Valid() bool {
	return l == Mild || l == Moderate || l == Severe
}

func (l Level) String() string {
	switch l {
	case Mild:
		return "mild"
	case Moderate:
		return "moderate"
	case Severe:
		return "severe"
	default:
		return fmt.Sprintf("invalid(%d)", int(l))
	}
}

// Parse extracts the severity from a model reply such as `{"severity": 4}`.
// Surrounding whitespace and a Markdown code fence are tolerated, as are extra
// fields. The value must be a JSON integer in {1,2,4}.
func Parse(text string) (Level, error) {
	body := stripFence(strings.TrimSpace(text))

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var payload map[string]json.RawMessage
	if err := dec.Decode(&payload); err != nil {
		return Default, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return Default, fmt.Errorf("%w: trailing data", ErrMalformed)
	}

	raw, ok := payload["severity"]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return Default, ErrMissing
	}

	var n json.Number
	if raw[0] == '"' {
		return Default, fmt.Errorf("%w: severity is a string: %s", ErrOutOfRange, raw)
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return Default, fmt.Errorf("%w: severity is not a number: %s", ErrOutOfRange, raw)
	}
	v, err := n.Int64()
	if err != nil {
		return Default, fmt.Errorf("%w: severity is not an integer: %s", ErrOutOfRange, n)
	}
	lvl := Level(v)
	if !lvl.Valid() {
		return Default, fmt.Errorf("%w: %d", ErrOutOfRange, v)
	}
	return lvl, nil
}

// stripFence removes a ```lang ... ``` wrapper when present.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}
