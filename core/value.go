package core

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the format produced by the date/time picker.
const DateTimeLayout = "2006-Jan-02 15:04"

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseFloat parses the longest numeric prefix of s, ignoring leading
// whitespace, so "3.14abc" yields 3.14. A string without a numeric prefix
// yields ErrNotANumber.
func ParseFloat(s string) (any, error) {
	match := floatPrefix.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
	if match == "" {
		return nil, fmt.Errorf("%q: %w", s, ErrNotANumber)
	}

	switch strings.TrimLeft(match, "+-") {
	case "Infinity":
		if strings.HasPrefix(match, "-") {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	}

	// the prefix is always well formed, out of range values come back as +-Inf
	f, _ := strconv.ParseFloat(match, 64)
	return f, nil
}

// ParseInt parses a whole number, truncating any fraction. Values outside
// the int64 range are not numbers.
func ParseInt(s string) (any, error) {
	f, err := ParseFloat(s)
	if err != nil {
		return nil, err
	}

	v := math.Trunc(f.(float64))
	if math.IsInf(v, 0) || math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return nil, fmt.Errorf("%q: %w", s, ErrNotANumber)
	}
	return int64(v), nil
}

// ParseList splits s into lines and returns the non-empty ones sorted.
func ParseList(s string) (any, error) {
	var values []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			values = append(values, line)
		}
	}
	slices.Sort(values)
	return values, nil
}

// ToText converts a stored value into its plain text representation.
func ToText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(DateTimeLayout)
	case []string:
		return strings.Join(v, "\n")
	case []any:
		return strings.Join(ToList(v), "\n")
	default:
		return fmt.Sprint(v)
	}
}

// ToList converts a stored value into a list of strings. JSON arrays stored as
// text are decoded, other strings are split into lines.
func ToList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, ToText(item))
		}
		return out
	case string:
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var decoded []any
			if err := json.Unmarshal([]byte(v), &decoded); err == nil {
				return ToList(decoded)
			}
		}
		if v == "" {
			return nil
		}
		return strings.Split(v, "\n")
	default:
		return []string{ToText(v)}
	}
}

// Truthy is the default constraint of required columns: nil, empty strings,
// zero numbers, NaN, false and empty lists are rejected.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return true
	}
}

// IsDateTime reports whether value is a picker formatted date/time.
func IsDateTime(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(DateTimeLayout, s)
	return err == nil
}
