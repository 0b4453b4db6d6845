package datanorm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// sheetEpoch is day zero of the spreadsheet serial date system.
var sheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order for string-valued dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// coerceString renders any raw cell value as a trimmed string.
func coerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// coerceFloat parses a numeric cell. Thousands separators and currency
// symbols are stripped; parse failures and NaN degrade to 0 because
// historical feeds are expected to be noisy.
func coerceFloat(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimPrefix(s, "$")
		s = strings.TrimSuffix(s, "%")
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// coerceCount parses a non-negative integer count, rounding fractional
// inputs to the nearest whole number.
func coerceCount(v interface{}) int {
	f := coerceFloat(v)
	if f < 0 {
		return 0
	}
	return int(math.Round(f))
}

// coerceRevenue parses a monetary value and rounds it to the nearest whole
// currency unit.
func coerceRevenue(v interface{}) float64 {
	f := coerceFloat(v)
	if f < 0 {
		return 0
	}
	return math.Round(f)
}

// coerceDate parses a date cell. Accepts a spreadsheet serial day number,
// an ISO-like string, or a human-readable "Mon D, YYYY" string. On total
// failure it returns ok=false so the caller can default to the processing
// date instead of dropping the row.
func coerceDate(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		return serialDate(t)
	case int:
		return serialDate(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return serialDate(f)
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		// A purely numeric string is a serial day number in disguise.
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialDate(f)
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// serialDate converts a spreadsheet serial day number to a calendar date.
// Serial numbers below 1 or implausibly far in the future are rejected.
func serialDate(f float64) (time.Time, bool) {
	if f < 1 || f > 200000 {
		return time.Time{}, false
	}
	days := int(f)
	frac := f - float64(days)
	d := sheetEpoch.AddDate(0, 0, days)
	if frac > 0 {
		d = d.Add(time.Duration(frac * 24 * float64(time.Hour)))
	}
	return d, true
}

// coerceList parses a cell that may hold a list: a real slice from JSON, a
// Python/JSON-style bracket string like ['A', 'B'] or ["A","B"], or a
// scalar (returned as a one-element list). Empty cells yield nil.
func coerceList(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := coerceString(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			inner := strings.TrimSpace(s[1 : len(s)-1])
			if inner == "" {
				return nil
			}
			parts := strings.Split(inner, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				p = strings.Trim(p, "'\"")
				if p != "" {
					out = append(out, p)
				}
			}
			return out
		}
		return []string{s}
	default:
		if s := coerceString(v); s != "" {
			return []string{s}
		}
		return nil
	}
}
