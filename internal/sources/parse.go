package sources

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// priceRegexp captures the first numeric value, thousands separators
	// allowed, and a magnitude suffix directly attached to it ("1.5M")
	priceRegexp = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)(?:\s*(k|m|million|b|billion)\b)?`)
	// countRegexp captures the leading integer of strings like "3 beds"
	countRegexp = regexp.MustCompile(`\d+`)
	multipliers = map[string]float64{"k": 1e3, "m": 1e6, "million": 1e6, "b": 1e9, "billion": 1e9}
)

// parsePrice extracts a price from display text.
// Examples:
//
//	"₦45,000,000" → 45000000
//	"NGN 1.5M / year" → 1500000
func parsePrice(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	m := priceRegexp.FindStringSubmatch(cleaned)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	if m[2] != "" {
		v *= multipliers[strings.ToLower(m[2])]
	}
	return v
}

func parseCount(raw string) *int {
	match := countRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}

func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// lookup walks a dotted path ("data.items") through decoded JSON objects.
func lookup(v any, path string) any {
	if path == "" {
		return v
	}
	for _, key := range strings.Split(path, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return normaliseText(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		if t == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func asPrice(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		return parsePrice(t)
	}
	return 0
}

func asCount(v any) *int {
	switch t := v.(type) {
	case float64:
		n := int(t)
		return &n
	case string:
		return parseCount(t)
	}
	return nil
}

// asStringSlice accepts a list of URLs or a list of objects carrying "url".
func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok && s != "" {
			return []string{s}
		}
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case map[string]any:
			if u, ok := t["url"].(string); ok && u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}
