package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
	reTrimUnderscores   = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeCity lowercases and strips everything but letters and digits, so
// city values compare equal regardless of spacing or punctuation.
func SanitizeCity(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "_") },
		collapseUnderscores,
		func(s string) string { return strings.ReplaceAll(s, "_", "") },
	}
	return p.Apply(input)
}

// SanitizeCities normalizes every city and drops duplicates and empties.
func SanitizeCities(cities []string) []string {
	return SanitizeSlice(cities, SanitizeCity)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// ClampPriority keeps company dispatch priority inside [min, max].
func ClampPriority(priority, min, max int) int {
	if priority < min {
		return min
	}
	if priority > max {
		return max
	}
	return priority
}
