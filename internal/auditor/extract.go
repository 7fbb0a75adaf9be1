package auditor

import (
	"regexp"
	"strconv"
)

var (
	daysPattern  = regexp.MustCompile(`(?i)(\d{1,3})\s*day`)
	valuePattern = regexp.MustCompile(`\$(\d{1,6})(?:\.(\d{1,2}))?`)
)

// DaysSinceMention finds the first small integer followed by a "day" token
// (case-insensitive) and returns it. Only the first match is used.
func DaysSinceMention(text string) (int, bool) {
	m := daysPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// OrderValue finds the first $<digits>(.<digits>)? occurrence and returns
// it as a decimal number.
func OrderValue(text string) (float64, bool) {
	m := valuePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	raw := m[1]
	if m[2] != "" {
		raw += "." + m[2]
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
