// Package timeutil holds the minute arithmetic shared by the scheduling
// engine. The agenda works on "HH:MM" wall-clock strings and half-open
// minute intervals; everything here is pure and never panics on bad input.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseHHMM converts "HH:MM" to minutes since midnight. ok is false for
// anything that is not a well-formed 24h time ("8:00" is accepted, "24:00"
// and "08:61" are not).
func ParseHHMM(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// FormatMinutes renders minutes since midnight as "HH:MM". Values outside a
// day are clamped into [0, 24h) so rendering never produces garbage.
func FormatMinutes(min int) string {
	if min < 0 {
		min = 0
	}
	if min >= 24*60 {
		min = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// ValidDate reports whether s is a real ISO calendar date (YYYY-MM-DD).
// Parsing catches impossible days such as February 31st; the year floor
// rejects obvious typos like "0226-02-10".
func ValidDate(s string) bool {
	t, err := time.Parse("2006-01-02", s)
	return err == nil && t.Year() >= 1900
}
