// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseISO8601Duration parses the subset of ISO-8601 durations the record
// TTL uses on the wire: PnYnMnDTnHnMnS, with only the H/M/S time components
// expected in practice (no calendar arithmetic is needed for a lease TTL).
func ParseISO8601Duration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if s[0] != 'P' {
		return 0, fmt.Errorf("duration %q must start with P", s)
	}
	rest := s[1:]

	datePart := rest
	timePart := ""
	if idx := strings.IndexByte(rest, 'T'); idx >= 0 {
		datePart = rest[:idx]
		timePart = rest[idx+1:]
	}

	var total time.Duration
	var err error

	total, err = accumulate(total, datePart, map[byte]time.Duration{
		'Y': 365 * 24 * time.Hour,
		'M': 30 * 24 * time.Hour,
		'D': 24 * time.Hour,
		'W': 7 * 24 * time.Hour,
	})
	if err != nil {
		return 0, err
	}

	total, err = accumulate(total, timePart, map[byte]time.Duration{
		'H': time.Hour,
		'M': time.Minute,
		'S': time.Second,
	})
	if err != nil {
		return 0, err
	}

	if total <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return total, nil
}

func accumulate(total time.Duration, part string, units map[byte]time.Duration) (time.Duration, error) {
	if part == "" {
		return total, nil
	}
	numStart := 0
	for i := 0; i < len(part); i++ {
		c := part[i]
		if c >= '0' && c <= '9' || c == '.' {
			continue
		}
		unit, ok := units[c]
		if !ok {
			return 0, fmt.Errorf("unrecognized duration component %q", string(c))
		}
		value, err := strconv.ParseFloat(part[numStart:i], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration magnitude %q: %w", part[numStart:i], err)
		}
		total += time.Duration(value * float64(unit))
		numStart = i + 1
	}
	if numStart != len(part) {
		return 0, fmt.Errorf("trailing characters in duration component %q", part)
	}
	return total, nil
}

// FormatISO8601Duration renders a duration back to the wire form PT#H#M#S,
// omitting zero components (but always emitting at least one).
func FormatISO8601Duration(d time.Duration) string {
	if d <= 0 {
		return "PT0S"
	}
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := d.Seconds()

	var b strings.Builder
	b.WriteString("PT")
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		if seconds == float64(int64(seconds)) {
			fmt.Fprintf(&b, "%dS", int64(seconds))
		} else {
			fmt.Fprintf(&b, "%gS", seconds)
		}
	}
	return b.String()
}
