package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration converts a textual time value into seconds. Spreadsheet
// exporters emit durations as "HH:MM:SS", "MM:SS", multi-day deltas like
// "1 day, 0:03:22", or plain numbers; a single right-to-left positional
// decomposition of the colon-separated fields covers all clock variants.
func ParseDuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "nan" || s == "NaN" {
		return 0.0, nil
	}

	if strings.Contains(s, "day") {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, raw)
		}
		dayFields := strings.Fields(parts[0])
		if len(dayFields) == 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, raw)
		}
		days, err := strconv.Atoi(dayFields[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, raw)
		}
		clock, err := colonSeconds(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, raw)
		}
		return float64(days)*86400 + clock, nil
	}

	if strings.Contains(s, ":") {
		secs, err := colonSeconds(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, raw)
		}
		return secs, nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDurationFormat, raw)
	}
	return n, nil
}

// colonSeconds reads colon-separated fields right to left: the field at
// position i from the right contributes value*60^i.
func colonSeconds(s string) (float64, error) {
	fields := strings.Split(s, ":")
	total := 0.0
	weight := 1.0
	for i := len(fields) - 1; i >= 0; i-- {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return 0, err
		}
		total += v * weight
		weight *= 60
	}
	return total, nil
}
