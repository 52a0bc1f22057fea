// Package timestamp parses the textual timestamps written by the pcap
// preprocessing, which prints Go time values with time.Time.String().
package timestamp

import (
	"fmt"
	"strings"
	"time"

	"Go2NetLoss/internal/model"
)

// Layout is the canonical textual form with microsecond precision.
const Layout = "2006-01-02 15:04:05.000000 -0700 MST"

const fractionDigits = 6

// alternateZones are labels rewritten to UTC before parsing. Only the label and
// offset are swapped, the clock digits are kept as recorded.
var alternateZones = map[string]string{
	"CEST": "+0200",
}

// Parse converts s into a UTC instant with microsecond resolution.
// A strict parse is attempted first; if it fails the seconds fraction is
// normalised to six digits and the parse is retried exactly once.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = rewriteZone(s)

	t, err := time.Parse(Layout, s)
	if err == nil {
		return t.UTC(), nil
	}

	repaired, ok := repairFraction(s)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrMalformedTimestamp, s)
	}
	t, err = time.Parse(Layout, repaired)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", model.ErrMalformedTimestamp, s, err)
	}
	return t.UTC(), nil
}

// Format renders t in the canonical layout.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

func rewriteZone(s string) string {
	for label, offset := range alternateZones {
		if strings.HasSuffix(s, " "+label) {
			s = strings.TrimSuffix(s, label) + "UTC"
			s = strings.Replace(s, " "+offset+" ", " +0000 ", 1)
		}
	}
	return s
}

// repairFraction rewrites "HH:MM:SS[.f*]" so the fraction has exactly six digits.
func repairFraction(s string) (string, bool) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return "", false
	}
	clock := fields[1]
	secs, frac, hasFrac := strings.Cut(clock, ".")
	if strings.Count(secs, ":") != 2 {
		return "", false
	}
	switch {
	case !hasFrac || frac == "":
		frac = strings.Repeat("0", fractionDigits)
	case len(frac) < fractionDigits:
		frac += strings.Repeat("0", fractionDigits-len(frac))
	case len(frac) > fractionDigits:
		frac = frac[:fractionDigits]
	}
	fields[1] = secs + "." + frac
	return strings.Join(fields, " "), true
}
