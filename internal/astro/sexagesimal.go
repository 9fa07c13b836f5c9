package astro

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// Errors for sexagesimal parsing.
var (
	ErrEmptySexagesimal     = errors.New("empty sexagesimal value")
	ErrMalformedSexagesimal = errors.New("sexagesimal value needs at least two leading digits")
)

// ParseSexagesimal converts "HH:MM:SS[.s]" (isDec false) or "±DD:MM:SS[.s]"
// (isDec true) into decimal degrees.
//
// Every non-digit character is discarded except a leading sign, and the
// remaining digits are split into fixed groups of 2, 2, 2 and a fraction.
// Separators are therefore optional: "+193012.5" and "+19:30:12.5" parse to
// the same value. A sign on an RA value is ignored.
func ParseSexagesimal(text string, isDec bool) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrEmptySexagesimal
	}

	sign, digits := splitSign(text)
	if len(digits) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedSexagesimal, text)
	}

	lead, _ := strconv.Atoi(digits[0:2])
	minutes, _ := strconv.Atoi(digitGroup(digits, 2, 4))
	sec, err := parseSeconds(digitGroup(digits, 4, 6), digitGroup(digits, 6, len(digits)))
	if err != nil {
		return 0, fmt.Errorf("parse seconds of %q: %w", text, err)
	}

	if !isDec {
		ra := unit.NewRA(lead, minutes, sec)
		return radToDeg(ra.Rad()), nil
	}

	neg := byte('+')
	if sign == "-" {
		neg = '-'
	}
	return radToDeg(unit.NewAngle(neg, lead, minutes, sec).Rad()), nil
}

// FormatSexagesimal formats decimal degrees as RA ("HH:MM:SS.ss") or Dec
// ("±DD:MM:SS.s").
func FormatSexagesimal(deg float64, isDec bool) string {
	if isDec {
		return FormatDec(deg)
	}
	return FormatRA(deg)
}

// FormatRA formats an RA in degrees as hours, minutes and seconds of time.
//
// Each unit is truncated, not rounded, so formatting then parsing can lose
// up to 0.01s of time. The conversion is not exactly invertible.
func FormatRA(deg float64) string {
	for deg < 0 {
		deg += 360
	}
	deg = math.Mod(deg, 360)

	hours := math.Floor(deg / 15)
	rem := math.Mod(deg, 15) * 4 // minutes of time
	minutes := math.Floor(rem)
	seconds := truncate((rem-minutes)*60, 2)

	return fmt.Sprintf("%02d:%02d:%05.2f", int(hours), int(minutes), seconds)
}

// FormatDec formats a declination in degrees as signed degrees, arcminutes
// and arcseconds. Units are truncated, like FormatRA.
func FormatDec(deg float64) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
	}
	abs := math.Mod(math.Abs(deg), 360)

	d := math.Floor(abs)
	rem := (abs - d) * 60
	m := math.Floor(rem)
	s := truncate((rem-m)*60, 1)

	return fmt.Sprintf("%s%02d:%02d:%04.1f", sign, int(d), int(m), s)
}

// FormatSexagesimalInput reformats partially typed coordinate text by
// inserting separators at the fixed digit widths, keeping a leading sign.
// "1930" becomes "19:30:" and "1930125" becomes "19:30:12.5".
func FormatSexagesimalInput(text string) string {
	sign, digits := splitSign(text)

	switch n := len(digits); {
	case n < 2:
		// not enough to segment
	case n < 3:
		digits += ":"
	case n < 5:
		digits = digits[0:2] + ":" + digitGroup(digits, 2, 4) + ":"
	case n < 6:
		digits = digits[0:2] + ":" + digits[2:4] + ":" + digitGroup(digits, 4, 6)
	case n < 7:
		digits = digits[0:2] + ":" + digits[2:4] + ":" + digits[4:6] + "."
	default:
		digits = digits[0:2] + ":" + digits[2:4] + ":" + digits[4:6] + "." + digits[6:]
	}
	return sign + digits
}

// splitSign returns the leading sign ("", "+" or "-") and every digit of s.
func splitSign(s string) (string, string) {
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign = s[:1]
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return sign, b.String()
}

// digitGroup returns digits[from:to] clamped to the string length.
func digitGroup(digits string, from, to int) string {
	if from >= len(digits) {
		return ""
	}
	if to > len(digits) {
		to = len(digits)
	}
	return digits[from:to]
}

func parseSeconds(whole, frac string) (float64, error) {
	if whole == "" {
		return 0, nil
	}
	if frac == "" {
		return strconv.ParseFloat(whole, 64)
	}
	return strconv.ParseFloat(whole+"."+frac, 64)
}

// truncate drops v to the given number of decimal places.
func truncate(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Floor(v*scale) / scale
}
