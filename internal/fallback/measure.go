package fallback

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const mmPerInch = 25.4

// measurePattern matches a number followed by a length unit. Units cover
// the forms users actually type: inch marks, mm/cm and their Persian names.
var measurePattern = regexp.MustCompile(
	`(?i)(\d+(?:[.,]\d+)?)\s*(["″]|mm|cm|inch|in\b|میلی‌?متر|میلیمتر|سانتی‌?متر|سانت|اینچ)`)

// persianDigits maps Extended Arabic-Indic digits to ASCII.
var persianDigits = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// ParseMeasurement extracts the first embedded length from text and
// normalizes it to millimeters. Inches convert at 25.4 mm/inch, centimeters
// at 10 mm/cm. Returns ok=false when no measurement is present.
func ParseMeasurement(text string) (mm float64, ok bool) {
	m := measurePattern.FindStringSubmatch(persianDigits.Replace(text))
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}

	switch unit := strings.ToLower(m[2]); unit {
	case `"`, "″", "inch", "in", "اینچ":
		mm = value * mmPerInch
	case "cm", "سانت", "سانتیمتر", "سانتی‌متر":
		mm = value * 10
	default: // mm and Persian spellings of millimeter
		mm = value
	}
	return mm, true
}

// RoundMM renders a millimeter value the way replies display it: nearest
// whole millimeter.
func RoundMM(mm float64) int {
	return int(math.Round(mm))
}
