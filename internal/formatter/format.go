package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Placeholder marks a value that is missing, as opposed to zero.
const Placeholder = "--"

// ToFixed renders x with n decimals, rounding halves away from zero.
func ToFixed(x float64, n int) string {
	p := math.Pow(10, float64(n))
	return strconv.FormatFloat(math.Round(x*p)/p, 'f', n, 64)
}

// Round rounds halves toward positive infinity.
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Num renders x in its shortest form: 12, 4.5, 0.25.
func Num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Grouped renders x with thousands separators and at most three decimals.
func Grouped(x float64) string {
	if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
		return humanize.Comma(int64(x))
	}
	return humanize.CommafWithDigits(x, 3)
}

// FormatNumber abbreviates large counts: 999, 2K, 2.5M. Zero is missing.
func FormatNumber(n float64) string {
	switch {
	case n == 0 || math.IsNaN(n):
		return Placeholder
	case n >= 1e6:
		return ToFixed(n/1e6, 1) + "M"
	case n >= 1000:
		return ToFixed(n/1000, 0) + "K"
	}
	return Num(n)
}

// FormatCurrency renders $1.00, or "$--" when the amount is absent.
func FormatCurrency(p *float64) string {
	if p == nil {
		return "$" + Placeholder
	}
	return "$" + ToFixed(*p, 2)
}

// FormatPrice renders listing prices: $950, $450K, $1.3M.
func FormatPrice(price float64) string {
	switch {
	case price == 0 || math.IsNaN(price):
		return Placeholder
	case price >= 1e6:
		return "$" + ToFixed(price/1e6, 1) + "M"
	case price >= 1000:
		return "$" + ToFixed(price/1000, 0) + "K"
	}
	return "$" + Grouped(price)
}

// FormatWaitTime renders minutes as "25 min" or "1h 30m".
func FormatWaitTime(minutes float64) string {
	if minutes == 0 || math.IsNaN(minutes) {
		return Placeholder
	}
	if minutes < 60 {
		return Num(minutes) + " min"
	}
	hours := math.Floor(minutes / 60)
	return fmt.Sprintf("%sh %sm", Num(hours), Num(math.Mod(minutes, 60)))
}

// FormatEnrollment renders head counts with one decimal above a thousand.
func FormatEnrollment(n float64) string {
	if n == 0 || math.IsNaN(n) {
		return Placeholder
	}
	if n >= 1000 {
		return ToFixed(n/1000, 1) + "K"
	}
	return Num(n)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts ISO dates with or without a time part. Date-only values
// are read as UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders "Jan 2, 2006", or "--" for empty or unparsable input.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return Placeholder
	}
	return t.Format("Jan 2, 2006")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orPlaceholder(s string) string {
	return orDefault(s, Placeholder)
}

// digitsOnly strips everything but 0-9, for tel: links.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cityState joins city and state, dropping the comma when either is blank.
func cityState(city, state string) string {
	s := strings.TrimSpace(city + ", " + state)
	s = strings.TrimPrefix(s, ",")
	s = strings.TrimSuffix(s, ",")
	return strings.TrimSpace(s)
}

// postalBlock renders "address\ncity, state zip".
func postalBlock(address, city, state, zip string) string {
	line2 := strings.TrimSpace(cityState(city, state) + " " + zip)
	if address == "" {
		return line2
	}
	return address + "\n" + line2
}
