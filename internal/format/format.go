// Package format renders listing values the way the listing pages display
// them: US currency without cents, grouped square footage, long dates.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/stwalsh4118/homescout/api/internal/models"
)

const (
	PriceUnavailable = "Price not available"
	NotAvailable     = "N/A"
	InvalidDate      = "Invalid Date"
)

// Price formats a price as whole US dollars, e.g. "$1,250,000".
// A nil price is shown as PriceUnavailable.
func Price(price *float64) string {
	if price == nil || math.IsNaN(*price) || math.IsInf(*price, 0) {
		return PriceUnavailable
	}

	dollars := int64(math.Round(*price))
	if dollars < 0 {
		return "-$" + humanize.Comma(-dollars)
	}
	return "$" + humanize.Comma(dollars)
}

// SquareFeet formats an area as "1,850 sq ft". Negative areas are shown as
// NotAvailable.
func SquareFeet(sqft int) string {
	if sqft < 0 {
		return NotAvailable
	}
	return humanize.Comma(int64(sqft)) + " sq ft"
}

// Date formats a YYYY-MM-DD date as "March 15, 2024".
func Date(date string) string {
	if strings.TrimSpace(date) == "" {
		return NotAvailable
	}

	t, err := time.Parse(models.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return InvalidDate
	}
	return t.Format("January 2, 2006")
}

// BedsBaths formats room counts as "3 beds, 2.5 baths", using the singular
// for exactly one.
func BedsBaths(beds int, baths float64) string {
	bedText := "beds"
	if beds == 1 {
		bedText = "bed"
	}
	bathText := "baths"
	if baths == 1 {
		bathText = "bath"
	}
	return fmt.Sprintf("%d %s, %s %s", beds, bedText, humanize.Ftoa(baths), bathText)
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Slug builds a URL-friendly identifier such as
// "modern-downtown-loft-austin-1". The id suffix keeps it unique.
func Slug(p models.Property) string {
	base := slug.Make(strings.TrimSpace(p.Title + " " + p.City))
	if base == "" {
		return fmt.Sprintf("property-%d", p.ID)
	}
	return fmt.Sprintf("%s-%d", base, p.ID)
}
