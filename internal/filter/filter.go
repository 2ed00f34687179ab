// Package filter computes the visible subset of listings for a set of filter
// inputs. Every active constraint is combined with logical AND, and empty
// inputs never constrain the result.
package filter

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/stwalsh4118/homescout/api/internal/models"
)

// ErrInvalidFilter is matched by FieldErrors via errors.Is.
var ErrInvalidFilter = errors.New("invalid filter value")

// State holds the raw filter inputs as typed into the search form. Every field
// is a string so that "empty" is distinguishable from zero.
type State struct {
	Location     string `form:"location" json:"location"`
	MinPrice     string `form:"minPrice" json:"minPrice"`
	MaxPrice     string `form:"maxPrice" json:"maxPrice"`
	PropertyType string `form:"propertyType" json:"propertyType"`
	MinBeds      string `form:"minBeds" json:"minBeds"`
	MinBaths     string `form:"minBaths" json:"minBaths"`
	MinSqft      string `form:"minSqft" json:"minSqft"`
	MaxSqft      string `form:"maxSqft" json:"maxSqft"`
}

// HasActive reports whether any filter field carries a value.
func (s State) HasActive() bool {
	for _, v := range s.values() {
		if v != "" {
			return true
		}
	}
	return false
}

// Clear resets every field to empty.
func (s *State) Clear() {
	*s = State{}
}

func (s State) values() []string {
	return []string{
		s.Location, s.MinPrice, s.MaxPrice, s.PropertyType,
		s.MinBeds, s.MinBaths, s.MinSqft, s.MaxSqft,
	}
}

// FieldErrors maps a filter field name to the reason its value was rejected.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, fe[field]))
	}
	return fmt.Sprintf("%s (%s)", ErrInvalidFilter.Error(), strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrInvalidFilter) match a FieldErrors value.
func (fe FieldErrors) Is(target error) bool {
	return target == ErrInvalidFilter
}

// Details converts the field errors into a generic map for error responses.
func (fe FieldErrors) Details() map[string]interface{} {
	out := make(map[string]interface{}, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

// Parse converts raw inputs into criteria. Empty inputs are left unset. Values
// that do not parse as a finite, non-negative number are also left unset and
// reported in the returned FieldErrors, which is nil when every input parsed.
// Parse never panics and never produces NaN bounds.
func Parse(s State) (models.Criteria, FieldErrors) {
	var c models.Criteria
	errs := FieldErrors{}

	if loc := strings.TrimSpace(s.Location); loc != "" {
		c.Location = &loc
	}
	if pt := strings.TrimSpace(s.PropertyType); pt != "" {
		c.PropertyType = &pt
	}

	c.MinPrice = parseFloatField(errs, "minPrice", s.MinPrice)
	c.MaxPrice = parseFloatField(errs, "maxPrice", s.MaxPrice)
	c.MinBaths = parseFloatField(errs, "minBaths", s.MinBaths)
	c.MinBeds = parseIntField(errs, "minBeds", s.MinBeds)
	c.MinSqft = parseIntField(errs, "minSqft", s.MinSqft)
	c.MaxSqft = parseIntField(errs, "maxSqft", s.MaxSqft)

	if len(errs) == 0 {
		return c, nil
	}
	return c, errs
}

func parseFloatField(errs FieldErrors, field, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs[field] = "must be a number"
		return nil
	}
	if v < 0 {
		errs[field] = "must not be negative"
		return nil
	}
	return &v
}

// parseIntField accepts whole numbers, and truncates decimal input the way a
// numeric form field would.
func parseIntField(errs FieldErrors, field, raw string) *int {
	f := parseFloatField(errs, field, raw)
	if f == nil {
		return nil
	}
	if *f > math.MaxInt32 {
		errs[field] = "is too large"
		return nil
	}
	v := int(*f)
	return &v
}

// Apply returns copies of the properties that satisfy every set constraint,
// preserving input order.
func Apply(properties []models.Property, c models.Criteria) []models.Property {
	out := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if Matches(p, c) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Matches reports whether p satisfies every set constraint in c. A property
// whose price is not available never satisfies a price bound.
func Matches(p models.Property, c models.Criteria) bool {
	if c.Location != nil && !MatchesLocation(p, *c.Location) {
		return false
	}
	if c.MinPrice != nil && (p.Price == nil || *p.Price < *c.MinPrice) {
		return false
	}
	if c.MaxPrice != nil && (p.Price == nil || *p.Price > *c.MaxPrice) {
		return false
	}
	if c.PropertyType != nil && !strings.EqualFold(p.PropertyType, *c.PropertyType) {
		return false
	}
	if c.MinBeds != nil && p.Bedrooms < *c.MinBeds {
		return false
	}
	if c.MinBaths != nil && p.Bathrooms < *c.MinBaths {
		return false
	}
	if c.MinSqft != nil && p.SquareFeet < *c.MinSqft {
		return false
	}
	if c.MaxSqft != nil && p.SquareFeet > *c.MaxSqft {
		return false
	}
	return true
}

// MatchesLocation reports whether term occurs, ignoring case, in the title,
// address, city, state or zip code. An empty term matches everything.
func MatchesLocation(p models.Property, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return containsFold(p.Title, term) ||
		containsFold(p.Address, term) ||
		containsFold(p.City, term) ||
		containsFold(p.State, term) ||
		strings.Contains(p.ZipCode, term)
}

// containsFold expects needle to be lower-cased already.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
