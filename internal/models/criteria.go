package models

// Criteria is a structured set of optional constraints narrowing the visible
// property set. A nil field is unset and acts as a pass-through; every set
// field is combined with logical AND.
type Criteria struct {
	MinPrice     *float64 `json:"minPrice,omitempty"`
	MaxPrice     *float64 `json:"maxPrice,omitempty"`
	MinBaths     *float64 `json:"minBaths,omitempty"`
	PropertyType *string  `json:"propertyType,omitempty"`
	Location     *string  `json:"location,omitempty"`
	MinBeds      *int     `json:"minBeds,omitempty"`
	MinSqft      *int     `json:"minSqft,omitempty"`
	MaxSqft      *int     `json:"maxSqft,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (c Criteria) IsEmpty() bool {
	return c.MinPrice == nil && c.MaxPrice == nil && c.MinBaths == nil &&
		c.PropertyType == nil && c.Location == nil && c.MinBeds == nil &&
		c.MinSqft == nil && c.MaxSqft == nil
}
