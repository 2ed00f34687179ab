package models

import "time"

// Listing status values. An empty status is treated as StatusForSale.
const (
	StatusForSale = "for sale"
	StatusPending = "pending"
	StatusSold    = "sold"
)

// DateLayout is the calendar-date format used for listing and saved dates.
const DateLayout = "2006-01-02"

// Property represents a single real-estate listing.
// Optional values use pointers to distinguish "not available" from zero.
type Property struct {
	Price        *float64 `json:"price,omitempty"`
	YearBuilt    *int     `json:"yearBuilt,omitempty"`
	Title        string   `json:"title"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zipCode"`
	PropertyType string   `json:"propertyType"`
	Status       string   `json:"status"`
	Description  string   `json:"description,omitempty"`
	ListingDate  string   `json:"listingDate"`
	Images       []string `json:"images"`
	Amenities    []string `json:"amenities"`
	Bathrooms    float64  `json:"bathrooms"`
	ID           int      `json:"Id"`
	Bedrooms     int      `json:"bedrooms"`
	SquareFeet   int      `json:"squareFeet"`
}

// Clone returns a deep copy of the property. Callers of the repositories only
// ever receive clones, so mutating a returned value never reaches the store.
func (p Property) Clone() Property {
	out := p
	if p.Price != nil {
		price := *p.Price
		out.Price = &price
	}
	if p.YearBuilt != nil {
		year := *p.YearBuilt
		out.YearBuilt = &year
	}
	out.Images = cloneStrings(p.Images)
	out.Amenities = cloneStrings(p.Amenities)
	return out
}

// EffectiveStatus returns the listing status, defaulting to "for sale".
func (p Property) EffectiveStatus() string {
	if p.Status == "" {
		return StatusForSale
	}
	return p.Status
}

// PropertyInput is the payload accepted when creating a listing.
type PropertyInput struct {
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	YearBuilt    *int     `json:"yearBuilt" validate:"omitempty,gte=1600,lte=2200"`
	Title        string   `json:"title" validate:"required,max=200"`
	Address      string   `json:"address" validate:"max=300"`
	City         string   `json:"city" validate:"max=100"`
	State        string   `json:"state" validate:"max=100"`
	ZipCode      string   `json:"zipCode" validate:"max=20"`
	PropertyType string   `json:"propertyType" validate:"max=50"`
	Status       string   `json:"status" validate:"omitempty,oneof='for sale' pending sold"`
	Description  string   `json:"description"`
	Images       []string `json:"images" validate:"dive,required"`
	Amenities    []string `json:"amenities" validate:"dive,required"`
	Bathrooms    float64  `json:"bathrooms" validate:"gte=0"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0"`
	SquareFeet   int      `json:"squareFeet" validate:"gte=0"`
}

// ToProperty builds a property record from the input. Id and listing date are
// left for the repository to assign.
func (in PropertyInput) ToProperty() Property {
	p := Property{
		Title:        in.Title,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		PropertyType: in.PropertyType,
		Status:       in.Status,
		Description:  in.Description,
		Images:       in.Images,
		Amenities:    in.Amenities,
		Bathrooms:    in.Bathrooms,
		Bedrooms:     in.Bedrooms,
		SquareFeet:   in.SquareFeet,
		Price:        in.Price,
		YearBuilt:    in.YearBuilt,
	}
	if p.Status == "" {
		p.Status = StatusForSale
	}
	return p.Clone()
}

// PropertyPatch carries a partial update. Nil fields are retained from the
// existing record; non-nil fields overwrite it.
type PropertyPatch struct {
	Price        *float64  `json:"price" validate:"omitempty,gte=0"`
	YearBuilt    *int      `json:"yearBuilt" validate:"omitempty,gte=1600,lte=2200"`
	Title        *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Address      *string   `json:"address" validate:"omitempty,max=300"`
	City         *string   `json:"city" validate:"omitempty,max=100"`
	State        *string   `json:"state" validate:"omitempty,max=100"`
	ZipCode      *string   `json:"zipCode" validate:"omitempty,max=20"`
	PropertyType *string   `json:"propertyType" validate:"omitempty,max=50"`
	Status       *string   `json:"status" validate:"omitempty,oneof='for sale' pending sold"`
	Description  *string   `json:"description"`
	ListingDate  *string   `json:"listingDate" validate:"omitempty,datetime=2006-01-02"`
	Images       *[]string `json:"images"`
	Amenities    *[]string `json:"amenities"`
	Bathrooms    *float64  `json:"bathrooms" validate:"omitempty,gte=0"`
	Bedrooms     *int      `json:"bedrooms" validate:"omitempty,gte=0"`
	SquareFeet   *int      `json:"squareFeet" validate:"omitempty,gte=0"`
}

// Apply merges the patch over p and returns the result. p is not modified.
func (patch PropertyPatch) Apply(p Property) Property {
	out := p.Clone()
	if patch.Price != nil {
		price := *patch.Price
		out.Price = &price
	}
	if patch.YearBuilt != nil {
		year := *patch.YearBuilt
		out.YearBuilt = &year
	}
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Address != nil {
		out.Address = *patch.Address
	}
	if patch.City != nil {
		out.City = *patch.City
	}
	if patch.State != nil {
		out.State = *patch.State
	}
	if patch.ZipCode != nil {
		out.ZipCode = *patch.ZipCode
	}
	if patch.PropertyType != nil {
		out.PropertyType = *patch.PropertyType
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.ListingDate != nil {
		out.ListingDate = *patch.ListingDate
	}
	if patch.Images != nil {
		out.Images = cloneStrings(*patch.Images)
	}
	if patch.Amenities != nil {
		out.Amenities = cloneStrings(*patch.Amenities)
	}
	if patch.Bathrooms != nil {
		out.Bathrooms = *patch.Bathrooms
	}
	if patch.Bedrooms != nil {
		out.Bedrooms = *patch.Bedrooms
	}
	if patch.SquareFeet != nil {
		out.SquareFeet = *patch.SquareFeet
	}
	return out
}

// Today returns the current calendar date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
