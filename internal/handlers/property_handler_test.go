package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/homescout/api/internal/errors"
	"github.com/stwalsh4118/homescout/api/internal/models"
)

func responseIDs(properties []PropertyData) []int {
	ids := make([]int, 0, len(properties))
	for _, p := range properties {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPropertyList_NoFilters(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/properties", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[PropertyListResponse](t, w)
	assert.Equal(t, 8, resp.Count)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, responseIDs(resp.Properties))
	assert.False(t, resp.HasActiveFilters)
	assert.Empty(t, resp.Search)
}

func TestPropertyList_Filters(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []int
	}{
		{name: "location matches city ignoring case", query: "location=austin", expected: []int{1, 8}},
		{name: "location matches zip code", query: "location=80206", expected: []int{4}},
		{name: "min price excludes unpriced land", query: "minPrice=500000", expected: []int{2, 3, 4, 6}},
		{name: "price range", query: "minPrice=400000&maxPrice=650000", expected: []int{1, 2, 4}},
		{name: "property type ignores case", query: "propertyType=HOUSE", expected: []int{2, 3, 6}},
		{name: "beds and baths", query: "minBeds=3&minBaths=2", expected: []int{3, 4, 6}},
		{name: "max square feet", query: "maxSqft=1000", expected: []int{5, 7}},
		{name: "square feet range", query: "minSqft=1200&maxSqft=2000", expected: []int{1, 2, 4}},
		{name: "blank values are ignored", query: "minPrice=&location=%20", expected: []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{name: "no matches", query: "location=nowhere", expected: []int{}},
	}

	api := setupTestAPI(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodGet, "/api/v1/properties?"+tt.query, nil)

			require.Equal(t, http.StatusOK, w.Code)
			resp := decodeJSON[PropertyListResponse](t, w)
			assert.Equal(t, tt.expected, responseIDs(resp.Properties))
			assert.Equal(t, len(tt.expected), resp.Count)
		})
	}
}

func TestPropertyList_EchoesFilterState(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/properties?location=Denver&minBeds=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[PropertyListResponse](t, w)
	assert.True(t, resp.HasActiveFilters)
	assert.Equal(t, "Denver", resp.Filters.Location)
	assert.Equal(t, "2", resp.Filters.MinBeds)
	assert.Equal(t, "Denver", resp.Search)
}

func TestPropertyList_InvalidNumber(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/properties?minPrice=abc&maxSqft=-10", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, apierrors.ErrValidation, detail.Code)
	assert.Equal(t, "must be a number", detail.Details["minPrice"])
	assert.Equal(t, "must not be negative", detail.Details["maxSqft"])
	assert.NotEmpty(t, detail.RequestID)
}

func TestPropertyGet_Labels(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/properties/1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	p := decodeJSON[PropertyResponse](t, w).Property
	assert.Equal(t, "Modern Downtown Loft", p.Title)
	assert.Equal(t, "$485,000", p.PriceLabel)
	assert.Equal(t, "1,250 sq ft", p.SquareFeetLabel)
	assert.Equal(t, "March 15, 2024", p.ListingDateLabel)
	assert.Equal(t, "2 beds, 2 baths", p.BedsBathsLabel)
	assert.Equal(t, "For sale", p.StatusLabel)
	assert.Equal(t, "modern-downtown-loft-austin-1", p.Slug)
}

func TestPropertyGet_UnpricedLand(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/properties/7", nil)

	require.Equal(t, http.StatusOK, w.Code)
	p := decodeJSON[PropertyResponse](t, w).Property
	assert.Nil(t, p.Price)
	assert.Equal(t, "Price not available", p.PriceLabel)
	assert.Equal(t, "0 sq ft", p.SquareFeetLabel)
}

func TestPropertyGet_Errors(t *testing.T) {
	api := setupTestAPI(t)

	missing := api.do(t, http.MethodGet, "/api/v1/properties/99", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, apierrors.ErrNotFound, decodeError(t, missing).Code)

	invalid := api.do(t, http.MethodGet, "/api/v1/properties/abc", nil)
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
	assert.Equal(t, apierrors.ErrBadRequest, decodeError(t, invalid).Code)

	zero := api.do(t, http.MethodGet, "/api/v1/properties/0", nil)
	assert.Equal(t, http.StatusBadRequest, zero.Code)
}

func TestPropertySearch(t *testing.T) {
	api := setupTestAPI(t)

	byZip := api.do(t, http.MethodGet, "/api/v1/properties/search?q=97215", nil)
	require.Equal(t, http.StatusOK, byZip.Code)
	resp := decodeJSON[SearchResponse](t, byZip)
	assert.Equal(t, []int{2}, responseIDs(resp.Properties))
	assert.Equal(t, "97215", resp.Query)

	byType := api.do(t, http.MethodGet, "/api/v1/properties/search?q=Townhouse", nil)
	require.Equal(t, http.StatusOK, byType.Code)
	assert.Contains(t, responseIDs(decodeJSON[SearchResponse](t, byType).Properties), 4)

	empty := api.do(t, http.MethodGet, "/api/v1/properties/search?q=", nil)
	require.Equal(t, http.StatusOK, empty.Code)
	assert.Equal(t, 8, decodeJSON[SearchResponse](t, empty).Count)
}

func TestPropertyCreate(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/properties", map[string]interface{}{
		"title":        "Lakeside Cottage",
		"city":         "Madison",
		"state":        "WI",
		"price":        325000,
		"bedrooms":     2,
		"bathrooms":    1.5,
		"propertyType": "house",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decodeJSON[PropertyResponse](t, w).Property
	assert.Equal(t, 9, p.ID)
	assert.Equal(t, models.Today(), p.ListingDate)
	assert.Equal(t, models.StatusForSale, p.Status)
	assert.Equal(t, "2 beds, 1.5 baths", p.BedsBathsLabel)

	fetched := api.do(t, http.MethodGet, "/api/v1/properties/9", nil)
	assert.Equal(t, http.StatusOK, fetched.Code)
}

func TestPropertyCreate_Invalid(t *testing.T) {
	api := setupTestAPI(t)

	missingTitle := api.do(t, http.MethodPost, "/api/v1/properties", map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusBadRequest, missingTitle.Code)
	detail := decodeError(t, missingTitle)
	assert.Equal(t, apierrors.ErrValidation, detail.Code)
	assert.Equal(t, "This field is required", detail.Details["Title"])

	malformed := api.do(t, http.MethodPost, "/api/v1/properties", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
	assert.Equal(t, apierrors.ErrBadRequest, decodeError(t, malformed).Code)
}

func TestPropertyUpdate(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodPatch, "/api/v1/properties/1", map[string]interface{}{
		"price":  450000,
		"status": "pending",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decodeJSON[PropertyResponse](t, w).Property
	assert.Equal(t, "$450,000", p.PriceLabel)
	assert.Equal(t, "Pending", p.StatusLabel)
	assert.Equal(t, "Modern Downtown Loft", p.Title, "unspecified fields are retained")

	missing := api.do(t, http.MethodPatch, "/api/v1/properties/99", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusNotFound, missing.Code)

	invalid := api.do(t, http.MethodPatch, "/api/v1/properties/1", map[string]interface{}{"status": "rented"})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
	assert.Equal(t, apierrors.ErrValidation, decodeError(t, invalid).Code)
}

func TestPropertyDelete(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodDelete, "/api/v1/properties/8", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8, decodeJSON[PropertyResponse](t, w).Property.ID)

	gone := api.do(t, http.MethodGet, "/api/v1/properties/8", nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)

	again := api.do(t, http.MethodDelete, "/api/v1/properties/8", nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestMapView_NotImplemented(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/map", nil)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, apierrors.ErrNotImplemented, decodeError(t, w).Code)
}
