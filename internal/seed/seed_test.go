package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/homescout/api/internal/models"
)

func TestDefault(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)

	assert.Len(t, data.Properties, 8)
	assert.Len(t, data.Saved, 2)

	first := data.Properties[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Modern Downtown Loft", first.Title)
	require.NotNil(t, first.Price)
	assert.Equal(t, 485000.0, *first.Price)
	assert.Equal(t, "2024-03-15", first.ListingDate)

	// The land parcel has no price or build year
	var land *models.Property
	for i := range data.Properties {
		if data.Properties[i].PropertyType == "land" {
			land = &data.Properties[i]
		}
	}
	require.NotNil(t, land)
	assert.Nil(t, land.Price)
	assert.Nil(t, land.YearBuilt)
}

func TestDefault_ReturnsFreshCopies(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)

	a.Properties[0].Title = "changed"
	assert.Equal(t, "Modern Downtown Loft", b.Properties[0].Title)
}

func TestLoad_EmptyPathUsesEmbedded(t *testing.T) {
	data, err := Load("")
	require.NoError(t, err)
	assert.Len(t, data.Properties, 8)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	content := `{
		"properties": [{"Id": 10, "title": "Tiny House", "price": 99000, "listingDate": "2024-04-01"}],
		"saved": [{"Id": 1, "propertyId": 10, "savedDate": "2024-04-02", "notes": "cute"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	data, err := Load(path)
	require.NoError(t, err)
	require.Len(t, data.Properties, 1)
	assert.Equal(t, 10, data.Properties[0].ID)
	require.Len(t, data.Saved, 1)
	assert.Equal(t, "cute", data.Saved[0].Notes)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{name: "malformed json", content: `{"properties": [`, errContains: "failed to parse"},
		{name: "duplicate property id", content: `{"properties": [{"Id": 1, "title": "a"}, {"Id": 1, "title": "b"}]}`, errContains: "duplicate property id 1"},
		{name: "missing title", content: `{"properties": [{"Id": 1}]}`, errContains: "has no title"},
		{name: "zero id", content: `{"properties": [{"Id": 0, "title": "a"}]}`, errContains: "non-positive id"},
		{name: "negative price", content: `{"properties": [{"Id": 1, "title": "a", "price": -5}]}`, errContains: "negative price"},
		{name: "duplicate saved id", content: `{"saved": [{"Id": 1, "propertyId": 1}, {"Id": 1, "propertyId": 2}]}`, errContains: "duplicate saved record id 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read seed file")
}
