package models

// SavedProperty links the (single, implicit) user's saved list to a property.
// PropertyID is not enforced referentially: it may dangle after the property
// is deleted.
type SavedProperty struct {
	SavedDate  string `json:"savedDate"`
	Notes      string `json:"notes"`
	ID         int    `json:"Id"`
	PropertyID int    `json:"propertyId"`
}

// ToggleAction reports which branch a toggle took.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

// ToggleResult is returned by a toggle: the action taken and a copy of the
// record that was created or removed.
type ToggleResult struct {
	Action   ToggleAction  `json:"action"`
	Property SavedProperty `json:"property"`
}
