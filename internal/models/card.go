package models

// Category is one of the three card families a hand must cover.
type Category string

const (
	CategoryElement  Category = "element"
	CategoryAction   Category = "action"
	CategoryMaterial Category = "material"
)

// Categories is the fixed category order used when dealing a hand.
var Categories = []Category{CategoryElement, CategoryAction, CategoryMaterial}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryElement, CategoryAction, CategoryMaterial:
		return true
	}
	return false
}

// Card is an immutable constraint card loaded from the catalog.
type Card struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    Category `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
}
