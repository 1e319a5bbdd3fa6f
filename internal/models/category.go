package models

// Category is static reference data for places, seeded at startup.
type Category struct {
	CategoryID   uint   `json:"category_id" gorm:"primaryKey;column:category_id"`
	CategoryName string `json:"category_name" gorm:"uniqueIndex;type:varchar(50);not null"`
}

func (Category) TableName() string {
	return "categories"
}

// DefaultCategoryID is assigned to places created without an explicit category.
const DefaultCategoryID uint = 1

// SeedCategories is the fixed category list inserted when the table is empty.
var SeedCategories = []string{
	"Restaurant", "Cafe", "Park", "Museum", "Shop",
	"Hotel", "Bar", "Landmark", "Beach", "Mall",
}
