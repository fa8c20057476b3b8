package models

// Tag classifies recipes. Name and color formats are enforced by the
// validation package and, on PostgreSQL, by check constraints.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Color string `gorm:"size:18;not null;default:'#FFFFFF'" json:"color"`
	Slug  string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}

type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:unique_ingredient_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:unique_ingredient_unit" json:"measurement_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
