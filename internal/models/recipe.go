package models

import (
	"time"
)

// Storage-default orderings.
const (
	RecipeOrder           = "recipes.id DESC"
	RecipeIngredientOrder = "ingredients_in_recipe.id ASC"
)

type Recipe struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Image       string    `gorm:"size:255;not null" json:"image"`
	CookingTime int       `gorm:"not null;check:cooking_time_range,cooking_time >= 1 AND cooking_time <= 180" json:"cooking_time"`

	Author      User                  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag                 `gorm:"many2many:recipe_tags;" json:"-"`
	Ingredients []IngredientsInRecipe `gorm:"foreignKey:RecipeID" json:"-"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// IngredientsInRecipe carries the per-recipe amount of an ingredient.
type IngredientsInRecipe struct {
	ID           uint `gorm:"primarykey" json:"id"`
	RecipeID     uint `gorm:"not null;uniqueIndex:unique_recipe_ingredient" json:"recipe_id"`
	IngredientID uint `gorm:"not null;uniqueIndex:unique_recipe_ingredient" json:"ingredient_id"`
	Amount       int  `gorm:"not null;default:1;check:amount_range,amount >= 1 AND amount <= 1000" json:"amount"`

	Recipe     Recipe     `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	Ingredient Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (IngredientsInRecipe) TableName() string {
	return "ingredients_in_recipe"
}
