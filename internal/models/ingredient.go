package models

import "time"

type IngredientCategory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedOn time.Time `gorm:"autoCreateTime" json:"created_on"`
}

type Ingredient struct {
	ID                   uint                `gorm:"primarykey" json:"id"`
	Name                 string              `gorm:"size:255;uniqueIndex;not null" json:"name"`
	IngredientCategoryID *uint               `gorm:"index" json:"ingredient_category_id,omitempty"`
	Category             *IngredientCategory `gorm:"foreignKey:IngredientCategoryID" json:"category,omitempty"`
	CreatedOn            time.Time           `gorm:"autoCreateTime" json:"created_on"`
}

// RecipeIngredient maps an ingredient onto a recipe with a quantity.
type RecipeIngredient struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	RecipeID     uint        `gorm:"not null;index:idx_recipe_ingredient,unique" json:"recipe_id"`
	IngredientID uint        `gorm:"not null;index:idx_recipe_ingredient,unique" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Quantity     float64     `gorm:"not null;default:0" json:"quantity"`
}
