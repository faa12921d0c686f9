package models

import "time"

// Recipe is the central entity. Complexity and TimeToPrepare are derived from
// the instruction set and are only ever written by the repository inside the
// same transaction as the instruction mutation that changed them.
type Recipe struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	RecipeCategoryID *uint           `gorm:"index" json:"recipe_category_id,omitempty"`
	Category         *RecipeCategory `gorm:"foreignKey:RecipeCategoryID" json:"category,omitempty"`

	Calories    float64 `gorm:"not null;default:0;check:calories >= 0" json:"calories"`
	Carbo       float64 `gorm:"not null;default:0;check:carbo >= 0" json:"carbo"`
	Fats        float64 `gorm:"not null;default:0;check:fats >= 0" json:"fats"`
	Proteins    float64 `gorm:"not null;default:0;check:proteins >= 0" json:"proteins"`
	Cholesterol float64 `gorm:"not null;default:0;check:cholesterol >= 0" json:"cholesterol"`

	// Derived aggregates. Complexity is the mean of instruction complexities
	// rounded to one decimal; TimeToPrepare is the sum of instruction times.
	// Both are 0 for a recipe with no instructions.
	TimeToPrepare int     `gorm:"not null;default:0" json:"time_to_prepare"`
	Complexity    float64 `gorm:"not null;default:0" json:"complexity"`

	Serves int `gorm:"not null;default:1;check:serves >= 1" json:"serves"`

	IsPublished bool `gorm:"not null;default:false" json:"is_published"`
	IsDeleted   bool `gorm:"not null;default:false;index" json:"-"`

	CreatedByID   uint       `gorm:"not null;index" json:"created_by"`
	CreatedOn     time.Time  `gorm:"autoCreateTime" json:"created_on"`
	UpdatedByID   *uint      `json:"updated_by,omitempty"`
	UpdatedOn     *time.Time `json:"updated_on,omitempty"`
	PublishedByID *uint      `json:"published_by,omitempty"`
	PublishedOn   *time.Time `json:"published_on,omitempty"`
	DeletedByID   *uint      `json:"-"`
	DeletedOn     *time.Time `json:"-"`

	Instructions []RecipeInstruction `gorm:"foreignKey:RecipeID" json:"instructions"`
	Ingredients  []RecipeIngredient  `gorm:"foreignKey:RecipeID" json:"ingredients"`
	Images       []RecipeImage       `gorm:"foreignKey:RecipeID" json:"images,omitempty"`
}

type RecipeCategory struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedByID uint       `gorm:"not null" json:"created_by"`
	CreatedOn   time.Time  `gorm:"autoCreateTime" json:"created_on"`
	UpdatedByID *uint      `json:"updated_by,omitempty"`
	UpdatedOn   *time.Time `json:"updated_on,omitempty"`
}

// RecipeInstruction is one ordered preparation step. Ordering follows
// insertion order, i.e. ascending id.
type RecipeInstruction struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	RecipeID      uint    `gorm:"not null;index" json:"recipe_id"`
	Text          string  `gorm:"type:text;not null" json:"text"`
	Category      string  `gorm:"size:50" json:"category"`
	TimeInMinutes int     `gorm:"not null;default:0;check:time_in_minutes >= 0" json:"time_in_minutes"`
	Complexity    float64 `gorm:"not null;check:complexity >= 1 AND complexity <= 5" json:"complexity"`
}

// RecipeImage tracks an uploaded image through the async S3 upload job.
type RecipeImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	RecipeID  uint      `gorm:"not null;index" json:"recipe_id"`
	ObjectKey string    `gorm:"size:255;not null" json:"-"`
	URL       string    `gorm:"size:255" json:"url"`
	State     string    `gorm:"size:20;not null;default:'pending'" json:"state"`
	CreatedOn time.Time `gorm:"autoCreateTime" json:"created_on"`
}

const (
	ImageStatePending  = "pending"
	ImageStateUploaded = "uploaded"
)
