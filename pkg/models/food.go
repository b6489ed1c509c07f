package models

// Food is the canonical nutrition record stored in the FOOD_NUTRITION table.
// Identity for lookups is the normalized (whitespace-stripped) food name.
// A Food value is never mutated after construction; a re-fetch builds a new one.
type Food struct {
	FoodID       uint     `json:"food_id,omitempty" gorm:"column:food_id;primaryKey;autoIncrement"`
	FoodName     string   `json:"food_name" gorm:"column:food_name;size:100;uniqueIndex;not null"`
	Category     *string  `json:"category,omitempty" gorm:"column:category;size:100"`
	CaloriesKcal float64  `json:"calories_kcal" gorm:"column:calories_kcal;not null"`
	CarbsG       *float64 `json:"carbs_g,omitempty" gorm:"column:carbs_g"`
	ProteinG     *float64 `json:"protein_g,omitempty" gorm:"column:protein_g"`
	FatG         *float64 `json:"fat_g,omitempty" gorm:"column:fat_g"`
	SugarG       *float64 `json:"sugar_g,omitempty" gorm:"column:sugar_g"`
	FiberG       *float64 `json:"fiber_g,omitempty" gorm:"column:fiber_g"`
	SodiumMg     *float64 `json:"sodium_mg,omitempty" gorm:"column:sodium_mg"`
	CalciumMg    *float64 `json:"calcium_mg,omitempty" gorm:"column:calcium_mg"`
}

// TableName maps Food onto the legacy FOOD_NUTRITION table
func (Food) TableName() string {
	return "FOOD_NUTRITION"
}
