package client

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go-food-scanner/internal/logger"
	"go-food-scanner/pkg/models"
)

// NutritionDataClient fetches a nutrition record by product report number.
// A nil Food with a nil error means the report number has no nutrition data,
// which is normal control flow.
type NutritionDataClient interface {
	Fetch(ctx context.Context, reportNo string) (*models.Food, error)
}

// openDataNutritionClient queries the national food nutrient component
// database. Field names and numeric coercion are normalized here so the
// resolution core only ever sees Food values.
type openDataNutritionClient struct {
	api *apiClient
}

// NewNutritionDataClient creates a nutrition-data client for the given API
// base URL and service key
func NewNutritionDataClient(baseURL, serviceKey string, timeout time.Duration) NutritionDataClient {
	defaults := url.Values{
		"serviceKey": {serviceKey},
		"type":       {"json"},
		"numOfRows":  {"100"},
	}
	return &openDataNutritionClient{
		api: newAPIClient(baseURL, defaults, timeout),
	}
}

type nutritionResponse struct {
	Body struct {
		Items      []map[string]interface{} `json:"items"`
		TotalCount interface{}              `json:"totalCount"`
	} `json:"body"`
}

func (c *openDataNutritionClient) Fetch(ctx context.Context, reportNo string) (*models.Food, error) {
	params := url.Values{"ITEM_REPORT_NO": {reportNo}}

	var payload nutritionResponse
	if err := c.api.getJSON(ctx, "", params, &payload); err != nil {
		// Tolerant client: an unreachable nutrition service degrades to
		// "no data" rather than failing the scan
		logger.WithError(err).WithField("report_no", reportNo).Warn("Nutrition data request failed")
		return nil, nil
	}

	items := payload.Body.Items
	if len(items) == 0 {
		return nil, nil
	}

	// The database carries one row per revision; the most recently updated
	// row is authoritative
	sort.SliceStable(items, func(i, j int) bool {
		return asString(items[i]["UPDATE_DATE"]) > asString(items[j]["UPDATE_DATE"])
	})

	return mapFood(items[0]), nil
}

// mapFood translates the raw open-data row into a Food record. Calories are
// required; a coercion failure defaults to 0 rather than dropping the field.
func mapFood(row map[string]interface{}) *models.Food {
	food := &models.Food{
		FoodName:     asString(row["FOOD_NM_KR"]),
		CaloriesKcal: asFloat(row["AMT_NUM1"]),
	}
	if category := asString(row["FOOD_CAT1_NM"]); category != "" {
		food.Category = &category
	}
	food.ProteinG = optionalFloat(row, "AMT_NUM3")
	food.FatG = optionalFloat(row, "AMT_NUM4")
	food.CarbsG = optionalFloat(row, "AMT_NUM6")
	food.SugarG = optionalFloat(row, "AMT_NUM7")
	food.FiberG = optionalFloat(row, "AMT_NUM8")
	food.CalciumMg = optionalFloat(row, "AMT_NUM9")
	food.SodiumMg = optionalFloat(row, "AMT_NUM13")
	return food
}

func optionalFloat(row map[string]interface{}, key string) *float64 {
	if _, ok := row[key]; !ok {
		return nil
	}
	v := asFloat(row[key])
	return &v
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asFloat(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
