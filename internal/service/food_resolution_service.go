package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"go-food-scanner/internal/barcode"
	"go-food-scanner/internal/client"
	apperrors "go-food-scanner/internal/errors"
	"go-food-scanner/internal/logger"
	"go-food-scanner/internal/observability"
	"go-food-scanner/internal/repository"
	"go-food-scanner/internal/vision"
	"go-food-scanner/pkg/models"
)

// FoodResolutionService identifies the food in a photograph and resolves it
// to nutrition records
type FoodResolutionService interface {
	ResolveFood(ctx context.Context, imageData []byte) ([]models.Food, error)
}

// foodResolutionService is a two-branch pipeline: a readable barcode routes
// to product lookup with cache-aside nutrition resolution; otherwise vision
// detection maps labels to previously stored records.
type foodResolutionService struct {
	barcodes  barcode.Detector
	vision    vision.Detector
	products  client.ProductLookupClient
	nutrition client.NutritionDataClient
	foods     repository.FoodRepository
	labelMap  map[string]string
}

// NewFoodResolutionService wires the resolution pipeline
func NewFoodResolutionService(
	barcodeDetector barcode.Detector,
	visionDetector vision.Detector,
	productClient client.ProductLookupClient,
	nutritionClient client.NutritionDataClient,
	foodRepository repository.FoodRepository,
	labelMap map[string]string,
) FoodResolutionService {
	return &foodResolutionService{
		barcodes:  barcodeDetector,
		vision:    visionDetector,
		products:  productClient,
		nutrition: nutritionClient,
		foods:     foodRepository,
		labelMap:  labelMap,
	}
}

func (s *foodResolutionService) ResolveFood(ctx context.Context, imageData []byte) ([]models.Food, error) {
	start := time.Now()
	defer func() {
		observability.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	codes, err := s.barcodes.DetectCodes(imageData)
	if err != nil {
		observability.ScansTotal.WithLabelValues("barcode", "error").Inc()
		return nil, apperrors.NewProcessingError("failed to load image", err)
	}

	if len(codes) == 0 {
		return s.resolveByVision(ctx, imageData)
	}

	// Only the first barcode is resolved; additional distinct codes in the
	// same photo are discarded. Multi-barcode resolution needs a product
	// decision first.
	return s.resolveByBarcode(ctx, codes[0])
}

func (s *foodResolutionService) resolveByBarcode(ctx context.Context, code barcode.Code) ([]models.Food, error) {
	entry := logger.WithFields(logrus.Fields{
		"symbology": code.Symbology,
		"barcode":   code.Text,
	})

	product, err := s.products.Lookup(ctx, code.Text)
	if err != nil {
		observability.ScansTotal.WithLabelValues("barcode", "error").Inc()
		return nil, apperrors.NewNetworkError("product lookup failed", err)
	}
	if product == nil {
		entry.Info("Barcode matched no product")
		observability.ScansTotal.WithLabelValues("barcode", "empty").Inc()
		return []models.Food{}, nil
	}

	name := normalizeFoodName(product.Name)

	food, err := s.foods.FindByName(ctx, name)
	switch {
	case err == nil:
		entry.WithField("food_name", name).Debug("Nutrition cache hit")
		observability.CacheLookups.WithLabelValues("hit").Inc()
		observability.ScansTotal.WithLabelValues("barcode", "resolved").Inc()
		return []models.Food{*food}, nil
	case errors.Is(err, repository.ErrFoodNotFound):
		observability.CacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.ScansTotal.WithLabelValues("barcode", "error").Inc()
		return nil, apperrors.NewStorageError("nutrition store lookup failed", err)
	}

	fetched, err := s.nutrition.Fetch(ctx, product.ReportNo)
	if err != nil {
		observability.ScansTotal.WithLabelValues("barcode", "error").Inc()
		return nil, apperrors.NewNetworkError("nutrition data fetch failed", err)
	}
	if fetched == nil {
		entry.WithField("report_no", product.ReportNo).Info("No nutrition data for product")
		observability.ScansTotal.WithLabelValues("barcode", "empty").Inc()
		return []models.Food{}, nil
	}

	// Stamp the record with the normalized name before persisting; the store
	// is keyed by name, not report number
	record := *fetched
	record.FoodName = name
	if err := s.foods.Insert(ctx, &record); err != nil {
		observability.ScansTotal.WithLabelValues("barcode", "error").Inc()
		return nil, apperrors.NewStorageError("nutrition store insert failed", err)
	}

	entry.WithField("food_name", name).Info("Nutrition record fetched and cached")
	observability.ScansTotal.WithLabelValues("barcode", "resolved").Inc()
	return []models.Food{record}, nil
}

func (s *foodResolutionService) resolveByVision(ctx context.Context, imageData []byte) ([]models.Food, error) {
	detections, err := s.vision.Detect(ctx, imageData)
	if err != nil {
		observability.ScansTotal.WithLabelValues("vision", "error").Inc()
		return nil, apperrors.NewNetworkError("vision detection failed", err)
	}

	foods := []models.Food{}
	for _, labelCount := range vision.Aggregate(detections) {
		name, ok := s.labelMap[labelCount.Label]
		if !ok {
			// Unmapped labels are intentionally absent from the table
			logger.WithField("label", labelCount.Label).Debug("Dropping unmapped detection label")
			continue
		}

		food, err := s.foods.FindByName(ctx, name)
		if errors.Is(err, repository.ErrFoodNotFound) {
			// The vision branch only serves previously cached records
			continue
		}
		if err != nil {
			observability.ScansTotal.WithLabelValues("vision", "error").Inc()
			return nil, apperrors.NewStorageError("nutrition store lookup failed", err)
		}
		foods = append(foods, *food)
	}

	outcome := "resolved"
	if len(foods) == 0 {
		outcome = "empty"
	}
	observability.ScansTotal.WithLabelValues("vision", outcome).Inc()
	return foods, nil
}

// normalizeFoodName strips all whitespace; the store keys records by the
// normalized name
func normalizeFoodName(name string) string {
	return strings.Join(strings.Fields(name), "")
}
