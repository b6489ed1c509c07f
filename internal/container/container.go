package container

import (
	"fmt"
	"net/http"

	"go-food-scanner/internal/barcode"
	"go-food-scanner/internal/client"
	"go-food-scanner/internal/config"
	"go-food-scanner/internal/repository"
	"go-food-scanner/internal/service"
	"go-food-scanner/internal/transport"
	"go-food-scanner/internal/vision"
	"go-food-scanner/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	foodRepository repository.FoodRepository
	resolver       service.FoodResolutionService
	handler        http.Handler
}

// NewContainer builds the dependency graph from configuration
func NewContainer(cfg *config.Config) (*Container, error) {
	db, err := repository.OpenDatabase(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open nutrition store: %w", err)
	}
	foodRepository := repository.NewFoodRepository(db)

	preprocessor := barcode.NewPreprocessor()
	decoder := barcode.NewDecoder()
	barcodeDetector := barcode.NewDetector(
		preprocessor,
		decoder,
		barcode.DefaultSymbologies(),
		cfg.BarcodeMaxWidth,
		cfg.BarcodeMaxHeight,
	)

	visionDetector := vision.NewHTTPDetector(cfg.VisionEndpoint, cfg.VisionTimeout)
	productClient := client.NewProductLookupClient(cfg.ProductAPIBaseURL, cfg.ProductAPIKey, cfg.RequestTimeout)
	nutritionClient := client.NewNutritionDataClient(cfg.NutritionAPIBaseURL, cfg.NutritionAPIKey, cfg.RequestTimeout)

	resolver := service.NewFoodResolutionService(
		barcodeDetector,
		visionDetector,
		productClient,
		nutritionClient,
		foodRepository,
		vision.LabelMap,
	)

	validator := validation.NewImageUploadValidator(cfg.MaxRequestBodySize)
	handler := transport.NewHandler(resolver, validator, cfg)

	return &Container{
		config:         cfg,
		foodRepository: foodRepository,
		resolver:       resolver,
		handler:        handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
