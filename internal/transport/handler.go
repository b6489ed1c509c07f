package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"go-food-scanner/internal/config"
	apperrors "go-food-scanner/internal/errors"
	"go-food-scanner/internal/logger"
	"go-food-scanner/internal/service"
	"go-food-scanner/pkg/models"
	"go-food-scanner/pkg/validation"
)

// NewHandler builds the HTTP surface: food detection, health, metrics
func NewHandler(resolver service.FoodResolutionService, validator *validation.ImageUploadValidator, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestID(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/food/detect", detectFood(resolver, validator, cfg))

	return r
}

func detectFood(resolver service.FoodResolutionService, validator *validation.ImageUploadValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, "missing image file", err)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "unreadable image file", err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "unreadable image file", err)
			return
		}

		if err := validator.Validate(data); err != nil {
			validationErr := apperrors.NewValidationError("invalid image upload", err)
			respondError(c, validationErr.StatusCode, "invalid image upload", validationErr)
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"filename":   fileHeader.Filename,
			"size":       len(data),
			"ip":         c.ClientIP(),
		}).Info("Processing food detection request")

		items, err := resolver.ResolveFood(ctx, data)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "food detection failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id":         c.GetString("request_id"),
			"items":              len(items),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Food detection completed")

		c.JSON(http.StatusOK, models.DetectResponse{Items: items})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"request_id":  c.GetString("request_id"),
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
