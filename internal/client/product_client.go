package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"go-food-scanner/internal/logger"
)

// ProductInfo is the resolved identity of a packaged product: its display
// name and the report number used to key nutrition-data lookups
type ProductInfo struct {
	Name     string
	ReportNo string
}

// ProductLookupClient resolves a barcode payload to product information.
// A nil ProductInfo with a nil error means the barcode matched no product,
// which is normal control flow.
type ProductLookupClient interface {
	Lookup(ctx context.Context, barcode string) (*ProductInfo, error)
}

// foodSafetyProductClient queries the food-safety open-data barcode service
// (service C005). Responses are cached briefly since barcode-to-product
// bindings change rarely.
type foodSafetyProductClient struct {
	api   *apiClient
	keyID string
	cache *gocache.Cache
}

// NewProductLookupClient creates a product-lookup client for the given API
// base URL and key
func NewProductLookupClient(baseURL, keyID string, timeout time.Duration) ProductLookupClient {
	return &foodSafetyProductClient{
		api:   newAPIClient(baseURL, nil, timeout),
		keyID: keyID,
		cache: gocache.New(1*time.Hour, 10*time.Minute),
	}
}

type productResponse struct {
	C005 struct {
		TotalCount string `json:"total_count"`
		Row        []struct {
			ProductName     string `json:"PRDLST_NM"`
			ProductReportNo string `json:"PRDLST_REPORT_NO"`
			Barcode         string `json:"BAR_CD"`
		} `json:"row"`
		Result struct {
			Code    string `json:"CODE"`
			Message string `json:"MSG"`
		} `json:"RESULT"`
	} `json:"C005"`
}

func (c *foodSafetyProductClient) Lookup(ctx context.Context, barcode string) (*ProductInfo, error) {
	if cached, ok := c.cache.Get(barcode); ok {
		return cached.(*ProductInfo), nil
	}

	path := fmt.Sprintf("/%s/C005/json/1/5/BAR_CD=%s", url.PathEscape(c.keyID), url.PathEscape(barcode))

	var payload productResponse
	if err := c.api.getJSON(ctx, path, nil, &payload); err != nil {
		// The collaborator is best-effort: an unreachable product service
		// degrades to "no match" rather than failing the scan
		logger.WithError(err).WithField("barcode", barcode).Warn("Product lookup request failed")
		return nil, nil
	}

	if len(payload.C005.Row) == 0 {
		logger.WithFields(logrus.Fields{
			"barcode": barcode,
			"code":    payload.C005.Result.Code,
		}).Debug("No product found for barcode")
		return nil, nil
	}

	row := payload.C005.Row[0]
	if row.ProductName == "" || row.ProductReportNo == "" {
		return nil, nil
	}

	info := &ProductInfo{Name: row.ProductName, ReportNo: row.ProductReportNo}
	c.cache.Set(barcode, info, gocache.DefaultExpiration)
	return info, nil
}
