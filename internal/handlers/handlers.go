package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tourscan/internal/models"
	"tourscan/internal/services"
)

// Scanner runs website scans.
type Scanner interface {
	ScanWebsite(ctx context.Context, req services.ScanRequest) (*models.ScanResult, error)
}

// Discoverer ranks stored tours against traveler criteria.
type Discoverer interface {
	DiscoverTours(ctx context.Context, criteria models.DiscoveryCriteria) []models.Tour
}

// Importer loads legacy editorial content into the discovery fallback pool.
type Importer interface {
	ImportLegacyContent(ctx context.Context, items []models.LegacyItem) (*services.ImportSummary, error)
}

// TourLister reads back recently scanned tours.
type TourLister interface {
	ListRecent(ctx context.Context, tenantID string, limit int) ([]models.Tour, error)
	Ping(ctx context.Context) error
}

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Fields  interface{} `json:"fields,omitempty"`
}

type Handler struct {
	scanner    Scanner
	discoverer Discoverer
	importer   Importer
	tours      TourLister
	logger     *zap.Logger
}

func NewHandler(scanner Scanner, discoverer Discoverer, importer Importer, tours TourLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		scanner:    scanner,
		discoverer: discoverer,
		importer:   importer,
		tours:      tours,
		logger:     logger,
	}
}

// Register wires all routes onto the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/api/scan", h.ScanWebsite)
	e.POST("/api/discover", h.DiscoverTours)
	e.POST("/api/legacy-content", h.ImportLegacyContent)
	e.GET("/api/tours", h.ListTours)
	e.GET("/api/health", h.Health)
}

// ScanWebsite handles POST /api/scan. The request is validated before any
// network or database work; after that the scan always answers 200 with
// whatever was collected, even zero tours.
func (h *Handler) ScanWebsite(c echo.Context) error {
	var req services.ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid JSON body",
		})
	}

	if err := validateScanRequest(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Scan request is invalid",
			Fields:  err,
		})
	}

	result, err := h.scanner.ScanWebsite(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("scan failed", zap.String("website", req.WebsiteURL), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "scan_failed",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}

func validateScanRequest(req services.ScanRequest) error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.WebsiteURL, validation.Required, is.URL),
		validation.Field(&req.ScanDepth, validation.Min(0), validation.Max(services.MaxScanDepth)),
	)
}

// DiscoverTours handles POST /api/discover. Discovery fails soft: internal
// errors surface as an empty list, never a 5xx.
func (h *Handler) DiscoverTours(c echo.Context) error {
	var criteria models.DiscoveryCriteria
	if err := c.Bind(&criteria); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid JSON body",
		})
	}

	if err := validateCriteria(criteria); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Discovery criteria are invalid",
			Fields:  err,
		})
	}

	tours := h.discoverer.DiscoverTours(c.Request().Context(), criteria)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tours": tours,
		"total": len(tours),
	})
}

func validateCriteria(criteria models.DiscoveryCriteria) error {
	return validation.ValidateStruct(&criteria,
		validation.Field(&criteria.Destination, validation.Required, validation.Length(1, 200)),
		validation.Field(&criteria.Duration, validation.Min(0)),
		validation.Field(&criteria.Travelers, validation.Min(0)),
		validation.Field(&criteria.Budget, validation.Min(0.0)),
	)
}

// ImportLegacyContent handles POST /api/legacy-content. The body is a JSON
// array of legacy items; titleless rows are skipped, not rejected.
func (h *Handler) ImportLegacyContent(c echo.Context) error {
	var items []models.LegacyItem
	if err := c.Bind(&items); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid JSON body",
		})
	}

	summary, err := h.importer.ImportLegacyContent(c.Request().Context(), items)
	if err != nil {
		if errors.Is(err, services.ErrImportTooLarge) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
		}
		h.logger.Error("legacy import failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "import_failed",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, summary)
}

// ListTours handles GET /api/tours.
func (h *Handler) ListTours(c echo.Context) error {
	tenantID := c.QueryParam("tenantId")
	if tenantID == "" {
		tenantID = services.DefaultTenant
	}
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "bad_request",
				Message: "limit must be an integer between 1 and 200",
			})
		}
		limit = parsed
	}

	tours, err := h.tours.ListRecent(c.Request().Context(), tenantID, limit)
	if err != nil {
		h.logger.Error("listing tours failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list tours",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tours": tours,
		"total": len(tours),
	})
}

// Health handles GET /api/health with a bounded dependency ping.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	dbStatus := "ok"
	if err := h.tours.Ping(ctx); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]string{
		"status":   http.StatusText(status),
		"database": dbStatus,
	})
}
