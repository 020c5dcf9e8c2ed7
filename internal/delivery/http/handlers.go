package http

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/diabetesguard/backend/internal/dataset"
	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/recommend"
	"github.com/diabetesguard/backend/internal/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	predictionSvc *service.PredictionService
	dashboardSvc  *service.DashboardService
	validate      *validator.Validate
	pages         *pageSet
	log           *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(predictionSvc *service.PredictionService, dashboardSvc *service.DashboardService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		predictionSvc: predictionSvc,
		dashboardSvc:  dashboardSvc,
		validate:      validator.New(),
		pages:         mustParsePages(),
		log:           log,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	repo := "ok"
	if err := h.predictionSvc.RepositoryHealth(ctx); err != nil {
		status, repo = "degraded", err.Error()
	}
	model := h.predictionSvc.ModelStatus()
	if !model.Loaded {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":     status,
		"service":    "diabetesguard-backend",
		"version":    Version,
		"model":      model,
		"repository": repo,
	})
}

// decodeRequest parses and validates a JSON prediction request
func (h *Handler) decodeRequest(c *fiber.Ctx) (domain.PredictionRequest, error) {
	var req domain.PredictionRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

// Predict scores a health profile
func (h *Handler) Predict(c *fiber.Ctx) error {
	req, err := h.decodeRequest(c)
	if err != nil {
		return err
	}

	resp, err := h.predictionSvc.Predict(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    resp,
	})
}

// Recommendations returns advice for a profile without scoring it
func (h *Handler) Recommendations(c *fiber.Ctx) error {
	req, err := h.decodeRequest(c)
	if err != nil {
		return err
	}

	recs := h.predictionSvc.Recommendations(req)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"recommendations": recs,
			"texts":           recommend.Texts(recs),
		},
	})
}

// GetDashboard returns dataset summary, correlations and reference data
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardSvc.GetDashboardData(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetDistribution returns a histogram for one numeric feature
func (h *Handler) GetDistribution(c *fiber.Ctx) error {
	bins := c.QueryInt("bins", dataset.DefaultBins)
	if bins < 1 || bins > dataset.MaxBins {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("bins must be between 1 and %d", dataset.MaxBins))
	}

	hist, err := h.dashboardSvc.GetDistribution(c.Context(), c.Params("feature"), bins)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    hist,
	})
}

// GetCorrelation returns the Pearson correlation matrix
func (h *Handler) GetCorrelation(c *fiber.Ctx) error {
	corr, err := h.dashboardSvc.GetCorrelation(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    corr,
	})
}

// ExportDashboard downloads the statistics as an Excel workbook
func (h *Handler) ExportDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardSvc.Export(c.Context())
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="diabetes_dashboard.xlsx"`)
	return c.Send(data)
}

// GetReference returns feature descriptions, normal ranges and risk factors
func (h *Handler) GetReference(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.dashboardSvc.GetReference(),
	})
}

// GetRecentPredictions returns the newest prediction logs
func (h *Handler) GetRecentPredictions(c *fiber.Ctx) error {
	logs, err := h.predictionSvc.Recent(c.Context(), c.QueryInt("limit", service.DefaultRecentLimit))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}
