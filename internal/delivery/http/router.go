package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/diabetesguard/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, predictionSvc *service.PredictionService, dashboardSvc *service.DashboardService, log *zap.Logger) {
	handler := NewHandler(predictionSvc, dashboardSvc, log)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// Pages
	app.Get("/", handler.HomePage)
	app.Get("/predict", handler.PredictPage)
	app.Post("/predict", handler.PredictSubmit)
	app.Get("/analytics", handler.AnalyticsPage)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Post("/predict", handler.Predict)
		api.Post("/recommendations", handler.Recommendations)

		// Dashboard endpoints
		api.Get("/dashboard", handler.GetDashboard)
		api.Get("/dashboard/distribution/:feature", handler.GetDistribution)
		api.Get("/dashboard/correlation", handler.GetCorrelation)
		api.Get("/dashboard/export", handler.ExportDashboard)
		api.Get("/reference", handler.GetReference)

		api.Get("/predictions/recent", handler.GetRecentPredictions)
	}
}
