package handler

import (
	"net/http"

	"invoice-service/pkg/config"
	"invoice-service/pkg/database"
	"invoice-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthCheck reports whether the service can reach its database
func HealthCheck(c echo.Context) error {
	status, code := "healthy", http.StatusOK

	if db := database.GetDB(); db == nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		logger.FromContext(c).Warn("Database ping failed", zap.Error(err))
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	return c.JSON(code, echo.Map{
		"status":  status,
		"service": config.ServiceName,
	})
}
