package handler

import (
	"strconv"

	"invoice-service/internal/apperror"
	"invoice-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Response is the envelope of every API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// Pagination describes a page of a list response
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
}

func success(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// fail writes err with the status of its kind. Internal errors are logged
// and replaced by fallback so store details never reach the caller.
func fail(c echo.Context, err error, fallback string) error {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		logger.FromContext(c).Error(fallback, zap.Error(err))
	}

	return c.JSON(kind.HTTPStatus(), Response{
		Success: false,
		Error:   apperror.Message(err, fallback),
		Code:    kind.String(),
	})
}

func badRequest(c echo.Context, message string) error {
	return fail(c, apperror.Validation("%s", message), message)
}

// pageParams reads page and limit the way every list endpoint does:
// page defaults to 1, limit to 20 and is capped at 100.
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20 // Default limit
	}
	return page, limit
}

// activeParam parses ?active=, ignoring values that are not booleans
func activeParam(c echo.Context) *bool {
	raw := c.QueryParam("active")
	if raw == "" {
		return nil
	}
	active, err := strconv.ParseBool(raw)
	if err != nil {
		logger.FromContext(c).Warn("Invalid active parameter", zap.String("value", raw))
		return nil
	}
	return &active
}

func uintParam(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
