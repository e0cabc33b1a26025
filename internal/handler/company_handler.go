package handler

import (
	"net/http"

	"invoice-service/internal/company"
	"invoice-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateCompanyProfile creates a profile under the next company ID
func CreateCompanyProfile(c echo.Context) error {
	log := logger.FromContext(c)

	var req company.CreateInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}

	profile, err := companies.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Failed to create company profile")
	}
	return success(c, http.StatusCreated, "Company Profile created successfully.", profile)
}

// ListCompanyProfiles lists profiles, filtered by ?active= when given
func ListCompanyProfiles(c echo.Context) error {
	profiles, err := companies.List(c.Request().Context(), activeParam(c))
	if err != nil {
		return fail(c, err, "Failed to retrieve company profiles")
	}
	return success(c, http.StatusOK, "", profiles)
}

// GetCompanyProfile returns one profile
func GetCompanyProfile(c echo.Context) error {
	profile, err := companies.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err, "Failed to retrieve company profile")
	}
	return success(c, http.StatusOK, "", profile)
}

// UpdateCompanyProfile applies a partial update
func UpdateCompanyProfile(c echo.Context) error {
	log := logger.FromContext(c)

	var req company.UpdateInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}

	profile, err := companies.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fail(c, err, "Failed to update company profile")
	}
	return success(c, http.StatusOK, "Company profile updated successfully.", profile)
}

// DeactivateCompanyProfile marks a profile inactive
func DeactivateCompanyProfile(c echo.Context) error {
	if err := companies.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err, "Failed to deactivate company profile")
	}
	return success(c, http.StatusOK, "Company profile deactivated successfully.", nil)
}
