package handler

import (
	"invoice-service/internal/middleware"
	"invoice-service/internal/validation"
	"invoice-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the public endpoints and the authenticated /api group
func RegisterRoutes(e *echo.Echo, jwtUtil *jwtutil.JWTUtil) {
	e.Validator = validation.EchoValidator{}

	// Public routes that don't require authentication
	e.GET("/health", HealthCheck)

	// API routes that require authentication
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwtUtil))

	gstMasters := api.Group("/gstMasters")
	gstMasters.POST("", CreateGSTMaster)
	gstMasters.GET("", ListGSTMasters)
	gstMasters.GET("/:id", GetGSTMaster)
	gstMasters.PATCH("/:id", UpdateGSTMaster)
	gstMasters.DELETE("/:id", DeactivateGSTMaster)

	companyProfiles := api.Group("/companyProfiles")
	companyProfiles.POST("", CreateCompanyProfile)
	companyProfiles.GET("", ListCompanyProfiles)
	companyProfiles.GET("/:id", GetCompanyProfile)
	companyProfiles.PATCH("/:id", UpdateCompanyProfile)
	companyProfiles.DELETE("/:id", DeactivateCompanyProfile)

	invoiceRoutes := api.Group("/invoices")
	invoiceRoutes.POST("", CreateInvoice)
	invoiceRoutes.GET("", ListInvoices)
	invoiceRoutes.GET("/company/:id", ListCompanyInvoices)
	invoiceRoutes.GET("/company/:id/register", ExportSalesRegister)
	invoiceRoutes.GET("/user/:userId", ListUserInvoices)
	invoiceRoutes.GET("/:id", GetInvoice)
	invoiceRoutes.PATCH("/:id", UpdateInvoice)
	invoiceRoutes.DELETE("/:id", DeactivateInvoice)
}
