package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"

	"invoice-service/internal/fiscal"
	"invoice-service/internal/invoice"
	"invoice-service/internal/report"
	"invoice-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var financialYearPattern = regexp.MustCompile(`^\d{4}$`)

// CreateInvoice numbers and stores a new invoice for the calling user
func CreateInvoice(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, Response{Error: "authentication required"})
	}

	var req invoice.CreateInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}

	inv, err := invoices.Create(c.Request().Context(), userID, req)
	if err != nil {
		return fail(c, err, "Failed to create invoice")
	}
	return success(c, http.StatusCreated, "Invoice created successfully.", inv)
}

func listInvoices(c echo.Context, filter invoice.Filter) error {
	filter.Page, filter.Limit = pageParams(c)
	filter.Active = activeParam(c)

	list, total, err := invoices.List(c.Request().Context(), filter)
	if err != nil {
		return fail(c, err, "Failed to retrieve invoices")
	}

	logger.FromContext(c).Info("Invoices retrieved successfully",
		zap.Int("count", len(list)),
		zap.Int64("total", total),
		zap.String("company_id", filter.CompanyID),
		zap.Uint("user_id", filter.UserID))

	return success(c, http.StatusOK, "", echo.Map{
		"invoices": list,
		"pagination": Pagination{
			CurrentPage: filter.Page,
			Limit:       filter.Limit,
			Total:       total,
			TotalPages:  (int(total) + filter.Limit - 1) / filter.Limit,
		},
	})
}

// ListInvoices lists every invoice
func ListInvoices(c echo.Context) error {
	return listInvoices(c, invoice.Filter{})
}

// ListCompanyInvoices lists the invoices of one company
func ListCompanyInvoices(c echo.Context) error {
	return listInvoices(c, invoice.Filter{CompanyID: c.Param("id")})
}

// ListUserInvoices lists the invoices created by one user
func ListUserInvoices(c echo.Context) error {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	return listInvoices(c, invoice.Filter{UserID: userID})
}

// GetInvoice returns one invoice with its customer, company and lines
func GetInvoice(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid invoice ID")
	}

	inv, err := invoices.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "Failed to retrieve invoice")
	}
	return success(c, http.StatusOK, "", inv)
}

// UpdateInvoice applies a partial update
func UpdateInvoice(c echo.Context) error {
	log := logger.FromContext(c)

	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid invoice ID")
	}

	var req invoice.UpdateInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("id", id), zap.Error(err))
		return badRequest(c, "Invalid request data")
	}

	inv, err := invoices.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err, "Failed to update invoice")
	}
	return success(c, http.StatusOK, "Invoice updated successfully.", inv)
}

// DeactivateInvoice soft deletes an invoice
func DeactivateInvoice(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid invoice ID")
	}

	if err := invoices.Deactivate(c.Request().Context(), id); err != nil {
		return fail(c, err, "Failed to deactivate invoice")
	}
	return success(c, http.StatusOK, "Invoice deactivated successfully.", nil)
}

// ExportSalesRegister streams the GST sales register of a company for
// ?year=YYXX, defaulting to the current financial year.
func ExportSalesRegister(c echo.Context) error {
	log := logger.FromContext(c)
	companyID := c.Param("id")

	year := c.QueryParam("year")
	if year == "" {
		year = fiscal.YearOf(timeNow())
	}
	if !financialYearPattern.MatchString(year) {
		return badRequest(c, "Invalid financial year.")
	}

	profile, list, err := invoices.ForYear(c.Request().Context(), companyID, year)
	if err != nil {
		return fail(c, err, "Failed to export sales register")
	}

	var buf bytes.Buffer
	if err := report.WriteSalesRegister(&buf, profile, year, list); err != nil {
		return fail(c, err, "Failed to export sales register")
	}

	log.Info("Sales register exported",
		zap.String("company_id", companyID),
		zap.String("year", year),
		zap.Int("invoices", len(list)))

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", report.Filename(companyID, year)))
	return c.Blob(http.StatusOK, report.ContentType, buf.Bytes())
}
