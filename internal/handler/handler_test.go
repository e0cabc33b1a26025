package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoice-service/internal/dbtest"
	"invoice-service/internal/model"
	"invoice-service/pkg/config"
	"invoice-service/pkg/database"
	"invoice-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type api struct {
	t     *testing.T
	e     *echo.Echo
	token string
}

func newAPI(t *testing.T) (*api, *gorm.DB) {
	t.Helper()

	db := dbtest.Open(t)
	database.SetDB(db)
	t.Cleanup(func() { database.SetDB(nil) })
	InitServices(db, func() time.Time { return time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC) })

	util := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "handler-test", ExpirationHours: 1})
	token, err := util.GenerateToken("clerk@example.com", 3, "", "staff")
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, util)
	return &api{t: t, e: e, token: token}, db
}

func (a *api) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if a.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) Response {
	t.Helper()

	var envelope struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	if data != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Response
}

func TestHealthCheck(t *testing.T) {
	a, _ := newAPI(t)
	a.token = ""

	rec := a.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestAPIRequiresToken(t *testing.T) {
	a, _ := newAPI(t)
	a.token = ""

	rec := a.do(http.MethodGet, "/api/invoices", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGSTMasterLifecycle(t *testing.T) {
	a, _ := newAPI(t)

	rec := a.do(http.MethodPost, "/api/gstMasters", `{"gstRate": 18}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var master model.GSTMaster
	resp := decode(t, rec, &master)
	assert.True(t, resp.Success)
	assert.True(t, master.SGSTRate.Equal(decimal.NewFromInt(9)))
	assert.True(t, master.CGSTRate.Equal(decimal.NewFromInt(9)))
	assert.True(t, master.IGSTRate.Equal(decimal.NewFromInt(18)))
	assert.True(t, master.IsActive)

	rec = a.do(http.MethodPost, "/api/gstMasters", `{"gstRate": 18}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This GST rate already exists.", decode(t, rec, nil).Error)

	rec = a.do(http.MethodPost, "/api/gstMasters", `{"gstRate": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "gstRate must be greater than 0.", decode(t, rec, nil).Error)

	rec = a.do(http.MethodPost, "/api/gstMasters", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/gstMasters", `{"gstRate": 5, "igstRate": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "igstRate cannot be negative.", decode(t, rec, nil).Error)

	path := fmt.Sprintf("/api/gstMasters/%d", master.ID)
	rec = a.do(http.MethodPatch, path, `{"gstRate": 12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &master)
	assert.True(t, master.SGSTRate.Equal(decimal.NewFromInt(6)))
	assert.True(t, master.IGSTRate.Equal(decimal.NewFromInt(12)))

	rec = a.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/api/gstMasters?active=false", "")
	var masters []model.GSTMaster
	decode(t, rec, &masters)
	require.Len(t, masters, 1)
	assert.False(t, masters[0].IsActive)

	rec = a.do(http.MethodGet, "/api/gstMasters/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanyProfileEndpoints(t *testing.T) {
	a, db := newAPI(t)
	dbtest.GSTMaster(t, db, 18)

	body := `{
		"companyName": "Suresh Enterprise",
		"companyAddress": "Ring Road",
		"companyAccountNumber": "123456789012",
		"accountHolderName": "Suresh Patel",
		"ifscCode": "SBIN0001234",
		"branchName": "Ring Road",
		"city": "Surat",
		"state": "Gujarat",
		"country": "India"
	}`
	rec := a.do(http.MethodPost, "/api/companyProfiles", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var profile model.CompanyProfile
	decode(t, rec, &profile)
	assert.Equal(t, "0001", profile.ID)

	rec = a.do(http.MethodPost, "/api/companyProfiles", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPatch, "/api/companyProfiles/0001", `{"city": "Vadodara"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &profile)
	assert.Equal(t, "Vadodara", profile.City)

	rec = a.do(http.MethodDelete, "/api/companyProfiles/0001", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/api/companyProfiles/0001", "")
	decode(t, rec, &profile)
	assert.False(t, profile.IsActive)

	rec = a.do(http.MethodGet, "/api/companyProfiles/0009", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceEndpoints(t *testing.T) {
	a, db := newAPI(t)
	master := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", master.ID)
	customer := dbtest.Customer(t, db, "0001")
	product := dbtest.Product(t, db, "0001")

	body := fmt.Sprintf(`{
		"customerId": %d,
		"companyProfileId": "0001",
		"billDate": "2025-05-01",
		"items": [{"productId": %d, "uom": "pcs", "rate": 100, "quantity": 2}]
	}`, customer.ID, product.ID)
	rec := a.do(http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var inv model.Invoice
	resp := decode(t, rec, &inv)
	assert.Equal(t, "Invoice created successfully.", resp.Message)
	assert.Equal(t, "000001", inv.InvoiceNumber)
	assert.Equal(t, "1", inv.BillNumber)
	assert.Equal(t, "2526", inv.BillYear)
	assert.Equal(t, uint(3), inv.UserID)
	assert.Equal(t, int8(0), inv.GST)
	assert.True(t, inv.BillValue.Equal(decimal.NewFromInt(200)))
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].Amount.Equal(decimal.NewFromInt(200)))

	path := fmt.Sprintf("/api/invoices/%d", inv.ID)
	rec = a.do(http.MethodPatch, path, `{"billDate": "2025-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &inv)
	assert.Equal(t, "2425", inv.BillYear)
	assert.Equal(t, "000001", inv.InvoiceNumber)

	rec = a.do(http.MethodPatch, path, `{"invoiceNumber": "000002"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/invoices", strings.Replace(body, `"uom": "pcs"`, `"uom": "dozen"`, 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, fmt.Sprintf("Invalid UOM for product %d", product.ID), decode(t, rec, nil).Error)

	rec = a.do(http.MethodGet, "/api/invoices/company/0001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Invoices   []model.Invoice `json:"invoices"`
		Pagination Pagination      `json:"pagination"`
	}
	decode(t, rec, &page)
	assert.Len(t, page.Invoices, 1)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, 20, page.Pagination.Limit)

	rec = a.do(http.MethodGet, "/api/invoices/company/0042", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Company not found.", decode(t, rec, nil).Error)

	rec = a.do(http.MethodGet, "/api/invoices/user/3", "")
	decode(t, rec, &page)
	assert.Len(t, page.Invoices, 1)

	rec = a.do(http.MethodGet, "/api/invoices/company/0001/register?year=2425", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "gst-register-0001-2425.xlsx")

	rec = a.do(http.MethodGet, "/api/invoices/company/0001/register?year=24-25", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, path, "")
	decode(t, rec, &inv)
	assert.False(t, inv.IsActive)

	rec = a.do(http.MethodGet, "/api/invoices/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceCapacityResponse(t *testing.T) {
	a, db := newAPI(t)
	master := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", master.ID)
	customer := dbtest.Customer(t, db, "0001")
	product := dbtest.Product(t, db, "0001")
	dbtest.Invoice(t, db, customer, "999999", "1", "2526", 0)

	rec := a.do(http.MethodPost, "/api/invoices", fmt.Sprintf(`{
		"customerId": %d,
		"companyProfileId": "0001",
		"billDate": "2025-05-01",
		"items": [{"productId": %d, "uom": "pcs", "rate": 100}]
	}`, customer.ID, product.ID))
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode(t, rec, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "capacity_exceeded", resp.Code)
	assert.Equal(t, "Invoice number limit reached (999999).", resp.Error)
}
