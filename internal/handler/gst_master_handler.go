package handler

import (
	"errors"
	"net/http"
	"time"

	"invoice-service/internal/apperror"
	"invoice-service/internal/model"
	"invoice-service/pkg/database"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GSTMasterRequest is the body of GST master create and update requests.
// Missing sub-rates are derived from gstRate: half each for SGST and CGST,
// the full rate for IGST.
type GSTMasterRequest struct {
	GSTRate  *decimal.Decimal `json:"gstRate" validate:"omitempty,gt=0" label:"gstRate"`
	SGSTRate *decimal.Decimal `json:"sgstRate" validate:"omitempty,gte=0" label:"sgstRate"`
	CGSTRate *decimal.Decimal `json:"cgstRate" validate:"omitempty,gte=0" label:"cgstRate"`
	IGSTRate *decimal.Decimal `json:"igstRate" validate:"omitempty,gte=0" label:"igstRate"`
	IsActive *bool            `json:"isActive"`
}

var two = decimal.NewFromInt(2)

const rateTakenMessage = "This GST rate already exists."

func (r *GSTMasterRequest) applyTo(m *model.GSTMaster) {
	if r.GSTRate != nil {
		m.GSTRate = r.GSTRate.Round(2)
		m.SGSTRate = m.GSTRate.Div(two).Round(2)
		m.CGSTRate = m.GSTRate.Div(two).Round(2)
		m.IGSTRate = m.GSTRate
	}
	if r.SGSTRate != nil {
		m.SGSTRate = r.SGSTRate.Round(2)
	}
	if r.CGSTRate != nil {
		m.CGSTRate = r.CGSTRate.Round(2)
	}
	if r.IGSTRate != nil {
		m.IGSTRate = r.IGSTRate.Round(2)
	}
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
}

func gstRateTaken(db *gorm.DB, rate decimal.Decimal, exceptID uint) (bool, error) {
	var count int64
	query := db.Model(&model.GSTMaster{}).Where("gst_rate = ?", rate)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// CreateGSTMaster creates a GST slab
func CreateGSTMaster(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordGSTMasterOperation("create")

	var req GSTMasterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}
	if req.GSTRate == nil {
		return badRequest(c, "gstRate is required and must be a valid number.")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err, "Invalid request data")
	}

	master := model.GSTMaster{IsActive: true}
	req.applyTo(&master)

	db := database.GetDB().WithContext(c.Request().Context())
	taken, err := gstRateTaken(db, master.GSTRate, 0)
	if err != nil {
		return fail(c, err, "Failed to create GST Master")
	}
	if taken {
		log.Warn("GST rate already exists", zap.String("gst_rate", master.GSTRate.String()))
		return fail(c, apperror.Conflict(rateTakenMessage), "")
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&master).Error; err != nil {
		// a concurrent create of the same rate loses on the unique index
		return fail(c, apperror.Duplicate(err, rateTakenMessage), "Failed to create GST Master")
	}

	log.Info("GST Master created successfully",
		zap.Uint("id", master.ID),
		zap.String("gst_rate", master.GSTRate.String()))
	return success(c, http.StatusCreated, "GST Master created successfully.", master)
}

// ListGSTMasters lists GST slabs ordered by rate
func ListGSTMasters(c echo.Context) error {
	prometheus.RecordGSTMasterOperation("list")
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().WithContext(c.Request().Context())
	if active := activeParam(c); active != nil {
		query = query.Where("is_active = ?", *active)
	}

	var masters []model.GSTMaster
	if err := query.Order("gst_rate").Find(&masters).Error; err != nil {
		return fail(c, err, "Failed to retrieve GST Masters")
	}
	return success(c, http.StatusOK, "", masters)
}

func findGSTMaster(c echo.Context) (*model.GSTMaster, error) {
	id, ok := uintParam(c, "id")
	if !ok {
		return nil, apperror.Validation("Invalid GST Master ID")
	}

	var master model.GSTMaster
	err := database.GetDB().WithContext(c.Request().Context()).First(&master, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("GST Master not found.")
	}
	if err != nil {
		return nil, err
	}
	return &master, nil
}

// GetGSTMaster returns one GST slab
func GetGSTMaster(c echo.Context) error {
	prometheus.RecordGSTMasterOperation("get")

	master, err := findGSTMaster(c)
	if err != nil {
		return fail(c, err, "Failed to retrieve GST Master")
	}
	return success(c, http.StatusOK, "", master)
}

// UpdateGSTMaster changes a slab. A new gstRate re-derives the sub-rates
// unless they are given too.
func UpdateGSTMaster(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordGSTMasterOperation("update")

	master, err := findGSTMaster(c)
	if err != nil {
		return fail(c, err, "Failed to update GST Master")
	}

	var req GSTMasterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err, "Invalid request data")
	}
	req.applyTo(master)

	db := database.GetDB().WithContext(c.Request().Context())
	if req.GSTRate != nil {
		taken, err := gstRateTaken(db, master.GSTRate, master.ID)
		if err != nil {
			return fail(c, err, "Failed to update GST Master")
		}
		if taken {
			return fail(c, apperror.Conflict(rateTakenMessage), "")
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(master).Error; err != nil {
		return fail(c, apperror.Duplicate(err, rateTakenMessage), "Failed to update GST Master")
	}

	log.Info("GST Master updated successfully", zap.Uint("id", master.ID))
	return success(c, http.StatusOK, "GST Master updated successfully.", master)
}

// DeactivateGSTMaster marks a slab inactive. Companies using it keep it.
func DeactivateGSTMaster(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordGSTMasterOperation("deactivate")

	master, err := findGSTMaster(c)
	if err != nil {
		return fail(c, err, "Failed to deactivate GST Master")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	err = database.GetDB().WithContext(c.Request().Context()).
		Model(master).Update("is_active", false).Error
	if err != nil {
		return fail(c, err, "Failed to deactivate GST Master")
	}

	log.Info("GST Master deactivated", zap.Uint("id", master.ID))
	return success(c, http.StatusOK, "GST Master deactivated successfully.", nil)
}
