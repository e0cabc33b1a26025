// Package company manages company profiles. Each profile gets the next
// 4 character company ID when it is created.
package company

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoice-service/internal/apperror"
	"invoice-service/internal/model"
	"invoice-service/internal/sequence"
	"invoice-service/internal/validation"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultGSTRate is the slab assigned when a profile names none
var DefaultGSTRate = decimal.NewFromInt(18)

// duplicateMessage is reported when a unique index rejects a profile that
// passed checkUnique
const duplicateMessage = "Company name, GST number or account number already exists."

// CreateInput is the body of a company profile creation request
type CreateInput struct {
	CompanyName          string  `json:"companyName" validate:"required,name" label:"Company Name"`
	CompanyAddress       string  `json:"companyAddress" validate:"required" label:"Company address"`
	CompanyGSTNumber     *string `json:"companyGstNumber" validate:"omitempty,gstin" label:"Company GST number"`
	CompanyAccountNumber string  `json:"companyAccountNumber" validate:"required,accountno" label:"Company account number"`
	AccountHolderName    string  `json:"accountHolderName" validate:"required,name" label:"Account holder name"`
	IFSCCode             string  `json:"ifscCode" validate:"required,ifsc" label:"IFSC code"`
	BranchName           string  `json:"branchName" validate:"required" label:"Branch Name"`
	City                 string  `json:"city" validate:"required" label:"City"`
	State                string  `json:"state" validate:"required" label:"State"`
	Country              string  `json:"country" validate:"required" label:"Country"`
	GSTMasterID          *uint   `json:"gstMasterId"`
}

// UpdateInput changes the non-nil fields of a profile
type UpdateInput struct {
	CompanyName          *string `json:"companyName" validate:"omitempty,name" label:"Company Name"`
	CompanyAddress       *string `json:"companyAddress" validate:"omitempty,min=1" label:"Company address"`
	CompanyGSTNumber     *string `json:"companyGstNumber" validate:"omitempty,gstin" label:"Company GST number"`
	CompanyAccountNumber *string `json:"companyAccountNumber" validate:"omitempty,accountno" label:"Company account number"`
	AccountHolderName    *string `json:"accountHolderName" validate:"omitempty,name" label:"Account holder name"`
	IFSCCode             *string `json:"ifscCode" validate:"omitempty,ifsc" label:"IFSC code"`
	BranchName           *string `json:"branchName"`
	City                 *string `json:"city"`
	State                *string `json:"state"`
	Country              *string `json:"country"`
	GSTMasterID          *uint   `json:"gstMasterId"`
	IsActive             *bool   `json:"isActive"`
}

// Service manages company profiles
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create stores a new profile under the next company ID
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.CompanyProfile, error) {
	log := logger.FromCtx(ctx)
	prometheus.RecordCompanyOperation("create")

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	gstNumber := normalizeGSTIN(in.CompanyGSTNumber)

	profile := model.CompanyProfile{
		CompanyName:          strings.TrimSpace(in.CompanyName),
		CompanyAddress:       strings.TrimSpace(in.CompanyAddress),
		CompanyGSTNumber:     gstNumber,
		CompanyAccountNumber: in.CompanyAccountNumber,
		AccountHolderName:    strings.TrimSpace(in.AccountHolderName),
		IFSCCode:             in.IFSCCode,
		BranchName:           strings.TrimSpace(in.BranchName),
		City:                 strings.TrimSpace(in.City),
		State:                strings.TrimSpace(in.State),
		Country:              strings.TrimSpace(in.Country),
		IsActive:             true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the company ID lock serializes creates, so the uniqueness
		// check below sees every profile committed before this one
		id, err := sequence.NextCompanyID(ctx, tx)
		if err != nil {
			return err
		}
		profile.ID = id

		if err := checkUnique(tx, "", profile.CompanyName, gstNumber, profile.CompanyAccountNumber); err != nil {
			return err
		}

		gstMasterID, err := resolveGSTMaster(tx, in.GSTMasterID)
		if err != nil {
			return err
		}
		profile.GSTMasterID = gstMasterID

		defer prometheus.TrackDBOperation("insert")(time.Now())
		if err := tx.Omit(clause.Associations).Create(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Duplicate(err, duplicateMessage)
			}
			return fmt.Errorf("insert company profile: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Warn("Failed to create company profile",
			zap.String("company_name", in.CompanyName),
			zap.Error(err))
		return nil, err
	}

	log.Info("Company profile created successfully",
		zap.String("company_id", profile.ID),
		zap.String("company_name", profile.CompanyName),
		zap.Uint("gst_master_id", profile.GSTMasterID))
	return s.Get(ctx, profile.ID)
}

// Get returns a profile with its GST master
func (s *Service) Get(ctx context.Context, id string) (*model.CompanyProfile, error) {
	prometheus.RecordCompanyOperation("get")
	defer prometheus.TrackDBOperation("query")(time.Now())

	var profile model.CompanyProfile
	err := s.db.WithContext(ctx).Preload("GSTMaster").First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Company profile not found.")
		}
		return nil, fmt.Errorf("get company profile %s: %w", id, err)
	}
	return &profile, nil
}

// List returns profiles ordered by ID, optionally only active or inactive ones
func (s *Service) List(ctx context.Context, active *bool) ([]model.CompanyProfile, error) {
	prometheus.RecordCompanyOperation("list")
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := s.db.WithContext(ctx).Preload("GSTMaster")
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}

	var profiles []model.CompanyProfile
	if err := query.Order("id").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list company profiles: %w", err)
	}
	return profiles, nil
}

// Update applies the non-nil fields of in. The company ID never changes.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.CompanyProfile, error) {
	log := logger.FromCtx(ctx)
	prometheus.RecordCompanyOperation("update")

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile model.CompanyProfile
		if err := tx.First(&profile, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Company profile not found.")
			}
			return fmt.Errorf("load company profile %s: %w", id, err)
		}

		var name, account string
		var gstNumber *string
		if in.CompanyName != nil {
			profile.CompanyName = strings.TrimSpace(*in.CompanyName)
			name = profile.CompanyName
		}
		if in.CompanyGSTNumber != nil {
			profile.CompanyGSTNumber = normalizeGSTIN(in.CompanyGSTNumber)
			gstNumber = profile.CompanyGSTNumber
		}
		if in.CompanyAccountNumber != nil {
			profile.CompanyAccountNumber = *in.CompanyAccountNumber
			account = profile.CompanyAccountNumber
		}
		if err := checkUnique(tx, id, name, gstNumber, account); err != nil {
			return err
		}

		if in.GSTMasterID != nil {
			if _, err := resolveGSTMaster(tx, in.GSTMasterID); err != nil {
				return err
			}
			profile.GSTMasterID = *in.GSTMasterID
		}

		setString(&profile.CompanyAddress, in.CompanyAddress)
		setString(&profile.AccountHolderName, in.AccountHolderName)
		setString(&profile.IFSCCode, in.IFSCCode)
		setString(&profile.BranchName, in.BranchName)
		setString(&profile.City, in.City)
		setString(&profile.State, in.State)
		setString(&profile.Country, in.Country)
		if in.IsActive != nil {
			profile.IsActive = *in.IsActive
		}

		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := tx.Omit(clause.Associations).Save(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Duplicate(err, duplicateMessage)
			}
			return fmt.Errorf("save company profile: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Warn("Failed to update company profile", zap.String("company_id", id), zap.Error(err))
		return nil, err
	}

	log.Info("Company profile updated successfully", zap.String("company_id", id))
	return s.Get(ctx, id)
}

// Deactivate marks a profile inactive. Profiles are never removed so their
// ID is never handed out again and their invoices keep their company.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx)
	prometheus.RecordCompanyOperation("deactivate")

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.CompanyProfile{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("find company profile %s: %w", id, err)
	}
	if count == 0 {
		return apperror.NotFound("Company profile not found.")
	}

	if err := db.Model(&model.CompanyProfile{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		log.Error("Failed to deactivate company profile", zap.String("company_id", id), zap.Error(err))
		return fmt.Errorf("deactivate company profile %s: %w", id, err)
	}

	log.Info("Company profile deactivated", zap.String("company_id", id))
	return nil
}

// checkUnique rejects a name, GST number or account number already used by
// another profile. Empty values are not checked.
func checkUnique(tx *gorm.DB, selfID, name string, gstNumber *string, account string) error {
	checks := []struct {
		column  string
		value   interface{}
		skip    bool
		message string
	}{
		{"company_name", name, name == "", "Company name already exists."},
		{"company_gst_number", gstNumber, gstNumber == nil, "Company GST number already exists."},
		{"company_account_number", account, account == "", "Company account number already exists."},
	}

	for _, c := range checks {
		if c.skip {
			continue
		}
		query := tx.Model(&model.CompanyProfile{}).Where(c.column+" = ?", c.value)
		if selfID != "" {
			query = query.Where("id <> ?", selfID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("check %s: %w", c.column, err)
		}
		if count > 0 {
			return apperror.Conflict("%s", c.message)
		}
	}
	return nil
}

// resolveGSTMaster returns the requested slab, or the active 18% slab
func resolveGSTMaster(tx *gorm.DB, id *uint) (uint, error) {
	var master model.GSTMaster
	if id == nil {
		err := tx.Where("gst_rate = ? AND is_active = ?", DefaultGSTRate, true).Order("id").First(&master).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.Validation("Default GST (18%%) not found. Please create it in GST Master first.")
		}
		if err != nil {
			return 0, fmt.Errorf("find default gst master: %w", err)
		}
		return master.ID, nil
	}

	err := tx.First(&master, *id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperror.Validation("Invalid GST Master selected.")
	}
	if err != nil {
		return 0, fmt.Errorf("find gst master %d: %w", *id, err)
	}
	return master.ID, nil
}

func normalizeGSTIN(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*s))
	if v == "" {
		return nil
	}
	return &v
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
