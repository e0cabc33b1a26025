package model

import "time"

// CompanyProfile is a tenant. Its ID is a 4 character zero padded
// sequence value ("0001") allocated when the profile is created.
type CompanyProfile struct {
	ID                   string     `json:"id" gorm:"primaryKey;type:varchar(4)"`
	CompanyName          string     `json:"companyName" gorm:"column:company_name;type:varchar(255);not null;uniqueIndex"`
	CompanyAddress       string     `json:"companyAddress" gorm:"column:company_address;type:varchar(255);not null"`
	CompanyGSTNumber     *string    `json:"companyGstNumber" gorm:"column:company_gst_number;type:varchar(15);uniqueIndex"`
	CompanyAccountNumber string     `json:"companyAccountNumber" gorm:"column:company_account_number;type:varchar(18);not null;uniqueIndex"`
	AccountHolderName    string     `json:"accountHolderName" gorm:"column:account_holder_name;type:varchar(255);not null"`
	IFSCCode             string     `json:"ifscCode" gorm:"column:ifsc_code;type:varchar(11);not null"`
	BranchName           string     `json:"branchName" gorm:"column:branch_name;type:varchar(255);not null"`
	City                 string     `json:"city" gorm:"type:varchar(100);not null"`
	State                string     `json:"state" gorm:"type:varchar(100);not null"`
	Country              string     `json:"country" gorm:"type:varchar(100);not null"`
	GSTMasterID          uint       `json:"gstMasterId" gorm:"column:gst_master_id;not null"`
	GSTMaster            *GSTMaster `json:"gstMaster,omitempty" gorm:"foreignKey:GSTMasterID"`
	IsActive             bool       `json:"isActive" gorm:"column:is_active;not null"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (CompanyProfile) TableName() string { return "company_profiles" }
