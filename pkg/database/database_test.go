package database

import (
	"testing"

	"invoice-service/internal/model"
	"invoice-service/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{config.DriverPostgres, config.DriverMySQL} {
		d, err := dialector(&config.DBConfig{Driver: driver, Host: "localhost", Port: "1", DBName: "x"})
		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}

	_, err := dialector(&config.DBConfig{Driver: "oracle"})
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestMigrate(t *testing.T) {
	assert.Error(t, Migrate(nil))

	db, err := gorm.Open(sqlite.Open("file:migrate?mode=memory&cache=shared"), GormConfig(gormlogger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))
	for _, m := range model.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&model.Invoice{}, "idx_invoices_bill_partition"))
}

func TestUniqueIndexesTranslateToDuplicatedKey(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:unique?mode=memory&cache=shared"), GormConfig(gormlogger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, Migrate(db))

	slab := func() *model.GSTMaster {
		return &model.GSTMaster{GSTRate: decimal.NewFromInt(18), SGSTRate: decimal.NewFromInt(9), CGSTRate: decimal.NewFromInt(9), IGSTRate: decimal.NewFromInt(18), IsActive: true}
	}
	first := slab()
	require.NoError(t, db.Create(first).Error)
	assert.ErrorIs(t, db.Create(slab()).Error, gorm.ErrDuplicatedKey)

	company := func(id, name, account string) *model.CompanyProfile {
		return &model.CompanyProfile{
			ID: id, CompanyName: name, CompanyAddress: "12 Market Road", CompanyAccountNumber: account,
			AccountHolderName: "Suresh Kumar", IFSCCode: "SBIN0001234", BranchName: "Main",
			City: "Surat", State: "Gujarat", Country: "India", GSTMasterID: first.ID, IsActive: true,
		}
	}
	require.NoError(t, db.Create(company("0001", "Suresh Enterprise", "123456789012")).Error)
	assert.ErrorIs(t, db.Create(company("0002", "Suresh Enterprise", "999999999999")).Error, gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, db.Create(company("0003", "Mehta Traders", "123456789012")).Error, gorm.ErrDuplicatedKey)
	assert.NoError(t, db.Create(company("0004", "Mehta Traders", "999999999999")).Error)
}
