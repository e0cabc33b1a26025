package validation

import (
	"testing"

	"invoice-service/internal/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules(t *testing.T) {
	assert.True(t, IsHSN("7306"))
	assert.True(t, IsHSN("730630"))
	assert.True(t, IsHSN("73063090"))
	assert.False(t, IsHSN("73063"))
	assert.False(t, IsHSN("7306a0"))

	assert.True(t, IsUOM("PCS"))
	assert.True(t, IsUOM(" kg "))
	assert.False(t, IsUOM("dozen"))

	assert.True(t, IsGSTIN("24AAACC1206D1ZM"))
	assert.False(t, IsGSTIN("24aaacc1206d1zm"))
	assert.True(t, IsIFSC("SBIN0001234"))
	assert.False(t, IsIFSC("SBIN1001234"))
	assert.True(t, IsAccountNumber("123456789"))
	assert.False(t, IsAccountNumber("12345678"))
	assert.True(t, IsName("Suresh Enterprise Pvt. Ltd"))
	assert.False(t, IsName("Suresh & Sons"))
}

type sample struct {
	Name    string           `json:"name" validate:"required,name" label:"Company Name"`
	GSTIN   *string          `json:"gstin" validate:"omitempty,gstin" label:"Company GST number"`
	Rate    *decimal.Decimal `json:"rate" validate:"omitempty,gt=0" label:"gstRate"`
	Items   []string         `json:"items" validate:"required,min=1" label:"invoice item"`
	Comment string           `json:"-"`
}

func TestStructMessages(t *testing.T) {
	bad := "nope"
	zero := decimal.Zero

	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"required", sample{Items: []string{"a"}}, "Company Name is required."},
		{"format", sample{Name: "A&B", Items: []string{"a"}}, "Company Name must be in valid format."},
		{"custom tag", sample{Name: "Acme", GSTIN: &bad, Items: []string{"a"}}, "Company GST number must be in valid format."},
		{"decimal", sample{Name: "Acme", Rate: &zero, Items: []string{"a"}}, "gstRate must be greater than 0."},
		{"empty slice", sample{Name: "Acme", Items: []string{}}, "At least one invoice item is required."},
		{"nil slice", sample{Name: "Acme"}, "At least one invoice item is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestStructValid(t *testing.T) {
	rate := decimal.NewFromInt(18)
	assert.NoError(t, Struct(sample{Name: "Acme", Rate: &rate, Items: []string{"a"}}))
	assert.NoError(t, EchoValidator{}.Validate(&sample{Name: "Acme", Items: []string{"a"}}))
}
