package prometheus

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordInvoiceOperation(t *testing.T) {
	before := testutil.ToFloat64(InvoiceOperationsCounter.WithLabelValues("create", "error"))

	RecordInvoiceOperation("create", errors.New("boom"))
	RecordInvoiceOperation("create", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(InvoiceOperationsCounter.WithLabelValues("create", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(InvoiceOperationsCounter.WithLabelValues("create", "success")), 1.0)
}

func TestRecordCapacityError(t *testing.T) {
	before := testutil.ToFloat64(SequenceCapacityErrorsCounter.WithLabelValues("company_id"))
	RecordCapacityError("company_id")
	assert.Equal(t, before+1, testutil.ToFloat64(SequenceCapacityErrorsCounter.WithLabelValues("company_id")))
}
