package prometheus

import (
	"sync"
	"time"

	"invoice-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultPrefix = "invoice"

var (
	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Sequence allocation metrics, labelled by sequence
	// (invoice_number, bill_number, company_id)
	SequenceAllocationsCounter    *prometheus.CounterVec
	SequenceCapacityErrorsCounter *prometheus.CounterVec
	SequenceLockWaitDuration      *prometheus.HistogramVec

	// Domain operation metrics
	InvoiceOperationsCounter   *prometheus.CounterVec
	CompanyOperationsCounter   *prometheus.CounterVec
	GSTMasterOperationsCounter *prometheus.CounterVec

	initOnce sync.Once
)

func init() {
	// unregistered until InitMetrics so packages can record from tests
	build(defaultPrefix)
}

func build(prefix string) {
	AuthAttemptsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_auth_attempts_total",
		Help: "Total number of authentication attempts",
	})
	AuthSuccessCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_auth_success_total",
		Help: "Total number of successful authentications",
	})
	AuthErrorsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_auth_errors_total",
		Help: "Total number of authentication errors",
	})

	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	SequenceAllocationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sequence_allocations_total",
			Help: "Total number of sequence values handed out, including ones later rolled back",
		},
		[]string{"sequence"},
	)
	SequenceCapacityErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sequence_capacity_errors_total",
			Help: "Total number of allocations refused because the sequence reached its ceiling",
		},
		[]string{"sequence"},
	)
	SequenceLockWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_sequence_lock_wait_seconds",
			Help:    "Time spent acquiring the sequence lock and reading the current maximum",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"sequence"},
	)

	InvoiceOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_invoice_operations_total",
			Help: "Total number of invoice operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
	CompanyOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_company_operations_total",
			Help: "Total number of company profile operations",
		},
		[]string{"operation"},
	)
	GSTMasterOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_gst_master_operations_total",
			Help: "Total number of GST master operations",
		},
		[]string{"operation"},
	)
}

// InitMetrics rebuilds the collectors with the configured prefix and
// registers them with the default registry. Only the first call has effect.
func InitMetrics(cfg *config.Config) {
	initOnce.Do(func() {
		prefix := cfg.Metrics.Prefix
		if prefix == "" {
			prefix = defaultPrefix
		}
		build(prefix)
		prometheus.MustRegister(
			AuthAttemptsCounter,
			AuthSuccessCounter,
			AuthErrorsCounter,
			DbOperationDuration,
			SequenceAllocationsCounter,
			SequenceCapacityErrorsCounter,
			SequenceLockWaitDuration,
			InvoiceOperationsCounter,
			CompanyOperationsCounter,
			GSTMasterOperationsCounter,
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// ObserveLockWait records how long a sequence read waited for its lock
func ObserveLockWait(sequence string, startTime time.Time) {
	SequenceLockWaitDuration.WithLabelValues(sequence).Observe(time.Since(startTime).Seconds())
}

// RecordAllocation increments the allocation counter of a sequence
func RecordAllocation(sequence string) {
	SequenceAllocationsCounter.WithLabelValues(sequence).Inc()
}

// RecordCapacityError increments the capacity error counter of a sequence
func RecordCapacityError(sequence string) {
	SequenceCapacityErrorsCounter.WithLabelValues(sequence).Inc()
}

// RecordInvoiceOperation counts an invoice operation with its outcome
func RecordInvoiceOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	InvoiceOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordCompanyOperation increments the counter for company profile operations
func RecordCompanyOperation(operation string) {
	CompanyOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordGSTMasterOperation increments the counter for GST master operations
func RecordGSTMasterOperation(operation string) {
	GSTMasterOperationsCounter.WithLabelValues(operation).Inc()
}
