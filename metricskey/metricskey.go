package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfTokenOperation is perf metric
	PerfTokenOperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_token",
		Help:         "perf_token provides the sample metrics of token encode and decode operations",
		RequiredTags: []string{"codec", "action"},
	}
)

// Filter
var (
	// FilterRecords is counter metric
	FilterRecords = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "filter_records",
		Help:         "filter_records provides the counter of processed records by outcome",
		RequiredTags: []string{"mode", "outcome"},
	}

	// FilterFailures is counter metric
	FilterFailures = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "filter_failures",
		Help:         "filter_failures provides the counter of record failures by error kind",
		RequiredTags: []string{"mode", "kind"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfTokenOperation,
	&FilterRecords,
	&FilterFailures,
}
