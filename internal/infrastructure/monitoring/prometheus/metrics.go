package prometheus

// AppMetrics holds every metric the application emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Provider layer
	ProviderRequestsTotal   CounterVec
	ProviderRequestDuration HistogramVec
	StrategyAttemptsTotal   CounterVec
	RateLimitWaitsTotal     CounterVec

	// Analysis layer
	SearchRunDuration     HistogramVec
	RecordsAnalyzedTotal  CounterVec
	EnrichmentFailures    CounterVec
	HighSeverityHitsTotal CounterVec

	// Translation layer
	TranslationsTotal CounterVec

	// Cache layer
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultSearchDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600}
)

// NewAppMetrics registers every application metric on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total",
		"Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds",
		"HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests",
		"Active HTTP requests", "method")

	m.ProviderRequestsTotal = collector.RegisterCounter("provider_requests_total",
		"Upstream provider requests", "provider", "outcome")
	m.ProviderRequestDuration = collector.RegisterHistogram("provider_request_duration_seconds",
		"Upstream provider request duration", DefaultHTTPDurationBuckets, "provider")
	m.StrategyAttemptsTotal = collector.RegisterCounter("strategy_attempts_total",
		"Query ladder attempts", "provider", "strategy")
	m.RateLimitWaitsTotal = collector.RegisterCounter("rate_limit_waits_total",
		"Requests delayed by the provider rate limiter", "provider")

	m.SearchRunDuration = collector.RegisterHistogram("search_run_duration_seconds",
		"End-to-end search pipeline duration", DefaultSearchDurationBuckets, "provider")
	m.RecordsAnalyzedTotal = collector.RegisterCounter("records_analyzed_total",
		"Records scored and classified", "value")
	m.EnrichmentFailures = collector.RegisterCounter("enrichment_failures_total",
		"Legal-status enrichment failures", "provider")
	m.HighSeverityHitsTotal = collector.RegisterCounter("high_severity_hits_total",
		"Records whose legal status decoded to HIGH severity", "jurisdiction")

	m.TranslationsTotal = collector.RegisterCounter("translations_total",
		"Keyword set translations", "target_lang", "outcome")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total",
		"Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total",
		"Cache misses", "cache")

	return m
}

// NewNopMetrics returns metrics that discard all observations.
func NewNopMetrics() *AppMetrics {
	return NewAppMetrics(NewNopCollector())
}
